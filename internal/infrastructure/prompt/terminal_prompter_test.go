package prompt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/rxforge/internal/application/dto"
)

// scriptedSelect answers prompts in order and records the titles and choices.
type scriptedSelect struct {
	answers []string
	titles  []string
	choices [][]Choice
}

func (s *scriptedSelect) selectOne(title string, choices []Choice, value *string) error {
	s.titles = append(s.titles, title)
	s.choices = append(s.choices, choices)
	if len(s.answers) == 0 {
		return errors.New("no scripted answer")
	}
	*value = s.answers[0]
	s.answers = s.answers[1:]
	return nil
}

func newScriptedPrompter(answers ...string) (*TerminalPrompter, *scriptedSelect) {
	s := &scriptedSelect{answers: answers}
	return &TerminalPrompter{
		selectOne:   s.selectOne,
		interactive: func() bool { return true },
	}, s
}

func testFamilies() []dto.FamilyInfo {
	return []dto.FamilyInfo{
		{
			Family:      "prescription",
			Description: "KBV prescription",
			Default:     "1.1.0",
			Resolved:    "1.1.0",
			Versions:    []dto.VersionInfo{{Version: "1.0.2"}, {Version: "1.1.0"}},
		},
		{
			Family:   "base-data",
			Default:  "1.1.0",
			Resolved: "1.0.3",
			Versions: []dto.VersionInfo{{Version: "1.0.3"}, {Version: "1.1.0"}},
		},
		{
			Family:   "single",
			Default:  "1.0.0",
			Versions: []dto.VersionInfo{{Version: "1.0.0"}},
		},
	}
}

func TestTerminalPrompter_PromptSample(t *testing.T) {
	p, script := newScriptedPrompter(KindSupplyRequest, "1.0.2", "")

	req, err := p.PromptSample(testFamilies())
	require.NoError(t, err)

	assert.True(t, req.SupplyRequest)
	assert.Equal(t, map[string]string{"prescription": "1.0.2"}, req.Versions)

	// kind plus two families; the single-version family is not asked
	require.Len(t, script.titles, 3)
	assert.Equal(t, "Version of prescription (KBV prescription)", script.titles[1])
	assert.Equal(t, "Version of base-data", script.titles[2])

	baseData := script.choices[2]
	require.Len(t, baseData, 2)
	assert.Equal(t, Choice{Label: "1.0.3 (resolved)", Value: ""}, baseData[0])
	assert.Equal(t, Choice{Label: "1.1.0", Value: "1.1.0"}, baseData[1])
}

func TestTerminalPrompter_PromptSample_MedicationRequest(t *testing.T) {
	p, _ := newScriptedPrompter(KindMedicationRequest, "", "")

	req, err := p.PromptSample(testFamilies())
	require.NoError(t, err)
	assert.False(t, req.SupplyRequest)
	assert.Empty(t, req.Versions)
}

func TestTerminalPrompter_PromptSample_Aborted(t *testing.T) {
	p, _ := newScriptedPrompter(KindMedicationRequest)

	_, err := p.PromptSample(testFamilies())
	assert.Error(t, err)
}

func TestTerminalPrompter_NonInteractive(t *testing.T) {
	p := &TerminalPrompter{
		selectOne:   func(string, []Choice, *string) error { t.Fatal("must not prompt"); return nil },
		interactive: func() bool { return false },
	}

	_, err := p.PromptSample(testFamilies())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotInteractive)
	assert.Contains(t, err.Error(), "--version family=VERSION")
}
