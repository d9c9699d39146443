package redaction

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactor_ScrubString(t *testing.T) {
	accessCode := strings.Repeat("7f", 32)

	tests := []struct {
		name     string
		input    string
		hashMode bool
		salt     string
		want     string
	}{
		{
			name:  "KVNR",
			input: "patient X110407071 not insured",
			want:  "patient [REDACTED] not insured",
		},
		{
			name:  "Access code",
			input: "Task/160.000.100.000.001.05/$accept?ac=" + accessCode,
			want:  "Task/160.000.100.000.001.05/$accept?ac=[REDACTED]",
		},
		{
			name:  "Bearer token",
			input: "Authorization: Bearer abc.def.ghi",
			want:  "Authorization: [REDACTED]",
		},
		{
			name:  "No secrets",
			input: "prescription 160.000.100.000.001.05 dispensed",
			want:  "prescription 160.000.100.000.001.05 dispensed",
		},
		{
			name:     "Hash mode without salt",
			input:    "KVNR X110407071",
			hashMode: true,
			want:     "KVNR [hmac:a8364d018b7d7df9]",
		},
		{
			name:     "Hash mode with salt",
			input:    "KVNR X110407071",
			hashMode: true,
			salt:     "rx-salt",
			want:     "KVNR [hmac:1c43bafe8f7fb7e3]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(Config{
				HashMode:        tt.hashMode,
				Salt:            tt.salt,
				DisableGitleaks: true,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.ScrubString(tt.input))
		})
	}
}

func TestRedactor_Track(t *testing.T) {
	r, err := New(Config{DisableGitleaks: true})
	require.NoError(t, err)

	r.Track("smcb-credential-42")
	r.Track("")

	assert.Equal(t, "using [REDACTED]", r.ScrubString("using smcb-credential-42"))
}

func TestRedactor_RedactJSON(t *testing.T) {
	r, err := New(Config{DisableGitleaks: true, Paths: []string{"contentString"}})
	require.NoError(t, err)

	payload := `{"resourceType":"Patient",` +
		`"identifier":[{"system":"http://fhir.de/sid/gkv/kvid-10","value":"X110407071"}],` +
		`"name":[{"family":"Königsstein","given":["Ludger"]}],` +
		`"birthDate":"1935-06-22",` +
		`"extension":[{"url":"x","contentString":"call me"}]}`

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.RedactJSON(payload)), &got))

	assert.Equal(t, "Patient", got["resourceType"])
	assert.Equal(t, "[REDACTED]", got["birthDate"])

	name := got["name"].([]any)[0].(map[string]any)
	assert.Equal(t, "[REDACTED]", name["family"])
	assert.Equal(t, []any{"[REDACTED]"}, name["given"])

	id := got["identifier"].([]any)[0].(map[string]any)
	assert.Equal(t, "http://fhir.de/sid/gkv/kvid-10", id["system"])
	assert.Equal(t, "[REDACTED]", id["value"])

	ext := got["extension"].([]any)[0].(map[string]any)
	assert.Equal(t, "[REDACTED]", ext["contentString"])
}

func TestRedactor_RedactJSON_PlainText(t *testing.T) {
	r, err := New(Config{DisableGitleaks: true})
	require.NoError(t, err)

	assert.Equal(t, "<html>[REDACTED]</html>", r.RedactJSON("<html>X110407071</html>"))
}

func TestRedactor_RedactHeaders(t *testing.T) {
	r, err := New(Config{DisableGitleaks: true, Headers: []string{"x-erp-user"}})
	require.NoError(t, err)

	in := http.Header{}
	in.Set("Authorization", "Bearer abc")
	in.Set("X-Erp-User", "l")
	in.Set("Content-Type", "application/fhir+json")
	in.Add("X-Note", "for X110407071")

	out := r.RedactHeaders(in)
	assert.Equal(t, "[REDACTED]", out.Get("authorization"))
	assert.Equal(t, "[REDACTED]", out.Get("X-Erp-User"))
	assert.Equal(t, "application/fhir+json", out.Get("Content-Type"))
	assert.Equal(t, "for [REDACTED]", out.Get("X-Note"))
	assert.Equal(t, "Bearer abc", in.Get("Authorization"), "input must not change")
}

func TestRedactor_InvalidPattern(t *testing.T) {
	_, err := New(Config{DisableGitleaks: true, Patterns: []string{"("}})
	assert.ErrorContains(t, err, "failed to compile custom pattern")
}

func TestRedactor_ConcurrentTrackAndScrub(t *testing.T) {
	r, err := New(Config{DisableGitleaks: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Track("credential")
		}()
		go func() {
			defer wg.Done()
			_ = r.ScrubString("credential in use")
		}()
	}
	wg.Wait()
	assert.Equal(t, "[REDACTED] in use", r.ScrubString("credential in use"))
}
