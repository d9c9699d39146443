package output

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJUnitFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	formatter := NewJUnitFormatter(&buf)

	require.NoError(t, formatter.Format(createTestResponse()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, xml.Header))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))

	assert.Equal(t, "rxforge validation", suites.Name)
	assert.Equal(t, 3, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
	require.Len(t, suites.TestSuites, 1)

	cases := suites.TestSuites[0].TestCases
	require.Len(t, cases, 3)

	assert.Equal(t, "testdata/medication.json", cases[0].Name)
	assert.Equal(t, "Medication", cases[0].ClassName)
	assert.Nil(t, cases[0].Failure)
	assert.Nil(t, cases[0].Error)

	require.NotNil(t, cases[1].Failure)
	assert.Equal(t, "2 validation messages", cases[1].Failure.Message)
	assert.Contains(t, cases[1].Failure.Content, "[error] /dispenseRequest/quantity/value: must be >= 1")

	require.NotNil(t, cases[2].Error)
	assert.Equal(t, "Resource", cases[2].ClassName)
	assert.Contains(t, cases[2].Error.Message, "not parseable")
}
