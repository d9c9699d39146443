package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/reglet-dev/rxforge/internal/application/dto"
)

// JUnitFormatter formats validation reports as JUnit XML, one test case per
// document.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitError struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

// Format writes the validation reports as JUnit XML.
func (f *JUnitFormatter) Format(resp *dto.ValidateResponse) error {
	suite := JUnitTestSuite{
		Name:  "documents",
		Tests: len(resp.Reports),
		Time:  resp.Metadata.Duration.Seconds(),
	}

	for _, rep := range resp.Reports {
		c := JUnitTestCase{
			Name:      rep.Path,
			ClassName: classNameOf(rep),
		}

		switch {
		case rep.Error != "":
			suite.Errors++
			c.Error = &JUnitError{
				Message: rep.Error,
				Content: rep.Error,
			}
		case !rep.Valid:
			suite.Failures++
			c.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%d validation messages", len(rep.Messages)),
				Content: formatMessages(rep),
			}
		}

		suite.TestCases = append(suite.TestCases, c)
	}

	suites := JUnitTestSuites{
		Name:       "rxforge validation",
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

func classNameOf(rep dto.DocumentReport) string {
	if rep.Kind == "" {
		return "Resource"
	}
	return rep.Kind
}

func formatMessages(rep dto.DocumentReport) string {
	var b strings.Builder
	for _, m := range rep.Messages {
		b.WriteString(m.String())
		b.WriteString("\n")
	}
	return b.String()
}
