package values

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	kvnrPattern           = regexp.MustCompile(`^[A-Z][0-9]{9}$`)
	iknrPattern           = regexp.MustCompile(`^[0-9]{9}$`)
	pznPattern            = regexp.MustCompile(`^[0-9]{8}$`)
	lanrPattern           = regexp.MustCompile(`^[0-9]{9}$`)
	prescriptionIDPattern = regexp.MustCompile(`^[0-9]{3}(\.[0-9]{3}){4}\.[0-9]{2}$`)
	telematikIDPattern    = regexp.MustCompile(`^[0-9]{1,2}-[0-9A-Za-z.\-]+$`)
)

func matchIdentifier(kind, s string, re *regexp.Regexp) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s cannot be empty", kind)
	}
	if !re.MatchString(s) {
		return "", fmt.Errorf("invalid %s %q", kind, s)
	}
	return s, nil
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// KVNR is the lifelong health insurance number of a patient (e.g. X110407071).
type KVNR struct{ value string }

// NewKVNR validates a KVNR.
func NewKVNR(s string) (KVNR, error) {
	v, err := matchIdentifier("KVNR", s, kvnrPattern)
	return KVNR{v}, err
}

// MustNewKVNR creates a KVNR or panics
func MustNewKVNR(s string) KVNR { return must(NewKVNR(s)) }

func (k KVNR) String() string { return k.value }

// IsEmpty returns true if this is the zero value
func (k KVNR) IsEmpty() bool { return k.value == "" }

// IKNR is the nine digit institution code of a health insurer.
type IKNR struct{ value string }

// NewIKNR validates an IKNR.
func NewIKNR(s string) (IKNR, error) {
	v, err := matchIdentifier("IKNR", s, iknrPattern)
	return IKNR{v}, err
}

// MustNewIKNR creates an IKNR or panics
func MustNewIKNR(s string) IKNR { return must(NewIKNR(s)) }

func (i IKNR) String() string { return i.value }

// IsEmpty returns true if this is the zero value
func (i IKNR) IsEmpty() bool { return i.value == "" }

// PZN is the eight digit pharmaceutical product number, checked with its
// modulo 11 check digit.
type PZN struct{ value string }

// NewPZN validates a PZN including the check digit.
func NewPZN(s string) (PZN, error) {
	v, err := matchIdentifier("PZN", s, pznPattern)
	if err != nil {
		return PZN{}, err
	}
	sum := 0
	for i := 0; i < 7; i++ {
		sum += int(v[i]-'0') * (i + 1)
	}
	check := sum % 11
	if check == 10 || strconv.Itoa(check) != v[7:] {
		return PZN{}, fmt.Errorf("invalid PZN %q: check digit mismatch", v)
	}
	return PZN{v}, nil
}

// MustNewPZN creates a PZN or panics
func MustNewPZN(s string) PZN { return must(NewPZN(s)) }

func (p PZN) String() string { return p.value }

// IsEmpty returns true if this is the zero value
func (p PZN) IsEmpty() bool { return p.value == "" }

// LANR is a nine digit physician number (ANR) or dentist number (ZANR).
type LANR struct{ value string }

// NewLANR validates a physician or dentist number.
func NewLANR(s string) (LANR, error) {
	v, err := matchIdentifier("LANR", s, lanrPattern)
	return LANR{v}, err
}

// MustNewLANR creates a LANR or panics
func MustNewLANR(s string) LANR { return must(NewLANR(s)) }

func (l LANR) String() string { return l.value }

// IsEmpty returns true if this is the zero value
func (l LANR) IsEmpty() bool { return l.value == "" }

// PrescriptionID identifies a prescription, e.g. 160.000.100.000.001.05.
type PrescriptionID struct{ value string }

// NewPrescriptionID validates a prescription id.
func NewPrescriptionID(s string) (PrescriptionID, error) {
	v, err := matchIdentifier("prescription id", s, prescriptionIDPattern)
	return PrescriptionID{v}, err
}

// MustNewPrescriptionID creates a PrescriptionID or panics
func MustNewPrescriptionID(s string) PrescriptionID { return must(NewPrescriptionID(s)) }

func (p PrescriptionID) String() string { return p.value }

// FlowType returns the three digit flow type prefix (160, 169, 200, 209).
func (p PrescriptionID) FlowType() string {
	if len(p.value) < 3 {
		return ""
	}
	return p.value[:3]
}

// IsEmpty returns true if this is the zero value
func (p PrescriptionID) IsEmpty() bool { return p.value == "" }

// Equals checks if two prescription ids are equal
func (p PrescriptionID) Equals(other PrescriptionID) bool { return p.value == other.value }

// TelematikID identifies an institution or professional in the telematics infrastructure.
type TelematikID struct{ value string }

// NewTelematikID validates a telematik id.
func NewTelematikID(s string) (TelematikID, error) {
	v, err := matchIdentifier("telematik id", s, telematikIDPattern)
	return TelematikID{v}, err
}

// MustNewTelematikID creates a TelematikID or panics
func MustNewTelematikID(s string) TelematikID { return must(NewTelematikID(s)) }

func (t TelematikID) String() string { return t.value }

// IsEmpty returns true if this is the zero value
func (t TelematikID) IsEmpty() bool { return t.value == "" }

// BSNR is the nine digit number of a practice site.
type BSNR struct{ value string }

// NewBSNR validates a practice site number.
func NewBSNR(s string) (BSNR, error) {
	v, err := matchIdentifier("BSNR", s, lanrPattern)
	return BSNR{v}, err
}

// MustNewBSNR creates a BSNR or panics
func MustNewBSNR(s string) BSNR { return must(NewBSNR(s)) }

func (b BSNR) String() string { return b.value }

// IsEmpty returns true if this is the zero value
func (b BSNR) IsEmpty() bool { return b.value == "" }
