// Package redaction scrubs secrets and personal identifiers from payloads
// before they leave the process (diagnostic dumps, logs).
package redaction

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
)

const redacted = "[REDACTED]"

// Redactor handles sanitization of sensitive data.
// Configuration is read-only after construction; tracked values are guarded,
// so it is safe for concurrent use.
type Redactor struct {
	patterns []*regexp.Regexp
	paths    []string
	headers  map[string]bool
	hashMode bool
	salt     string

	// Gitleaks detector for secret detection
	// If nil, falls back to regex patterns only
	gitleaksDetector *detect.Detector

	mu      sync.RWMutex
	tracked []string
}

// Config holds the configuration for the Redactor.
type Config struct {
	// Custom patterns to redact (e.g. "X[0-9]{9}")
	Patterns []string
	// JSON paths whose string values are always redacted (e.g. "name.family")
	Paths []string
	// Additional headers to redact besides the defaults
	Headers []string
	// If true, replace with hash instead of [REDACTED]
	HashMode bool
	// Salt for hashing. If empty, hash is deterministic but unsalted.
	Salt string
	// If true, disable gitleaks detector and use only patterns
	DisableGitleaks bool
}

// New creates a new Redactor with the given configuration.
func New(cfg Config) (*Redactor, error) {
	r := &Redactor{
		paths:    append(append([]string{}, defaultPaths...), cfg.Paths...),
		headers:  make(map[string]bool),
		hashMode: cfg.HashMode,
		salt:     cfg.Salt,
		patterns: make([]*regexp.Regexp, 0, len(cfg.Patterns)+len(defaultPatterns)),
	}
	for _, h := range append(append([]string{}, defaultHeaders...), cfg.Headers...) {
		r.headers[http.CanonicalHeaderKey(h)] = true
	}

	if !cfg.DisableGitleaks {
		detector, err := newGitleaksDetector()
		if err == nil {
			r.gitleaksDetector = detector
		}
	}

	for _, p := range defaultPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile default pattern %s: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile custom pattern %s: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}

	return r, nil
}

// newGitleaksDetector creates a gitleaks detector with its default rules.
func newGitleaksDetector() (*detect.Detector, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(config.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gitleaks config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate gitleaks config: %w", err)
	}

	return detect.NewDetector(cfg), nil
}

// Track registers a known sensitive value, such as a credential, to be
// scrubbed wherever it appears.
func (r *Redactor) Track(value string) {
	if value == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracked = append(r.tracked, value)
}

// ScrubString replaces tracked values, gitleaks findings and pattern
// matches in a string.
func (r *Redactor) ScrubString(input string) string {
	if input == "" {
		return ""
	}

	result := input

	r.mu.RLock()
	for _, secret := range r.tracked {
		result = strings.ReplaceAll(result, secret, r.replacement(secret))
	}
	r.mu.RUnlock()

	if r.gitleaksDetector != nil {
		findings := r.gitleaksDetector.Detect(detect.Fragment{Raw: result})
		for _, finding := range findings {
			if finding.Secret == "" {
				continue
			}
			result = strings.ReplaceAll(result, finding.Secret, r.replacement(finding.Secret))
		}
	}

	for _, re := range r.patterns {
		result = re.ReplaceAllStringFunc(result, r.replacement)
	}

	return result
}

// RedactJSON redacts a JSON payload: string values under configured paths
// are replaced entirely, all other strings are scrubbed. Payloads that are
// not JSON are scrubbed as plain text.
func (r *Redactor) RedactJSON(payload string) string {
	var data any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return r.ScrubString(payload)
	}
	out, err := json.Marshal(r.walk(data, ""))
	if err != nil {
		return r.ScrubString(payload)
	}
	return string(out)
}

// RedactHeaders returns a copy of h with sensitive headers replaced and all
// other values scrubbed.
func (r *Redactor) RedactHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for name, vals := range h {
		key := http.CanonicalHeaderKey(name)
		for _, val := range vals {
			if r.headers[key] {
				out.Add(key, r.replacement(val))
				continue
			}
			out.Add(key, r.ScrubString(val))
		}
	}
	return out
}

// walk recursively traverses decoded JSON.
// currentPath is the dot-notation path of object keys; array indices are
// not part of the path, so "identifier.value" covers every identifier.
func (r *Redactor) walk(data any, currentPath string) any {
	switch v := data.(type) {
	case string:
		if r.isPathMatch(currentPath) {
			return r.replacement(v)
		}
		return r.ScrubString(v)

	case map[string]any:
		for k, val := range v {
			nextPath := k
			if currentPath != "" {
				nextPath = currentPath + "." + k
			}
			v[k] = r.walk(val, nextPath)
		}
		return v

	case []any:
		for i, val := range v {
			v[i] = r.walk(val, currentPath)
		}
		return v

	default:
		return v
	}
}

// isPathMatch checks the current path against the configured paths.
// A path matches exactly or as a suffix: "family" matches "name.family".
func (r *Redactor) isPathMatch(path string) bool {
	for _, p := range r.paths {
		if p == path || strings.HasSuffix(path, "."+p) {
			return true
		}
	}
	return false
}

func (r *Redactor) replacement(secret string) string {
	if r.hashMode {
		return r.hash(secret)
	}
	return redacted
}

// hash returns a truncated HMAC-SHA256 hash of the secret.
// Format: [hmac:a1b2c3d4e5f6a7b8]
func (r *Redactor) hash(secret string) string {
	mac := hmac.New(sha256.New, []byte(r.salt))
	mac.Write([]byte(secret))
	sum := mac.Sum(nil)
	return fmt.Sprintf("[hmac:%s]", hex.EncodeToString(sum)[:16])
}

// defaultPatterns match credentials of the e-prescription transport and
// insurance numbers.
var defaultPatterns = []string{
	// Bearer tokens
	`Bearer\s+[A-Za-z0-9\-_\.=]+`,
	// Prescription access codes
	`\b[0-9a-f]{64}\b`,
	// KVNR
	`\b[A-Z][0-9]{9}\b`,
	// Generic private key header
	`-----BEGIN [A-Z ]+ PRIVATE KEY-----`,
}

// defaultPaths hold personal data of the insured.
var defaultPaths = []string{
	"name.family",
	"name.given",
	"name.text",
	"birthDate",
	"address.line",
}

var defaultHeaders = []string{
	"Authorization",
	"X-AccessCode",
	"Cookie",
	"Set-Cookie",
}
