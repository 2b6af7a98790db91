// Package validator checks inbound record payloads before they reach the store.
package validator

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// datePattern checks digit shape only; 2024-02-31 passes.
var datePattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[012])-(0[1-9]|[12][0-9]|3[01])$`)

// ValidationError reports the first field that made a payload unacceptable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Validate reports whether candidate, a decoded JSON value, is an object with
// a YYYY-MM-DD date string and a numeric reading.
func Validate(candidate any) bool {
	return Check(candidate) == nil
}

// Check is Validate with the reason attached.
func Check(candidate any) error {
	obj, ok := candidate.(map[string]any)
	if !ok || obj == nil {
		return invalid("body", "must be a JSON object")
	}

	rawDate, ok := obj["date"]
	if !ok || rawDate == nil {
		return invalid("date", "is required")
	}
	date, ok := rawDate.(string)
	if !ok {
		return invalid("date", "must be a string")
	}
	if !datePattern.MatchString(date) {
		return invalid("date", "must match YYYY-MM-DD")
	}

	rawReading, ok := obj["reading"]
	if !ok || rawReading == nil {
		return invalid("reading", "is required")
	}
	if _, ok := number(rawReading); !ok {
		return invalid("reading", "must be a number")
	}
	return nil
}

// Validator applies the create-time presence rules on top of Check.
type Validator struct {
	// AllowZeroReading accepts reading=0. When false a zero reading counts
	// as missing.
	AllowZeroReading bool
}

func New(allowZeroReading bool) *Validator {
	return &Validator{AllowZeroReading: allowZeroReading}
}

// Parse runs the presence rules, then Check, and returns the accepted fields.
func (v *Validator) Parse(candidate any) (date string, reading float64, err error) {
	obj, ok := candidate.(map[string]any)
	if !ok || obj == nil {
		return "", 0, invalid("body", "must be a JSON object")
	}

	if d, present := obj["date"]; !present || d == nil || d == "" {
		return "", 0, invalid("date", "is required")
	}
	r, present := obj["reading"]
	if !present || r == nil {
		return "", 0, invalid("reading", "is required")
	}
	if n, isNum := number(r); isNum && n == 0 && !v.AllowZeroReading {
		return "", 0, invalid("reading", "must be non-zero")
	}

	if err := Check(obj); err != nil {
		return "", 0, err
	}

	reading, _ = number(r)
	return obj["date"].(string), reading, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
