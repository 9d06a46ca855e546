// Package extractor pulls values out of response bodies so later steps of a scenario
// can refer to them.
package extractor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports that a path or pattern matched nothing.
	ErrNotFound = errors.New("value not found")

	ErrInvalidRule = errors.New("invalid extractor")
)

// Extractor defines one extraction rule. Exactly one of JSONPath or Regex is set.
type Extractor struct {
	// Variable is the name the extracted value is stored under.
	Variable string

	// JSONPath is a gjson path; a leading "$." is accepted ("$.user.id", "user.id").
	JSONPath string

	// Regex is matched against the body; the first capture group wins, else the
	// whole match.
	Regex string
}

// Validate checks the rule without a body, so broken rules fail at load time.
func (e Extractor) Validate() error {
	if strings.TrimSpace(e.Variable) == "" {
		return fmt.Errorf("%w: variable name is required", ErrInvalidRule)
	}
	switch {
	case e.JSONPath != "" && e.Regex != "":
		return fmt.Errorf("%w: %s: json_path and regex are mutually exclusive", ErrInvalidRule, e.Variable)
	case e.JSONPath == "" && e.Regex == "":
		return fmt.Errorf("%w: %s: json_path or regex is required", ErrInvalidRule, e.Variable)
	case e.Regex != "":
		if _, err := compile(e.Regex); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidRule, e.Variable, err)
		}
	}
	return nil
}

// Extract applies e to body.
func (e Extractor) Extract(body string) (string, error) {
	if e.JSONPath != "" {
		return findJSONPath(body, e.JSONPath)
	}
	if e.Regex != "" {
		return findRegex(body, e.Regex)
	}
	return "", fmt.Errorf("%w: %s: json_path or regex is required", ErrInvalidRule, e.Variable)
}

// ExtractAll applies extractors in order and stops at the first failure.
func ExtractAll(body string, extractors []Extractor) (map[string]string, error) {
	result := make(map[string]string, len(extractors))
	for _, e := range extractors {
		value, err := e.Extract(body)
		if err != nil {
			return result, fmt.Errorf("extract %s: %w", e.Variable, err)
		}
		result[e.Variable] = value
	}
	return result, nil
}
