// Package csp validates Content-Security-Policy strings and installs them on
// a session's responses.
package csp

import (
	"fmt"
	"strings"
)

// HeaderName is the response header set by Installer.
const HeaderName = "Content-Security-Policy"

// ValidationError reports a policy line without a trailing semicolon.
type ValidationError struct {
	Line int // 1-based
	Text string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("each line must end in a semicolon (line %d: %q)", e.Line, e.Text)
}

// Validate checks that every non-blank line of policy ends with ';'.
func Validate(policy string) error {
	for i, line := range strings.Split(policy, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasSuffix(trimmed, ";") {
			return &ValidationError{Line: i + 1, Text: trimmed}
		}
	}
	return nil
}

var normalizer = strings.NewReplacer("\t", "", "\n", "")

// Normalize removes tabs and newlines and trims the result.
func Normalize(policy string) string {
	return strings.TrimSpace(normalizer.Replace(policy))
}
