package domain

import "fmt"

// ConfigurationError rejects a malformed rule before it reaches the catalog.
type ConfigurationError struct {
	RuleID  string
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("invalid rule: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid rule %q: %s: %s", e.RuleID, e.Field, e.Message)
}
