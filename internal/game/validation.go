package game

import (
	"fmt"
	"strings"
)

// ValidationReason describes one rule violation.
type ValidationReason struct {
	Message string
	Rules   []string
	Entity  any
}

func (r ValidationReason) String() string {
	if len(r.Rules) == 0 {
		return r.Message
	}
	return fmt.Sprintf("%s (rule %s)", r.Message, strings.Join(r.Rules, ", "))
}

// ValidationResult is either successful or an ordered list of reasons.
// The zero value is successful.
type ValidationResult struct {
	Reasons []ValidationReason
}

// Valid returns a successful result.
func Valid() ValidationResult {
	return ValidationResult{}
}

// Invalid returns a result holding a single reason.
func Invalid(message string, entity any, rules ...string) ValidationResult {
	return ValidationResult{Reasons: []ValidationReason{{
		Message: message,
		Rules:   rules,
		Entity:  entity,
	}}}
}

// IsSuccessful reports whether no reason was recorded.
func (v ValidationResult) IsSuccessful() bool {
	return len(v.Reasons) == 0
}

// Combine appends the reasons of others after the receiver's own.
func (v ValidationResult) Combine(others ...ValidationResult) ValidationResult {
	n := len(v.Reasons)
	for _, o := range others {
		n += len(o.Reasons)
	}
	if n == 0 {
		return Valid()
	}
	reasons := make([]ValidationReason, 0, n)
	reasons = append(reasons, v.Reasons...)
	for _, o := range others {
		reasons = append(reasons, o.Reasons...)
	}
	return ValidationResult{Reasons: reasons}
}

// Messages returns the reason messages in order.
func (v ValidationResult) Messages() []string {
	if len(v.Reasons) == 0 {
		return nil
	}
	out := make([]string, 0, len(v.Reasons))
	for _, r := range v.Reasons {
		out = append(out, r.Message)
	}
	return out
}
