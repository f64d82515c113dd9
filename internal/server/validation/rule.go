// Package validation checks user input against named, externally configured
// regular expressions.
//
// Patterns use the Java/.NET dialect (lookaheads, backreferences) so a
// password policy such as `(?=.*[A-Z])(?=.*\d).{8,}` can be configured as is.
// Every pattern is compiled once by NewRule and must match the whole input.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single pattern evaluation. A timeout counts as a
// mismatch.
const MatchTimeout = 250 * time.Millisecond

var (
	ErrEmptyPattern = errors.New("pattern is not configured")
	ErrEmptyMessage = errors.New("message is not configured")
	ErrBadPattern   = errors.New("invalid pattern")
)

// Error is returned by Rule.Validate when a value is rejected.
type Error struct {
	Rule     string
	Message  string
	Required bool
}

func (e *Error) Error() string {
	return e.Message
}

// Rule is an immutable, compiled validation rule.
type Rule struct {
	name            string
	pattern         string
	message         string
	requiredMessage string
	trim            bool
	re              *regexp2.Regexp
}

// Option adjusts a Rule built by NewRule.
type Option func(*Rule)

// TrimSpace makes the rule match the value with surrounding white space
// removed. Without it the pattern sees the value exactly as given.
func TrimSpace() Option {
	return func(r *Rule) { r.trim = true }
}

// NewRule compiles pattern. It fails on an empty pattern, empty messages or a
// pattern that does not compile; callers treat that as a startup error.
func NewRule(name, pattern, message, requiredMessage string, opts ...Option) (*Rule, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("validation.%s.pattern: %w", name, ErrEmptyPattern)
	}
	if strings.TrimSpace(message) == "" || strings.TrimSpace(requiredMessage) == "" {
		return nil, fmt.Errorf("validation.%s.message: %w", name, ErrEmptyMessage)
	}

	re, err := regexp2.Compile(`\A(?:`+pattern+`)\z`, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("validation.%s.pattern %q: %w: %v", name, pattern, ErrBadPattern, err)
	}
	re.MatchTimeout = MatchTimeout

	r := &Rule{
		name:            name,
		pattern:         pattern,
		message:         message,
		requiredMessage: requiredMessage,
		re:              re,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

func (r *Rule) Name() string    { return r.name }
func (r *Rule) Pattern() string { return r.pattern }
func (r *Rule) Message() string { return r.message }

// Validate returns nil when value matches the rule. A blank value always
// fails with the required message, regardless of the pattern.
func (r *Rule) Validate(value string) error {
	if strings.TrimSpace(value) == "" {
		return &Error{Rule: r.name, Message: r.requiredMessage, Required: true}
	}

	v := value
	if r.trim {
		v = strings.TrimSpace(value)
	}

	ok, err := r.re.MatchString(v)
	if err != nil || !ok {
		return &Error{Rule: r.name, Message: r.message}
	}

	return nil
}
