// Package validation checks decoded JSON payloads against ordered field rules
// and reports every failure at once.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors aggregates field failures. A nil or empty Errors means the payload is valid.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when there are no failures.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Rule checks one value. present is false when the field is absent from the payload.
// A non-empty return is the failure message.
type Rule func(value any, present bool) string

// Field binds rules to a payload key.
type Field struct {
	Name  string
	Rules []Rule
}

// For is a shorthand for building a Field.
func For(name string, rules ...Rule) Field {
	return Field{Name: name, Rules: rules}
}

// Validate runs every rule of every field. Fields are reported in declaration order.
func Validate(payload map[string]any, fields ...Field) Errors {
	var errs Errors
	for _, f := range fields {
		value, present := payload[f.Name]
		for _, rule := range f.Rules {
			if msg := rule(value, present); msg != "" {
				errs = append(errs, FieldError{Field: f.Name, Message: msg})
			}
		}
	}
	return errs
}

// Required fails when the field is absent or JSON null.
func Required(msg string) Rule {
	return func(value any, present bool) string {
		if !present || value == nil {
			return msg
		}
		return ""
	}
}

// String fails when a present field is not a JSON string.
func String(msg string) Rule {
	return func(value any, present bool) string {
		if !present {
			return ""
		}
		if _, ok := value.(string); !ok {
			return msg
		}
		return ""
	}
}

// NotBlank fails when a present string is empty after trimming.
func NotBlank(msg string) Rule {
	return func(value any, present bool) string {
		s, ok := value.(string)
		if !present || !ok {
			return ""
		}
		if strings.TrimSpace(s) == "" {
			return msg
		}
		return ""
	}
}

// MinLength fails when a present string has fewer than n characters.
func MinLength(n int, msg string) Rule {
	return func(value any, present bool) string {
		s, ok := value.(string)
		if !present || !ok {
			return ""
		}
		if utf8.RuneCountInString(s) < n {
			return msg
		}
		return ""
	}
}

// OneOf fails when a present string is not among allowed.
func OneOf[T ~string](allowed []T, msg string) Rule {
	return func(value any, present bool) string {
		s, ok := value.(string)
		if !present || !ok {
			return ""
		}
		for _, candidate := range allowed {
			if s == string(candidate) {
				return ""
			}
		}
		return msg
	}
}

// Email fails when a present string is not a bare email address.
func Email(msg string) Rule {
	return func(value any, present bool) string {
		s, ok := value.(string)
		if !present || !ok {
			return ""
		}
		if !IsEmail(s) {
			return msg
		}
		return ""
	}
}

// IsEmail accepts only a bare addr-spec, not a display-name form.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@")+1:], ".")
}

// Allowed is a convenience for building OneOf messages.
func Allowed[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%q", string(v))
	}
	return strings.Join(parts, ", ")
}
