// Package validator runs field rules and collects their failures.
//
//	err := validator.Apply(
//		validator.RequiredString("name", in.Name),
//		validator.Email("email", in.Email),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//		// errs[i].Field, errs[i].Message
//	}
//
// Every rule is evaluated; the result lists failures in rule order.
package validator

import (
	"errors"
	"regexp"
	"strings"
)

// ValidationError is a single failed rule.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is the set of failures returned by Apply.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field failed any rule.
func (e ValidationErrors) Has(field string) bool {
	for _, ve := range e {
		if ve.Field == field {
			return true
		}
	}
	return false
}

// Rule is a deferred check with the error it produces on failure.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply evaluates all rules and returns ValidationErrors, or nil if all pass.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, r := range rules {
		if !r.Check() {
			errs = append(errs, r.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsValidationError reports whether err is or wraps ValidationErrors.
func IsValidationError(err error) bool {
	return ExtractValidationErrors(err) != nil
}

// ExtractValidationErrors returns the ValidationErrors in err's chain, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// RequiredString fails when value is empty or whitespace only.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "is required", Code: "required"},
	}
}

// emailPattern is intentionally loose: local@domain.tld without whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email fails when value does not look like local@domain.tld.
// Empty values pass; combine with RequiredString.
func Email(field, value string) Rule {
	return Rule{
		Check: func() bool { return value == "" || emailPattern.MatchString(value) },
		Error: ValidationError{Field: field, Message: "must be a valid email address", Code: "email"},
	}
}

// IsEmail reports whether value matches the email shape used by Email.
func IsEmail(value string) bool {
	return emailPattern.MatchString(value)
}
