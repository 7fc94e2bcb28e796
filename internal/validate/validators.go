package validate

import (
	"regexp"
	"strings"

	confusable "github.com/skygeario/go-confusable-homoglyphs"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Stable machine-readable codes reported with field-level validation errors.
const (
	CodeReservedName      = "reserved_name"
	CodeConfusable        = "confusable"
	CodeConfusableEmail   = "confusable_email"
	CodeInvalidEmail      = "invalid_email"
	CodeDuplicateEmail    = "duplicate_email"
	CodeDuplicateUsername = "duplicate_username"
	CodeFreeEmailDomain   = "free_email_domain"
	CodePasswordMismatch  = "password_mismatch"
	CodeTOSRequired       = "tos_required"
	CodeRequired          = "required"
)

// FieldError is a typed, user-recoverable input defect on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements error.
func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors aggregates every failure found for a submission. Validators are
// independent predicates over disjoint codes, so all applicable errors are
// collected instead of short-circuiting on the first.
type Errors []FieldError

// Error implements error.
func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Add appends a failure when err is non-nil.
func (e *Errors) Add(err *FieldError) {
	if err != nil {
		*e = append(*e, *err)
	}
}

// HTML5 email rule, WHATWG spec section 4.10.5.1.5. A willful violation of
// RFC 5322 that rejects comments and quoted-string local parts, which in
// turn lets the confusable check treat everything before the lone '@' as the
// local part and everything after as the domain.
var html5EmailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`,
)

// Email validates the candidate against the HTML5 address grammar.
func Email(field, value string) *FieldError {
	if html5EmailPattern.MatchString(value) {
		return nil
	}
	return &FieldError{
		Field:   field,
		Code:    CodeInvalidEmail,
		Message: "Enter a valid email address.",
	}
}

// ReservedNames disallows a configurable set of reserved names plus anything
// under the .well-known URI prefix.
type ReservedNames struct {
	names map[string]struct{}
}

// NewReservedNames builds a validator over the provided names. Pass
// DefaultReservedNames() for the stock list.
func NewReservedNames(names []string) *ReservedNames {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return &ReservedNames{names: set}
}

// Validate rejects candidates on the reserved list.
func (v *ReservedNames) Validate(field, value string) *FieldError {
	_, reserved := v.names[value]
	if reserved || strings.HasPrefix(value, ".well-known") {
		return &FieldError{
			Field:   field,
			Code:    CodeReservedName,
			Message: "This name is reserved and cannot be registered.",
		}
	}
	return nil
}

// Confusables disallows "dangerous" usernames likely to represent homograph
// attacks: values that are mixed-script and contain at least one character
// from the Unicode visually-confusable set. The detection itself is
// delegated to the confusable-homoglyphs library.
func Confusables(field, value string) *FieldError {
	if !confusable.IsDangerous(value, nil) {
		return nil
	}
	return &FieldError{
		Field:   field,
		Code:    CodeConfusable,
		Message: "This name cannot be registered. Please choose a different name.",
	}
}

// ConfusablesEmail applies the homograph check to the local part and the
// domain of an addr-spec separately. Values without exactly one '@' are not
// addr-specs and pass untouched; the Email validator already rejects them.
func ConfusablesEmail(field, value string) *FieldError {
	if strings.Count(value, "@") != 1 {
		return nil
	}

	at := strings.IndexByte(value, '@')
	localPart, domain := value[:at], value[at+1:]

	if !confusable.IsDangerous(localPart, nil) && !confusable.IsDangerous(domain, nil) {
		return nil
	}
	return &FieldError{
		Field:   field,
		Code:    CodeConfusableEmail,
		Message: "This email address cannot be registered. Please supply a different email address.",
	}
}

// FreeEmailDomains rejects addresses whose domain is on a configured block
// list of free/disposable providers. An empty list accepts everything.
type FreeEmailDomains struct {
	domains map[string]struct{}
}

// NewFreeEmailDomains builds the validator over the provided domain list.
func NewFreeEmailDomains(domains []string) *FreeEmailDomains {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[strings.ToLower(d)] = struct{}{}
	}
	return &FreeEmailDomains{domains: set}
}

// Validate rejects blocked domains.
func (v *FreeEmailDomains) Validate(field, value string) *FieldError {
	if len(v.domains) == 0 {
		return nil
	}
	at := strings.LastIndexByte(value, '@')
	if at < 0 {
		return nil
	}
	if _, blocked := v.domains[strings.ToLower(value[at+1:])]; !blocked {
		return nil
	}
	return &FieldError{
		Field:   field,
		Code:    CodeFreeEmailDomain,
		Message: "Registration using free email addresses is prohibited. Please supply a different email address.",
	}
}

// Fold normalizes a candidate for case-insensitive uniqueness comparison:
// Unicode NFKC normalization followed by case folding. A fresh Caser per
// call because cases.Caser carries internal state and is not safe to share.
func Fold(value string) string {
	return cases.Fold().String(norm.NFKC.String(value))
}
