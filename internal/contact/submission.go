package contact

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

// Submission is a contact form post. Company is a honeypot that real visitors
// never see.
type Submission struct {
	Name    string
	Email   string
	Phone   string
	Package string
	Message string
	Company string
}

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "contact: invalid submission"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("contact: invalid submission: %s", strings.Join(keys, ", "))
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	_, ok := e.Fields[field]
	return ok
}

// Normalize returns a copy with surrounding whitespace removed.
func (s Submission) Normalize() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Phone:   strings.TrimSpace(s.Phone),
		Package: strings.TrimSpace(s.Package),
		Message: strings.TrimSpace(s.Message),
		Company: strings.TrimSpace(s.Company),
	}
}

// Validate requires name, email and message, and a parseable email address.
func (s Submission) Validate() error {
	s = s.Normalize()
	fields := map[string]string{}
	if s.Name == "" {
		fields["name"] = "required"
	}
	if s.Email == "" {
		fields["email"] = "required"
	} else if !validEmail(s.Email) {
		fields["email"] = "invalid"
	}
	if s.Message == "" {
		fields["message"] = "required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// IsBot reports whether the honeypot field was filled in.
func (s Submission) IsBot() bool {
	return strings.TrimSpace(s.Company) != ""
}

// Subject is the mail subject the form service uses for the inquiry.
func (s Submission) Subject() string {
	if pkg := strings.TrimSpace(s.Package); pkg != "" {
		return subjectPrefix + " — " + pkg
	}
	return subjectPrefix
}

// PrefillMessage is the message body suggested when a visitor arrives from a
// package call to action.
func PrefillMessage(pkg string) string {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return ""
	}
	return fmt.Sprintf("Hi, I'm interested in the %s. Please provide more information about this package and how we can get started.", pkg)
}

func validEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	if err != nil {
		return false
	}
	return addr.Address == v && strings.Contains(v[strings.LastIndex(v, "@")+1:], ".")
}
