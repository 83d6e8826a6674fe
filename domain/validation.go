package domain

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// FieldErrorKind classifies a validation failure.
type FieldErrorKind string

const (
	KindMissingDomains          FieldErrorKind = "missing_domains"
	KindMissingDomainName       FieldErrorKind = "missing_domain_name"
	KindMissingRegistrationDate FieldErrorKind = "missing_registration_date"
	// KindFutureRegistrationDate is raised by the web form only; it is not a model rule.
	KindFutureRegistrationDate FieldErrorKind = "future_registration_date"
)

var (
	ErrRegistrationDateMissing = errors.New("registration date is required")
	ErrRegistrationDateInvalid = errors.New("registration date is not a valid date")
)

// Messages shown to the user, keyed by the error that produced them.
var registrationDateMessages = map[error]string{
	ErrRegistrationDateMissing: "Registration date is required",
	ErrRegistrationDateInvalid: "Registration date is not a valid date",
}

// Accepted layouts for a registration date, tried in order.
var registrationDateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
}

// FieldError is a single violated constraint, addressed by the path of the offending field
// (e.g. "domains" or "domains.0.name").
type FieldError struct {
	Field   string         `json:"field"`
	Kind    FieldErrorKind `json:"kind"`
	Message string         `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors holds every constraint violated by a submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid receipt: " + strings.Join(msgs, "; ")
}

// ForField returns the errors reported against field.
func (v ValidationErrors) ForField(field string) []FieldError {
	var out []FieldError
	for _, e := range v {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// RawDomainEntry is a domain row exactly as it was submitted.
type RawDomainEntry struct {
	Name             string `json:"name"`
	RegistrationDate string `json:"registrationDate"`
	Notes            string `json:"notes,omitempty"`
}

// RawReceiptForm is an unvalidated submission.
type RawReceiptForm struct {
	Domains       []RawDomainEntry `json:"domains"`
	TwitterHandle string           `json:"twitterHandle,omitempty"`
}

// DomainField returns the path of a field on the domain row at index.
func DomainField(index int, name string) string {
	return "domains." + strconv.Itoa(index) + "." + name
}

// Validate checks raw against the receipt rules and returns the typed form data.
// Every violation is reported; when there is at least one the returned error is a
// ValidationErrors and the form data is the zero value.
func Validate(raw RawReceiptForm) (ReceiptFormData, error) {
	var errs ValidationErrors

	if len(raw.Domains) == 0 {
		errs = append(errs, FieldError{
			Field:   "domains",
			Kind:    KindMissingDomains,
			Message: "At least one domain is required",
		})
	}

	domains := make([]DomainEntry, 0, len(raw.Domains))
	for i, rawEntry := range raw.Domains {
		entry := DomainEntry{
			Name:  cleanText(rawEntry.Name),
			Notes: cleanText(rawEntry.Notes),
		}

		if entry.Name == "" {
			errs = append(errs, FieldError{
				Field:   DomainField(i, "name"),
				Kind:    KindMissingDomainName,
				Message: "Domain name is required",
			})
		}

		date, err := ParseRegistrationDate(rawEntry.RegistrationDate)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   DomainField(i, "registrationDate"),
				Kind:    KindMissingRegistrationDate,
				Message: registrationDateMessages[err],
			})
		}
		entry.RegistrationDate = date

		domains = append(domains, entry)
	}

	if len(errs) > 0 {
		return ReceiptFormData{}, errs
	}

	return ReceiptFormData{
		Domains:       domains,
		TwitterHandle: strings.TrimPrefix(cleanText(raw.TwitterHandle), "@"),
	}, nil
}

// ParseRegistrationDate parses a submitted registration date.
// Date-only values are interpreted as midnight UTC.
func ParseRegistrationDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrRegistrationDateMissing
	}
	for _, layout := range registrationDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrRegistrationDateInvalid
}

// ParseForm reads a RawReceiptForm from form values named "domains.N.name",
// "domains.N.registrationDate", "domains.N.notes" and "twitterHandle".
// Rows are ordered by N; gaps in the numbering are closed.
func ParseForm(values url.Values) RawReceiptForm {
	rows := make(map[int]*RawDomainEntry)
	for key, vals := range values {
		index, field, ok := splitDomainKey(key)
		if !ok || len(vals) == 0 {
			continue
		}
		row, ok := rows[index]
		if !ok {
			row = &RawDomainEntry{}
			rows[index] = row
		}
		switch field {
		case "name":
			row.Name = vals[0]
		case "registrationDate":
			row.RegistrationDate = vals[0]
		case "notes":
			row.Notes = vals[0]
		}
	}

	indexes := make([]int, 0, len(rows))
	for i := range rows {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	form := RawReceiptForm{
		Domains:       make([]RawDomainEntry, 0, len(indexes)),
		TwitterHandle: values.Get("twitterHandle"),
	}
	for _, i := range indexes {
		form.Domains = append(form.Domains, *rows[i])
	}
	return form
}

// splitDomainKey splits "domains.3.name" into (3, "name").
func splitDomainKey(key string) (int, string, bool) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != "domains" {
		return 0, "", false
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil || index < 0 {
		return 0, "", false
	}
	return index, parts[2], true
}

func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
