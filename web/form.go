package web

import (
	"strconv"
	"strings"
	"time"

	"github.com/tfkr-ae/raseed/domain"
	"github.com/tfkr-ae/raseed/render"
)

// FormState is the editable receipt form between round trips.
type FormState struct {
	Rows          []domain.RawDomainEntry
	TwitterHandle string
	Errors        domain.ValidationErrors
}

// NewFormState returns a form with one empty row dated today.
func NewFormState(today time.Time) *FormState {
	f := &FormState{}
	f.AddRow(today)
	return f
}

// FormStateFrom rebuilds the form from a submission. A submission without rows gets
// one empty row so there is always something to fill in.
func FormStateFrom(raw domain.RawReceiptForm, today time.Time) *FormState {
	f := &FormState{
		Rows:          append([]domain.RawDomainEntry(nil), raw.Domains...),
		TwitterHandle: raw.TwitterHandle,
	}
	if len(f.Rows) == 0 {
		f.AddRow(today)
	}
	return f
}

// AddRow appends an empty row dated today.
func (f *FormState) AddRow(today time.Time) {
	f.Rows = append(f.Rows, domain.RawDomainEntry{RegistrationDate: today.Format(time.DateOnly)})
}

// RemoveRow removes row i. The last remaining row is never removed.
func (f *FormState) RemoveRow(i int) bool {
	if len(f.Rows) <= 1 || i < 0 || i >= len(f.Rows) {
		return false
	}
	f.Rows = append(f.Rows[:i], f.Rows[i+1:]...)
	return true
}

// Page converts the form into template data.
func (f *FormState) Page(today time.Time) render.FormPage {
	page := render.FormPage{
		TwitterHandle: f.TwitterHandle,
		Today:         today.Format(time.DateOnly),
	}
	for _, e := range f.Errors.ForField("domains") {
		page.Errors = append(page.Errors, e.Message)
	}
	for i, row := range f.Rows {
		page.Rows = append(page.Rows, render.FormRow{
			Index:            i,
			Number:           i + 1,
			Name:             row.Name,
			RegistrationDate: row.RegistrationDate,
			Notes:            row.Notes,
			NameError:        firstMessage(f.Errors.ForField(domain.DomainField(i, "name"))),
			DateError:        firstMessage(f.Errors.ForField(domain.DomainField(i, "registrationDate"))),
			Removable:        len(f.Rows) > 1,
		})
	}
	return page
}

func firstMessage(errs []domain.FieldError) string {
	if len(errs) == 0 {
		return ""
	}
	return errs[0].Message
}

// parseRemoveAction reads the row index from a "remove-N" action.
func parseRemoveAction(action string) (int, bool) {
	rest, ok := strings.CutPrefix(action, "remove-")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return i, true
}

// CheckNotFuture rejects registration dates after now. The rule belongs to the form,
// not to the receipt model.
func CheckNotFuture(data domain.ReceiptFormData, now time.Time) domain.ValidationErrors {
	var errs domain.ValidationErrors
	for i, d := range data.Domains {
		if d.RegistrationDate.After(now) {
			errs = append(errs, domain.FieldError{
				Field:   domain.DomainField(i, "registrationDate"),
				Kind:    domain.KindFutureRegistrationDate,
				Message: "Registration date cannot be in the future",
			})
		}
	}
	return errs
}
