package domain

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Run("should accept a single valid domain", func(t *testing.T) {
		raw := RawReceiptForm{
			Domains: []RawDomainEntry{
				{Name: "example.com", RegistrationDate: "2024-01-15"},
			},
			TwitterHandle: "acme",
		}

		got, err := Validate(raw)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		want := ReceiptFormData{
			Domains: []DomainEntry{
				{Name: "example.com", RegistrationDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
			},
			TwitterHandle: "acme",
		}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
	})

	t.Run("should reject an empty domains list with an error on domains", func(t *testing.T) {
		_, err := Validate(RawReceiptForm{Domains: []RawDomainEntry{}})

		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("\nwanted:\nValidationErrors\ngot:\n%v", err)
		}
		got := verrs.ForField("domains")
		if len(got) != 1 || got[0].Kind != KindMissingDomains {
			t.Fatalf("\nwanted:\none %s error on domains\ngot:\n%+v", KindMissingDomains, verrs)
		}
	})

	t.Run("should reject a nil domains list", func(t *testing.T) {
		_, err := Validate(RawReceiptForm{TwitterHandle: "acme"})
		if err == nil {
			t.Fatalf("\nwanted:\nnon-nil\ngot:\n%v", err)
		}
	})

	t.Run("should report every violation in the same submission", func(t *testing.T) {
		raw := RawReceiptForm{
			Domains: []RawDomainEntry{
				{Name: "   ", RegistrationDate: "2024-01-15"},
				{Name: "example.org", RegistrationDate: ""},
				{Name: "", RegistrationDate: "not a date"},
			},
		}

		_, err := Validate(raw)

		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("\nwanted:\nValidationErrors\ngot:\n%v", err)
		}

		want := ValidationErrors{
			{Field: "domains.0.name", Kind: KindMissingDomainName, Message: "Domain name is required"},
			{Field: "domains.1.registrationDate", Kind: KindMissingRegistrationDate, Message: "Registration date is required"},
			{Field: "domains.2.name", Kind: KindMissingDomainName, Message: "Domain name is required"},
			{Field: "domains.2.registrationDate", Kind: KindMissingRegistrationDate, Message: "Registration date is not a valid date"},
		}
		if !reflect.DeepEqual(want, verrs) {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, verrs)
		}
	})

	t.Run("should not check domain name syntax", func(t *testing.T) {
		raw := RawReceiptForm{
			Domains: []RawDomainEntry{{Name: "not_a valid label!", RegistrationDate: "2024-01-15"}},
		}

		got, err := Validate(raw)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got.Domains[0].Name != "not_a valid label!" {
			t.Fatalf("\nwanted:\nnot_a valid label!\ngot:\n%s", got.Domains[0].Name)
		}
	})

	t.Run("should trim text and strip a leading @ from the handle", func(t *testing.T) {
		raw := RawReceiptForm{
			Domains:       []RawDomainEntry{{Name: "  example.com ", RegistrationDate: "2024-01-15T10:20:30Z", Notes: " first one "}},
			TwitterHandle: " @acme ",
		}

		got, err := Validate(raw)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got.Domains[0].Name != "example.com" || got.Domains[0].Notes != "first one" || got.TwitterHandle != "acme" {
			t.Fatalf("\nwanted:\ntrimmed fields\ngot:\n%+v", got)
		}
		wantDate := time.Date(2024, 1, 15, 10, 20, 30, 0, time.UTC)
		if !got.Domains[0].RegistrationDate.Equal(wantDate) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", wantDate, got.Domains[0].RegistrationDate)
		}
	})

	t.Run("should normalise names to NFC", func(t *testing.T) {
		decomposed := "cafe\u0301.com"
		raw := RawReceiptForm{
			Domains: []RawDomainEntry{{Name: decomposed, RegistrationDate: "2024-01-15"}},
		}

		got, err := Validate(raw)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if got.Domains[0].Name != "caf\u00e9.com" {
			t.Fatalf("\nwanted:\n%q\ngot:\n%q", "caf\u00e9.com", got.Domains[0].Name)
		}
	})
}

func TestParseForm(t *testing.T) {
	t.Run("should order rows by index and close gaps", func(t *testing.T) {
		values := url.Values{
			"domains.2.name":             {"second.com"},
			"domains.2.registrationDate": {"2024-02-01"},
			"domains.0.name":             {"first.com"},
			"domains.0.registrationDate": {"2024-01-01"},
			"domains.0.notes":            {"note"},
			"twitterHandle":              {"acme"},
			"unrelated":                  {"x"},
			"domains.x.name":             {"ignored.com"},
		}

		got := ParseForm(values)

		want := RawReceiptForm{
			Domains: []RawDomainEntry{
				{Name: "first.com", RegistrationDate: "2024-01-01", Notes: "note"},
				{Name: "second.com", RegistrationDate: "2024-02-01"},
			},
			TwitterHandle: "acme",
		}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
	})

	t.Run("should return no rows for an empty form", func(t *testing.T) {
		got := ParseForm(url.Values{})

		if len(got.Domains) != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", len(got.Domains))
		}
	})
}
