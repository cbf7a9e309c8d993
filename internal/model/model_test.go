package model

import (
	"errors"
	"testing"

	"github.com/and161185/phonebook/internal/errs"
)

func TestContactInput_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        ContactInput
		wantField string
	}{
		{"ok", ContactInput{Name: "Alice", PhoneNumber: "0123456789"}, ""},
		{"empty name", ContactInput{Name: "  ", PhoneNumber: "0123456789"}, "name"},
		{"short phone", ContactInput{Name: "Alice", PhoneNumber: "12345"}, "phoneNumber"},
		{"long phone", ContactInput{Name: "Alice", PhoneNumber: "01234567890"}, "phoneNumber"},
		{"letters in phone", ContactInput{Name: "Alice", PhoneNumber: "01234abcde"}, "phoneNumber"},
		{"empty phone", ContactInput{Name: "Alice"}, "phoneNumber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("want ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Fatalf("want field %q, got %q", tt.wantField, ve.Field)
			}
		})
	}
}

func TestValidateContactID(t *testing.T) {
	t.Parallel()

	if err := ValidateContactID("64a51f8e2c9d3b0012345678"); err != nil {
		t.Fatalf("valid id rejected: %v", err)
	}
	for _, id := range []string{"", "xyz", "64a51f8e2c9d3b001234567", "64a51f8e2c9d3b00123456789", "64a51f8e2c9d3b001234567g"} {
		if err := ValidateContactID(id); err == nil {
			t.Fatalf("id %q should be rejected", id)
		}
	}
}

func TestParseLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Label
		wantErr bool
	}{
		{"", LabelNone, false},
		{"All", LabelAll, false},
		{"all", LabelAll, false},
		{"work", LabelWork, false},
		{"Family", LabelFamily, false},
		{" friends ", LabelFriends, false},
		{"coworkers", LabelNone, true},
	}
	for _, tt := range tests {
		got, err := ParseLabel(tt.in)
		if tt.wantErr != (err != nil) {
			t.Fatalf("ParseLabel(%q): err=%v, wantErr=%v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLabel(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQueryPatch_Apply_ResetsPage(t *testing.T) {
	t.Parallel()

	base := Query{Page: 3, Limit: 10, SearchTerm: "al", Label: LabelWork}

	term := "ali"
	got := QueryPatch{SearchTerm: &term}.Apply(base)
	if got.Page != 1 {
		t.Fatalf("search change should reset page, got %d", got.Page)
	}

	label := LabelFamily
	got = QueryPatch{Label: &label}.Apply(base)
	if got.Page != 1 {
		t.Fatalf("label change should reset page, got %d", got.Page)
	}

	limit := 25
	got = QueryPatch{Limit: &limit}.Apply(base)
	if got.Page != 1 {
		t.Fatalf("limit change should reset page, got %d", got.Page)
	}

	page := 5
	got = QueryPatch{Page: &page}.Apply(base)
	if got.Page != 5 {
		t.Fatalf("pure page change must keep requested page, got %d", got.Page)
	}
	if got.SearchTerm != base.SearchTerm || got.Label != base.Label || got.Limit != base.Limit {
		t.Fatalf("pure page change must not touch other fields: %+v", got)
	}

	// A patch that changes search and page at once still lands on page 1.
	got = QueryPatch{SearchTerm: &term, Page: &page}.Apply(base)
	if got.Page != 1 {
		t.Fatalf("mixed change should reset page, got %d", got.Page)
	}

	// Re-applying the same values is a no-op and keeps the page.
	same := base.SearchTerm
	got = QueryPatch{SearchTerm: &same}.Apply(base)
	if got.Page != base.Page {
		t.Fatalf("unchanged search must keep page %d, got %d", base.Page, got.Page)
	}
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	if got := (&User{Username: "bob", Email: "b@x.io"}).DisplayName(); got != "bob" {
		t.Fatalf("got %q", got)
	}
	if got := (&User{Email: "bob@x.io"}).DisplayName(); got != "bob" {
		t.Fatalf("got %q", got)
	}
	var nobody *User
	if got := nobody.DisplayName(); got != "" {
		t.Fatalf("got %q", got)
	}
}
