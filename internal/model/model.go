// Package model defines domain entities shared by the API client and the stores.
package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/and161185/phonebook/internal/errs"
)

var (
	phoneRe = regexp.MustCompile(`^\d{10}$`)
	// objectIDRe matches the server-assigned contact identifier format.
	objectIDRe = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

// User is the account identity returned by the auth endpoints.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DisplayName returns a printable name, falling back to the email local part.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.Username) != "" {
		return u.Username
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

// Label is the fixed contact category set. The empty value means unset.
type Label string

const (
	LabelNone    Label = ""
	LabelWork    Label = "Work"
	LabelSchool  Label = "School"
	LabelFriends Label = "Friends"
	LabelFamily  Label = "Family"

	// LabelAll is the filter sentinel meaning "no label filter".
	LabelAll Label = "All"
)

// ParseLabel maps user input to a known label, case-insensitively.
// Empty input and "All" both mean no filter.
func ParseLabel(s string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return LabelNone, nil
	case "all":
		return LabelAll, nil
	case "work":
		return LabelWork, nil
	case "school":
		return LabelSchool, nil
	case "friends":
		return LabelFriends, nil
	case "family":
		return LabelFamily, nil
	}
	return LabelNone, fmt.Errorf("unknown label %q (want Work, School, Friends or Family)", s)
}

// Contact is a single address-book entry as the server represents it.
// phoneNumber travels as a number on the wire.
type Contact struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	PhoneNumber int64  `json:"phoneNumber"`
	Address     string `json:"address,omitempty"`
	Label       Label  `json:"label,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Bookmarked  bool   `json:"bookmarked"`
}

// ContactInput is the client-side form record for create/update. PhoneNumber
// is kept as the raw string until validation converts it for submission.
// Avatar is an optional attachment; empty fields are omitted from the request
// entirely so the server treats absence as "no change" on update.
type ContactInput struct {
	Name        string
	PhoneNumber string
	Address     string
	Label       Label
	AvatarName  string // file name for the multipart part
	Avatar      []byte // raw image bytes, nil when absent
}

// Validate checks the input against submission rules. It never touches the
// network; failures come back as *errs.ValidationError.
func (in *ContactInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &errs.ValidationError{Field: "name", Message: "name is required"}
	}
	if !phoneRe.MatchString(in.PhoneNumber) {
		return &errs.ValidationError{Field: "phoneNumber", Message: "phone number must be exactly 10 digits"}
	}
	return nil
}

// ValidateContactID checks the server id format required by update/delete paths.
func ValidateContactID(id string) error {
	if !objectIDRe.MatchString(id) {
		return &errs.ValidationError{Field: "id", Message: "contact id must be a 24-character hex string"}
	}
	return nil
}

// Query is the active view specification over the contact list.
type Query struct {
	Page       int
	Limit      int
	SearchTerm string
	Label      Label
}

// DefaultQuery is the initial view: first page, ten per page, no filters.
func DefaultQuery() Query {
	return Query{Page: 1, Limit: 10}
}

// Filtered reports whether the label narrows the result set.
func (q Query) Filtered() bool {
	return q.Label != LabelNone && q.Label != LabelAll
}

// QueryPatch is a partial Query update; nil fields are left untouched.
type QueryPatch struct {
	Page       *int
	Limit      *int
	SearchTerm *string
	Label      *Label
}

// Apply merges the patch into q. Any change other than a pure page change
// resets the page to 1.
func (p QueryPatch) Apply(q Query) Query {
	next := q
	if p.Page != nil {
		next.Page = *p.Page
	}
	if p.Limit != nil {
		next.Limit = *p.Limit
	}
	if p.SearchTerm != nil {
		next.SearchTerm = *p.SearchTerm
	}
	if p.Label != nil {
		next.Label = *p.Label
	}
	if next.Limit != q.Limit || next.SearchTerm != q.SearchTerm || next.Label != q.Label {
		next.Page = 1
	}
	return next
}

// Page is one server-returned slice of the contact list plus pagination
// metadata. It replaces the client's list state wholesale; partial pages are
// never merged.
type Page struct {
	Contacts    []Contact `json:"contacts"`
	TotalCount  int       `json:"totalCount"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	Limit       int       `json:"limit"`
}
