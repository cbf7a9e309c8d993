package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/and161185/phonebook/internal/model"
)

// userResponse wraps the `{data:{user}}` shape used by the auth endpoints.
type userResponse struct {
	Data struct {
		User model.User `json:"user"`
	} `json:"data"`
}

// pageResponse wraps the `{data:{contacts,...}}` shape used by list endpoints.
type pageResponse struct {
	Data model.Page `json:"data"`
}

// contactResponse wraps the `{data:Contact}` shape used by mutations.
type contactResponse struct {
	Data model.Contact `json:"data"`
}

// Credentials are the sign-in inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile are the sign-up inputs.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GenerateToken silently renews the access token from the long-lived cookie
// and returns the session's user.
func (c *Client) GenerateToken(ctx context.Context) (*model.User, error) {
	var resp userResponse
	if err := c.postJSON(ctx, "/user/generatetoken", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data.User, nil
}

// Register creates an account and starts a session.
func (c *Client) Register(ctx context.Context, p Profile) (*model.User, error) {
	var resp userResponse
	if err := c.postJSON(ctx, "/user/register", p, &resp); err != nil {
		return nil, err
	}
	return &resp.Data.User, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*model.User, error) {
	var resp userResponse
	if err := c.postJSON(ctx, "/user/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp.Data.User, nil
}

// Logout ends the server-side session. The server answers 204 or `{success}`.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/user/logout", nil, nil)
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// ListContacts returns the unfiltered contact list page.
func (c *Client) ListContacts(ctx context.Context, page, limit int) (*model.Page, error) {
	var resp pageResponse
	if err := c.getJSON(ctx, "/contact/contactList", pageQuery(page, limit), &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// SearchContacts returns contacts whose name matches term, optionally
// narrowed by label; the server intersects both filters.
func (c *Client) SearchContacts(ctx context.Context, term string, label model.Label, page, limit int) (*model.Page, error) {
	q := pageQuery(page, limit)
	if label != model.LabelNone && label != model.LabelAll {
		q.Set("label", string(label))
	}
	var resp pageResponse
	if err := c.getJSON(ctx, "/contact/search/"+url.PathEscape(term), q, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ContactsByLabel returns the page of contacts carrying the given label.
func (c *Client) ContactsByLabel(ctx context.Context, label model.Label, page, limit int) (*model.Page, error) {
	var resp pageResponse
	if err := c.getJSON(ctx, "/contact/getlabel/"+url.PathEscape(string(label)), pageQuery(page, limit), &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// contactForm lays the input out as multipart fields; unset fields are
// omitted so update means "no change" for them.
func contactForm(in model.ContactInput) []formField {
	fields := []formField{
		{name: "name", value: in.Name},
		{name: "phoneNumber", value: in.PhoneNumber},
		{name: "address", value: in.Address},
		{name: "label", value: string(in.Label)},
	}
	if in.Avatar != nil {
		name := in.AvatarName
		if name == "" {
			name = "avatar"
		}
		fields = append(fields, formField{name: "avatar", fileName: name, data: in.Avatar})
	}
	return fields
}

// CreateContact registers a new contact; the server assigns its id.
func (c *Client) CreateContact(ctx context.Context, in model.ContactInput) (*model.Contact, error) {
	body, contentType, err := encodeForm(contactForm(in))
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	var resp contactResponse
	if err := c.do(ctx, http.MethodPost, "/contact/register", nil, body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateContact replaces the provided fields of the contact with the given id
// and returns the server's representation.
func (c *Client) UpdateContact(ctx context.Context, id string, in model.ContactInput) (*model.Contact, error) {
	body, contentType, err := encodeForm(contactForm(in))
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	var resp contactResponse
	if err := c.do(ctx, http.MethodPut, "/contact/update/"+url.PathEscape(id), nil, body, contentType, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// DeleteContact removes the contact with the given id.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/contact/delete/"+url.PathEscape(id), nil, nil, "", nil)
}

// ToggleBookmark flips the contact's bookmarked flag and returns the updated
// contact.
func (c *Client) ToggleBookmark(ctx context.Context, id string) (*model.Contact, error) {
	var resp contactResponse
	if err := c.do(ctx, http.MethodPut, "/contact/update/bookmark/"+url.PathEscape(id), nil, nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
