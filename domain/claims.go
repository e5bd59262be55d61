package domain

import "strings"

// Claims carries the identity claims resolved by the external provider.
type Claims struct {
	Authenticated     bool              `json:"authenticated"`
	Subject           string            `json:"sub,omitempty"`
	ObjectID          string            `json:"oid,omitempty"`
	PreferredUsername string            `json:"preferred_username,omitempty"`
	Email             string            `json:"email,omitempty"`
	Name              string            `json:"name,omitempty"`
	Raw               map[string]string `json:"raw,omitempty"`
}

// Identity returns the stable object id, falling back to the subject.
func (c *Claims) Identity() string {
	if c == nil {
		return ""
	}
	if c.ObjectID != "" {
		return c.ObjectID
	}
	return c.Subject
}

// ContactEmail prefers the provider's username claim over the email claim.
func (c *Claims) ContactEmail() string {
	if c == nil {
		return ""
	}
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Email
}

// DisplayName returns the name claim or the local part of the email.
func (c *Claims) DisplayName() string {
	if c == nil {
		return ""
	}
	if c.Name != "" {
		return c.Name
	}
	email := c.ContactEmail()
	if at := strings.IndexByte(email, '@'); at >= 0 {
		return email[:at]
	}
	return email
}
