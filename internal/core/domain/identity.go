package domain

import "strings"

// UserIdentity is the normalized user record every identity backend produces.
// Backends hand instances over to the session manager and keep no reference.
type UserIdentity struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	EmailVerified bool   `json:"email_verified"`
}

// Credential is the transient email/secret pair submitted by the login form.
// It is never persisted.
type Credential struct {
	Email  string
	Secret string
}

// Complete reports whether both fields carry a value.
func (c Credential) Complete() bool {
	return strings.TrimSpace(c.Email) != "" && c.Secret != ""
}

// LocalPart returns the part of an email address before the first "@".
// An address without "@" is returned unchanged.
func LocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Clone returns a copy of the identity, or nil.
func (u *UserIdentity) Clone() *UserIdentity {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
