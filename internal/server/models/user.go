// Package models contains the domain records persisted by the server and the
// projections returned to clients.
package models

import "time"

// User is a stored account. Records are treated as values: the helpers below
// return modified copies instead of mutating the receiver.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	// ProfilePhoto is an object storage key; empty until the first upload.
	ProfilePhoto string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-facing projection of a User. It never carries
// the password hash.
type PublicUser struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	ProfilePhoto    *string `json:"profile_photo"`
	ProfilePhotoURL string  `json:"profile_photo_url,omitempty"`
}

func (u User) Public() PublicUser {
	p := PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
	if u.ProfilePhoto != "" {
		photo := u.ProfilePhoto
		p.ProfilePhoto = &photo
	}
	return p
}

func (u User) WithPhoto(key string) User {
	u.ProfilePhoto = key
	return u
}

func (u User) WithUsername(username string) User {
	u.Username = username
	return u
}

func (u User) WithEmail(email string) User {
	u.Email = email
	return u
}

func (u User) WithPasswordHash(hash string) User {
	u.PasswordHash = hash
	return u
}

// ProfilePatch lists the profile fields a user may change. Nil means
// "leave as is".
type ProfilePatch struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (p ProfilePatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Password == nil
}
