package services

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/mediabox/internal/common"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 3
	maxTitleLen    = 255
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

// normalizeUsername trims surrounding space. Usernames are otherwise
// compared exactly (case-sensitive).
func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return "", validationError("username must be %d to %d characters", minUsernameLen, maxUsernameLen)
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return "", validationError("username must not contain spaces")
	}
	return username, nil
}

// normalizeEmail accepts a bare address only ("a@b.c", not "A <a@b.c>") and
// lower-cases it, which makes email uniqueness case-insensitive.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", validationError("invalid email address")
	}
	_, domain, _ := strings.Cut(email, "@")
	if !strings.Contains(domain, ".") {
		return "", validationError("invalid email address")
	}
	return strings.ToLower(email), nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return validationError("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func validatePost(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
		return "", "", validationError("title must be 1 to %d characters", maxTitleLen)
	}
	if strings.TrimSpace(content) == "" {
		return "", "", validationError("content must not be empty")
	}
	return title, content, nil
}

func validateComment(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", validationError("content must not be empty")
	}
	return content, nil
}
