package users

import (
	"errors"
	"strings"
)

var (
	ErrUserIDEmpty   = errors.New("user id is empty")
	ErrUserNameEmpty = errors.New("user name is empty")
)

// User is an enrolled person. ID is the account key (a national id number in
// practice) and is treated as an opaque token.
type User struct {
	ID      string
	Name    string
	Contact string
}

func NewUser(id, name, contact string) (*User, error) {
	id = strings.TrimSpace(id)

	if err := ValidateID(id); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrUserNameEmpty
	}

	return &User{
		ID:      id,
		Name:    name,
		Contact: strings.TrimSpace(contact),
	}, nil
}

func ValidateID(id string) error {
	if id == "" {
		return ErrUserIDEmpty
	}

	return nil
}
