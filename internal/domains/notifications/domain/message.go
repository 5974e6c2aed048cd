package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownRecipient = errors.New("unknown recipient type")
	ErrEmptyContact     = errors.New("contact number is required")
)

// RecipientType tags who a greeting is addressed to.
type RecipientType string

const (
	RecipientUser    RecipientType = "user"
	RecipientGroomer RecipientType = "groomer"
)

// Message is published after an account is created.
type Message struct {
	RecipientType RecipientType `json:"recipientType"`
	ContactNo     string        `json:"contactNo"`
}

// Validate checks the message can be delivered.
func (m Message) Validate() error {
	if m.RecipientType != RecipientUser && m.RecipientType != RecipientGroomer {
		return fmt.Errorf("%w: %q", ErrUnknownRecipient, m.RecipientType)
	}
	if strings.TrimSpace(m.ContactNo) == "" {
		return ErrEmptyContact
	}
	return nil
}

// Greeting is the text sent to the recipient.
func (m Message) Greeting() string {
	if m.RecipientType == RecipientUser {
		return "Dear user, thanks for signing up with our service!"
	}
	return "Dear groomer, thanks for signing up with our service!"
}
