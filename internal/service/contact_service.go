package service

import (
	"context"
	"errors"
	"strings"

	"alloneword/internal/validation"
)

// ErrContactUnavailable means no contact email is configured in the site settings
var ErrContactUnavailable = errors.New("contact form is not available")

// ContactInput is the public contact form
type ContactInput struct {
	Name    string `json:"name" validate:"notblank,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"notblank,max=5000"`
}

// ContactService forwards contact form messages to the organisation
type ContactService struct {
	settings *SettingsService
	email    *EmailService
}

// NewContactService creates a new contact service
func NewContactService(settings *SettingsService, email *EmailService) *ContactService {
	return &ContactService{settings: settings, email: email}
}

// Send emails the message to the contact address from the site settings
func (s *ContactService) Send(ctx context.Context, in ContactInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if settings.ContactEmail == "" {
		return ErrContactUnavailable
	}

	return s.email.SendContactEmail(ctx, settings.ContactEmail, in.Name, in.Email, in.Message)
}
