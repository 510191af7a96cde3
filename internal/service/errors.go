package service

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidThreshold    = errors.New("invalid threshold")
	ErrInvalidMultiplier   = errors.New("invalid multiplier")
	ErrInvalidEmail        = errors.New("please enter a valid email address")
	ErrInvalidPhone        = errors.New("please enter a valid phone number in E.164 format")
	ErrInvalidName         = errors.New("name is required")
	ErrContactLimit        = errors.New("you can only add up to 3 emergency contacts")
	ErrDuplicateContact    = errors.New("this contact is already added")
	ErrNoContacts          = errors.New("no emergency contacts to notify")
	ErrMessageTooLong      = errors.New("max length is 500 characters")
	ErrNoLastWords         = errors.New("no last words message saved yet")
	ErrNoEmail             = errors.New("your account has no email address")
	ErrConfirmationExpired = errors.New("this confirmation link has expired")
)
