package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Ad errors
	ErrAdNotFound      = errors.New("ad not found")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidCounty   = errors.New("invalid county")
	ErrNoContactMethod = errors.New("ad needs messaging enabled or a contact phone")
	ErrTooManyImages   = errors.New("ad already has the maximum number of images")

	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationExpired  = errors.New("conversation has expired")
	ErrMessagingDisabled    = errors.New("messaging is disabled for this ad")
	ErrOwnAd                = errors.New("cannot start a conversation on your own ad")
	ErrMessageBlocked       = errors.New("message contains a forbidden word")

	// Report errors
	ErrInvalidReason = errors.New("invalid report reason")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
