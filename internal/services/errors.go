// Package services defines the business logic for the whitelist, access
// control and Cloudflare domain management. This file centralizes the
// service-level error values so that callers can branch on them with
// errors.Is.
//
// Errors belong to one of three families (ErrValidation, ErrConflict,
// ErrNotFound). Translation into chat replies or HTTP statuses is done by the
// bot dispatcher and the HTTP handlers.
package services

import "errors"

// Error families.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// kindError is a concrete error that also matches its family.
type kindError struct {
	family error
	msg    string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.family }

// Whitelist errors.
var (
	// ErrIdentityRequired is returned when neither username nor telegram id
	// is supplied.
	ErrIdentityRequired error = &kindError{ErrValidation, "username or telegramId required"}

	// ErrUserExists is returned when an entry with the same telegram id or
	// username is already whitelisted.
	ErrUserExists error = &kindError{ErrConflict, "user already exists in whitelist"}

	// ErrUserNotFound indicates that no whitelist entry has the given id.
	ErrUserNotFound error = &kindError{ErrNotFound, "user not found"}
)

// Domain errors.
var (
	// ErrInvalidDomain is returned for names that are not valid DNS names.
	ErrInvalidDomain error = &kindError{ErrValidation, "некорректное имя домена"}

	// ErrZoneNotFound is returned when neither Cloudflare nor the local
	// registry knows a zone for the domain.
	ErrZoneNotFound error = &kindError{ErrNotFound, "zone not found"}

	// ErrDomainExists is returned when the registry already holds the name.
	ErrDomainExists error = &kindError{ErrConflict, "domain already registered"}
)
