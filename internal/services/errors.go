package services

import "errors"

// Authentication errors. Missing and BadScheme concern how the token was
// presented; Malformed and Expired concern the token itself.
var (
	ErrTokenMissing       = errors.New("token missing")
	ErrTokenBadScheme     = errors.New("authorization header must use the Bearer scheme")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrDuplicateUsername is returned by Signup when the username is taken.
var ErrDuplicateUsername = errors.New("username already taken")

// ErrInvalidQuantity is returned when a cart line would hold no items.
var ErrInvalidQuantity = errors.New("quantity must be greater than zero")
