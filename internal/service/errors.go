package service

import "errors"

// Validation and authorization failures the transport layer dispatches on
// with errors.Is. Anything else coming out of a service is a storage fault
// and surfaces as a 500.
var (
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameTaken    = errors.New("username already registered")

	ErrUnknownUsername = errors.New("unknown username")
	ErrWrongPassword   = errors.New("wrong password")

	ErrTitleRequired = errors.New("title is required")
	ErrPostNotFound  = errors.New("post not found")
	ErrNotPostAuthor = errors.New("not the post author")
)
