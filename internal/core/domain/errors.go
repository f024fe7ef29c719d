package domain

import "errors"

var (
	ErrUnknownRole     = errors.New("unknown role")
	ErrInvalidToken    = errors.New("invalid access token")
	ErrTokenExpired    = errors.New("access token expired")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionNotFound = errors.New("session not found")
	ErrRequestFailed   = errors.New("api request failed")
)
