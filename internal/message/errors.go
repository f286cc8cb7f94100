package message

import "errors"

var (
	ErrMalformedHeader  = errors.New("message: malformed header")
	ErrMalformedPayload = errors.New("message: malformed payload")
	ErrUnknownType      = errors.New("message: unknown message type")
	ErrInvalidUTF8      = errors.New("message: invalid utf8")
	ErrEmbeddedNUL      = errors.New("message: string contains NUL")
	ErrTooLong          = errors.New("message: too long")
	ErrEmptyText        = errors.New("message: empty text")
	ErrEmptyPayload     = errors.New("message: empty payload")
	ErrTimeRange        = errors.New("message: time out of range")
	ErrInvalidLocation  = errors.New("message: invalid location")
)
