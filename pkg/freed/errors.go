package freed

import "errors"

var (
	ErrEmptyFrame  = errors.New("freed: empty frame")
	ErrUnknownType = errors.New("freed: unknown message type")
)
