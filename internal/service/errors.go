package service

import "errors"

var (
	ErrMissingField           = errors.New("missing required field")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidPlan            = errors.New("invalid plan")
	ErrMalformedTransactionID = errors.New("malformed transaction id")
	ErrUnknownGateway         = errors.New("unknown gateway")
)
