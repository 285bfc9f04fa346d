package message

import "errors"

var (
	// ErrNotFielder is returned by [FieldsOf] for values that cannot be
	// converted to form fields.
	ErrNotFielder = errors.New("value does not provide form fields")

	// ErrNoBody is returned when a response carries neither a body
	// buffer nor a body file.
	ErrNoBody = errors.New("response has no body")
)
