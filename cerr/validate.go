package cerr

import errors "gopkg.in/src-d/go-errors.v1"

// Runtime JSON-validator error kinds (§4.5). Each names the CIDL shape
// check that failed; Type supplies the offending type name, value or
// detail as context.
var (
	ErrUndefined         = errors.NewKind("missing required value: %s")
	ErrNullValue         = errors.NewKind("value must not be null: %s")
	ErrNonInteger        = errors.NewKind("value is not an integer: %s")
	ErrNonReal           = errors.NewKind("value is not a number: %s")
	ErrNonString         = errors.NewKind("value is not a string: %s")
	ErrNonBoolean        = errors.NewKind("value is not a boolean: %s")
	ErrNonDateIso        = errors.NewKind("value is not an ISO 8601 date: %s")
	ErrNonBase64         = errors.NewKind("value is not valid base64: %s")
	ErrInvalidKVObject   = errors.NewKind("invalid KV object: %s")
	ErrNonObject         = errors.NewKind("value is not an object: %s")
	ErrInvalidR2Object   = errors.NewKind("invalid R2 object: %s")
	ErrUnknownDataSource = errors.NewKind("unknown data source: %s")
	ErrNonArray          = errors.NewKind("value is not an array: %s")
)
