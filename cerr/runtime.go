package cerr

import errors "gopkg.in/src-d/go-errors.v1"

// Relational query synthesizer error kinds (§4.4).
var (
	// ErrUnknownModel is raised when a model name does not resolve in the analyzed AST.
	ErrUnknownModel = errors.NewKind("unknown model: %s")
	// ErrModelMissingD1 is raised when select, JSON aggregation, or row mapping targets a model without a primary key.
	ErrModelMissingD1 = errors.NewKind("model is not a D1 model: %s")
	// ErrMissingAttribute is raised when a required JSON field is absent.
	ErrMissingAttribute = errors.NewKind("missing attribute: %s")
	// ErrMissingKeyParameter is raised when a KV/R2 key format's placeholder has no value at write time.
	ErrMissingKeyParameter = errors.NewKind("missing key parameter: %s")
	// ErrTypeMismatch is raised when a JSON value cannot be coerced to its column's CidlType.
	ErrTypeMismatch = errors.NewKind("type mismatch: %s")
)
