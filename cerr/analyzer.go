// Package cerr collects every error kind the core can raise. Each kind is
// a *errors.Kind, the same shape the teacher's auth package uses for its
// own error taxonomy: a sentinel constructed with a format string, raised
// with .New(context), and recognized later with .Is(err).
package cerr

import errors "gopkg.in/src-d/go-errors.v1"

// Semantic analyzer error kinds (§4.2).
var (
	// ErrInvalidInputFile is raised when an AST file cannot be decoded.
	ErrInvalidInputFile = errors.NewKind("invalid input file: %s")
	// ErrInvalidMapping is raised when an ordered mapping's key does not
	// match the name of the value it maps to.
	ErrInvalidMapping = errors.NewKind("mapping key does not match value name: %s")
	// ErrUnexpectedVoid is raised when Void appears somewhere it cannot.
	ErrUnexpectedVoid = errors.NewKind("unexpected void type: %s")
	// ErrUnexpectedInject is raised when Inject appears somewhere it cannot.
	ErrUnexpectedInject = errors.NewKind("unexpected inject type: %s")
	// ErrInvalidStream is raised when Stream is used outside its legal positions.
	ErrInvalidStream = errors.NewKind("invalid stream usage: %s")
	// ErrUnknownObject is raised when Object/Partial references an unknown model or POO.
	ErrUnknownObject = errors.NewKind("unknown object reference: %s")
	// ErrInvalidModelReference is raised when a name does not resolve to a known model.
	ErrInvalidModelReference = errors.NewKind("invalid model reference: %s")
	// ErrNullPrimaryKey is raised when a model's primary key is nullable.
	ErrNullPrimaryKey = errors.NewKind("primary key cannot be nullable: %s")
	// ErrMissingPrimaryKey is raised when a D1 model is missing a primary key.
	ErrMissingPrimaryKey = errors.NewKind("missing primary key: %s")
	// ErrNullSqlType is raised when a column type is Nullable<Void>.
	ErrNullSqlType = errors.NewKind("nullable void is not a valid sql type: %s")
	// ErrInvalidSqlType is raised when a column's root type cannot map to SQL.
	ErrInvalidSqlType = errors.NewKind("invalid sql type: %s")
	// ErrMismatchedForeignKeyTypes is raised when an FK column's type doesn't match its referent's PK.
	ErrMismatchedForeignKeyTypes = errors.NewKind("mismatched foreign key types: %s")
	// ErrInvalidNavigationPropertyReference is raised when a nav prop's column_reference doesn't resolve.
	ErrInvalidNavigationPropertyReference = errors.NewKind("invalid navigation property reference: %s")
	// ErrMismatchedNavigationPropertyTypes is raised when a nav prop's FK doesn't point at its declared model.
	ErrMismatchedNavigationPropertyTypes = errors.NewKind("mismatched navigation property types: %s")
	// ErrMissingManyToManyReference is raised when only one side of an M:M pair declares it.
	ErrMissingManyToManyReference = errors.NewKind("missing many to many reference: %s")
	// ErrExtraneousManyToManyReferences is raised when more than two models declare the same M:M pair.
	ErrExtraneousManyToManyReferences = errors.NewKind("extraneous many to many references: %s")
	// ErrUnknownIncludeTreeReference is raised when an include tree child doesn't resolve.
	ErrUnknownIncludeTreeReference = errors.NewKind("unknown include tree reference: %s")
	// ErrUnknownDataSourceReference is raised when a data source name doesn't resolve on its model.
	ErrUnknownDataSourceReference = errors.NewKind("unknown data source reference: %s")
	// ErrInvalidDataSourceReference is raised when a data source is attached somewhere illegal (e.g. a static method).
	ErrInvalidDataSourceReference = errors.NewKind("invalid data source reference: %s")
	// ErrUnsupportedCrudOperation is raised when a declared CRUD operation isn't legal for the model.
	ErrUnsupportedCrudOperation = errors.NewKind("unsupported crud operation: %s")
	// ErrUnknownKeyReference is raised when a KV/R2 key format references an unknown variable.
	ErrUnknownKeyReference = errors.NewKind("unknown key reference: %s")
	// ErrInvalidKeyFormat is raised when a KV/R2 key format string has unbalanced or nested braces.
	ErrInvalidKeyFormat = errors.NewKind("invalid key format: %s")
	// ErrCyclicalDependency is raised when topological ordering fails to rank every node.
	ErrCyclicalDependency = errors.NewKind("cyclical dependency: %s")
	// ErrMissingWranglerEnv is raised when models require Cloudflare bindings but no WranglerEnv is declared.
	ErrMissingWranglerEnv = errors.NewKind("missing wrangler env: %s")
	// ErrMissingWranglerVariable is raised when a WranglerEnv variable is undeclared in the spec.
	ErrMissingWranglerVariable = errors.NewKind("missing wrangler variable: %s")
	// ErrMissingWranglerD1Binding is raised when D1 models exist but no D1 binding exists.
	ErrMissingWranglerD1Binding = errors.NewKind("missing wrangler d1 binding: %s")
	// ErrInconsistentWranglerBinding is raised when the WranglerEnv and spec disagree on a binding.
	ErrInconsistentWranglerBinding = errors.NewKind("inconsistent wrangler binding: %s")
	// ErrMissingWranglerKVNamespace is raised when KV models exist but no KV namespace binding exists.
	ErrMissingWranglerKVNamespace = errors.NewKind("missing wrangler kv namespace: %s")
	// ErrMissingWranglerR2Bucket is raised when R2 models exist but no R2 bucket binding exists.
	ErrMissingWranglerR2Bucket = errors.NewKind("missing wrangler r2 bucket: %s")
	// ErrNotYetSupported is raised for grammar the analyzer rejects by current design, not by inherent invalidity.
	ErrNotYetSupported = errors.NewKind("not yet supported: %s")
)
