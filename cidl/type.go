// Package cidl is the canonical representation of the CIDL (Cloesce
// Interface Description Language) AST: models, navigation properties,
// KV/R2 artifacts, methods, services, plain objects, and the wrangler
// environment, plus the merkle hashing that underlies migration diffing.
package cidl

import (
	"fmt"
	"reflect"
)

// Kind discriminates the variants of CidlType.
type Kind int

const (
	Void Kind = iota
	Integer
	Real
	Text
	Blob
	Boolean
	DateIso
	Stream
	JsonValue
	R2Object
	Inject
	Object
	Partial
	DataSource
	Array
	HttpResult
	Nullable
	KvObject
)

var kindNames = map[Kind]string{
	Void:       "Void",
	Integer:    "Integer",
	Real:       "Real",
	Text:       "Text",
	Blob:       "Blob",
	Boolean:    "Boolean",
	DateIso:    "DateIso",
	Stream:     "Stream",
	JsonValue:  "JsonValue",
	R2Object:   "R2Object",
	Inject:     "Inject",
	Object:     "Object",
	Partial:    "Partial",
	DataSource: "DataSource",
	Array:      "Array",
	HttpResult: "HttpResult",
	Nullable:   "Nullable",
	KvObject:   "KvObject",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// CidlType is the recursive algebraic type described in spec §3. Leaf
// variants (Void..R2Object) carry no payload. Inject/Object/Partial/
// DataSource carry a Name. Array/HttpResult/Nullable/KvObject wrap an Of.
type CidlType struct {
	Kind Kind
	Name string    // populated for Inject, Object, Partial, DataSource
	Of   *CidlType // populated for Array, HttpResult, Nullable, KvObject
}

func leaf(k Kind) CidlType { return CidlType{Kind: k} }

func TVoid() CidlType      { return leaf(Void) }
func TInteger() CidlType   { return leaf(Integer) }
func TReal() CidlType      { return leaf(Real) }
func TText() CidlType      { return leaf(Text) }
func TBlob() CidlType      { return leaf(Blob) }
func TBoolean() CidlType   { return leaf(Boolean) }
func TDateIso() CidlType   { return leaf(DateIso) }
func TStream() CidlType    { return leaf(Stream) }
func TJsonValue() CidlType { return leaf(JsonValue) }
func TR2Object() CidlType  { return leaf(R2Object) }

func TInject(name string) CidlType     { return CidlType{Kind: Inject, Name: name} }
func TObject(name string) CidlType     { return CidlType{Kind: Object, Name: name} }
func TPartial(name string) CidlType    { return CidlType{Kind: Partial, Name: name} }
func TDataSource(name string) CidlType { return CidlType{Kind: DataSource, Name: name} }

func TArray(of CidlType) CidlType      { return CidlType{Kind: Array, Of: &of} }
func THttpResult(of CidlType) CidlType { return CidlType{Kind: HttpResult, Of: &of} }
func TNullable(of CidlType) CidlType   { return CidlType{Kind: Nullable, Of: &of} }
func TKvObject(of CidlType) CidlType   { return CidlType{Kind: KvObject, Of: &of} }

// RootType strips Array/HttpResult/Nullable/KvObject wrappers, returning
// the non-wrapper type that determines SQL mappability.
func (t CidlType) RootType() CidlType {
	cur := t
	for {
		switch cur.Kind {
		case Array, HttpResult, Nullable, KvObject:
			cur = *cur.Of
		default:
			return cur
		}
	}
}

// IsNullable reports whether t's outermost layer is Nullable.
func (t CidlType) IsNullable() bool {
	return t.Kind == Nullable
}

// Contains walks the Array/HttpResult/Nullable spine (not into KvObject,
// whose payload is a distinct record shape, not a combinator layer over
// the same value) and reports whether any layer, including t itself,
// matches pred. Ported from the original's cidl_type_contains! macro.
func Contains(t CidlType, pred func(CidlType) bool) bool {
	cur := t
	for {
		if pred(cur) {
			return true
		}
		switch cur.Kind {
		case Array, HttpResult, Nullable:
			cur = *cur.Of
		default:
			return false
		}
	}
}

// IsSQLRoot reports whether t is one of the scalar types that map
// directly to a SQLite column type.
func IsSQLRoot(t CidlType) bool {
	switch t.Kind {
	case Integer, Real, Text, Blob, Boolean, DateIso:
		return true
	default:
		return false
	}
}

// TypesEqual performs structural equality, walking through Of pointers,
// since CidlType's wrapper variants carry their payload behind a pointer
// and a plain == would compare pointer identity instead of shape.
func TypesEqual(a, b CidlType) bool {
	return reflect.DeepEqual(a, b)
}

// String renders a CidlType for error context strings and debugging.
func (t CidlType) String() string {
	switch t.Kind {
	case Inject, Object, Partial, DataSource:
		return fmt.Sprintf("%s<%s>", t.Kind, t.Name)
	case Array, HttpResult, Nullable, KvObject:
		return fmt.Sprintf("%s<%s>", t.Kind, t.Of.String())
	default:
		return t.Kind.String()
	}
}
