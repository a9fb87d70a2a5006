// Package validate is the runtime counterpart of the compile-time
// semantic checks in internal/semantic: it asserts that a decoded-JSON
// request body actually has the shape its CidlType declares, producing
// a value safe to hand to internal/query's upsert planner. Grounded on
// original_source/src/orm/src/methods/validate.rs's `validate_type`.
package validate

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

// Type validates value against cidlType, returning the Go value to
// persist or respond with. present distinguishes a JSON field that was
// omitted entirely (present=false) from one explicitly set to null.
//
//   - JsonValue accepts anything, present or not.
//   - A field missing from the payload is allowed when cidlType is an
//     Array (interpreted as empty), or when partial (or a Partial type
//     itself) allows it; otherwise it's an error.
//   - Blob values must be base64 text; DateIso values must be RFC 3339.
func Type(cidlType cidl.CidlType, value any, present bool, ast *cidl.CloesceAst, partial bool) (any, error) {
	if cidlType.Kind == cidl.JsonValue {
		if !present {
			return nil, nil
		}
		return value, nil
	}

	isPartial := partial || cidlType.Kind == cidl.Partial

	if !present {
		if cidlType.Kind == cidl.Array {
			return []any{}, nil
		}
		if isPartial {
			return nil, nil
		}
		return nil, cerr.ErrUndefined.New(cidlType.String())
	}

	isNullable := cidlType.Kind == cidl.Nullable
	if value == nil || value == "null" {
		if isNullable || isPartial {
			return nil, nil
		}
		return nil, cerr.ErrNullValue.New(cidlType.String())
	}

	unwrapped := cidlType
	if cidlType.Kind == cidl.Nullable {
		unwrapped = *cidlType.Of
	}

	switch unwrapped.Kind {
	case cidl.Integer:
		n, ok := asFloat(value)
		if !ok || n != math.Trunc(n) {
			return nil, cerr.ErrNonInteger.New(unwrapped.String())
		}
		return int64(n), nil

	case cidl.Real:
		n, ok := asFloat(value)
		if !ok {
			return nil, cerr.ErrNonReal.New(unwrapped.String())
		}
		return n, nil

	case cidl.Text:
		s, ok := value.(string)
		if !ok {
			return nil, cerr.ErrNonString.New(unwrapped.String())
		}
		return s, nil

	case cidl.Boolean:
		b, ok := value.(bool)
		if !ok {
			return nil, cerr.ErrNonBoolean.New(unwrapped.String())
		}
		return b, nil

	case cidl.DateIso:
		s, ok := value.(string)
		if !ok {
			return nil, cerr.ErrNonDateIso.New(unwrapped.String())
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return nil, cerr.ErrNonDateIso.New(s)
		}
		return s, nil

	case cidl.Blob:
		s, ok := value.(string)
		if !ok {
			return nil, cerr.ErrNonBase64.New(unwrapped.String())
		}
		if _, err := base64.StdEncoding.DecodeString(s); err != nil {
			return nil, cerr.ErrNonBase64.New(s)
		}
		return s, nil

	case cidl.R2Object:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, cerr.ErrInvalidR2Object.New("expected an object")
		}
		if err := validateR2Shape(obj); err != nil {
			return nil, err
		}
		result := make(map[string]any, 7)
		for _, field := range []string{"key", "version", "size", "etag", "http_etag", "uploaded"} {
			result[field] = obj[field]
		}
		meta, _ := obj["custom_metadata"].(map[string]any)
		if meta == nil {
			meta = map[string]any{}
		}
		result["custom_metadata"] = meta
		return result, nil

	case cidl.DataSource:
		s, ok := value.(string)
		if !ok {
			return nil, cerr.ErrNonString.New(unwrapped.Name)
		}
		if s == "none" {
			return s, nil
		}
		if model, ok := ast.Models.Get(unwrapped.Name); ok {
			if _, ok := model.DataSources.Get(s); ok {
				return s, nil
			}
		}
		return nil, cerr.ErrUnknownDataSource.New(s)

	case cidl.KvObject:
		return validateKVObject(unwrapped, value, ast, partial)

	case cidl.Object, cidl.Partial:
		return validateObject(unwrapped, value, ast, isPartial)

	case cidl.Array:
		arr, ok := value.([]any)
		if !ok {
			return nil, cerr.ErrNonArray.New(unwrapped.String())
		}
		result := make([]any, 0, len(arr))
		for _, item := range arr {
			res, err := Type(*unwrapped.Of, item, true, ast, isPartial)
			if err != nil {
				return nil, err
			}
			result = append(result, res)
		}
		return result, nil

	default:
		return nil, cerr.ErrNonObject.New(fmt.Sprintf("unsupported value shape: %s", unwrapped))
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func validateKVObject(kvType cidl.CidlType, value any, ast *cidl.CloesceAst, partial bool) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, cerr.ErrNonObject.New("KV object")
	}

	keyVal, hasKey := obj["key"]
	rawVal, hasRaw := obj["raw"]
	metaVal, hasMeta := obj["metadata"]

	if !partial {
		if _, ok := keyVal.(string); !hasKey || !ok {
			return nil, cerr.ErrInvalidKVObject.New("missing or non-string 'key'")
		}
		if hasMeta && metaVal != nil {
			if _, ok := metaVal.(map[string]any); !ok {
				return nil, cerr.ErrInvalidKVObject.New("'metadata' must be an object or null")
			}
		}
	}

	raw, err := Type(*kvType.Of, rawVal, hasRaw, ast, partial)
	if err != nil {
		return nil, err
	}

	result := map[string]any{"raw": raw}
	if hasKey {
		result["key"] = keyVal
	} else {
		result["key"] = nil
	}
	if hasMeta {
		result["metadata"] = metaVal
	} else {
		result["metadata"] = nil
	}
	return result, nil
}

func validateObject(objType cidl.CidlType, value any, ast *cidl.CloesceAst, isPartial bool) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, cerr.ErrNonObject.New(objType.Name)
	}
	result := make(map[string]any, len(obj))

	if poo, ok := ast.Poos.Get(objType.Name); ok {
		for _, attr := range poo.Attributes {
			v, present := obj[attr.Name]
			res, err := Type(attr.Type, v, present, ast, isPartial)
			if err != nil {
				return nil, err
			}
			result[attr.Name] = res
		}
		return result, nil
	}

	model, ok := ast.Models.Get(objType.Name)
	if !ok {
		return nil, cerr.ErrNonObject.New(fmt.Sprintf("unknown type %s", objType.Name))
	}

	if model.PrimaryKey != nil {
		v, present := obj[model.PrimaryKey.Name]
		res, err := Type(model.PrimaryKey.Type, v, present, ast, isPartial)
		if err != nil {
			return nil, err
		}
		result[model.PrimaryKey.Name] = res
	}

	for _, col := range model.Columns {
		v, present := obj[col.Value.Name]
		res, err := Type(col.Value.Type, v, present, ast, isPartial)
		if err != nil {
			return nil, err
		}
		result[col.Value.Name] = res
	}

	for _, nav := range model.NavigationProps {
		v, present := obj[nav.VarName]

		navType := cidl.TObject(nav.ModelReference)
		if nav.NavKind.Kind == cidl.OneToMany || nav.NavKind.Kind == cidl.ManyToMany {
			navType = cidl.TArray(cidl.TObject(nav.ModelReference))
		}

		res, err := Type(navType, v, present, ast, isPartial)
		if err != nil {
			return nil, err
		}
		result[nav.VarName] = res
	}

	for _, kv := range model.KVObjects {
		v, present := obj[kv.Value.Name]
		res, err := Type(cidl.TKvObject(kv.Value.Type), v, present, ast, isPartial)
		if err != nil {
			return nil, err
		}
		result[kv.Value.Name] = res
	}

	for _, r2 := range model.R2Objects {
		v, present := obj[r2.VarName]
		res, err := Type(cidl.TR2Object(), v, present, ast, isPartial)
		if err != nil {
			return nil, err
		}
		result[r2.VarName] = res
	}

	return result, nil
}

func validateR2Shape(obj map[string]any) error {
	requiredString := func(field string) error {
		v, ok := obj[field]
		if !ok {
			return cerr.ErrInvalidR2Object.New(fmt.Sprintf("missing '%s'", field))
		}
		if _, ok := v.(string); !ok {
			return cerr.ErrInvalidR2Object.New(fmt.Sprintf("'%s' must be a string", field))
		}
		return nil
	}

	for _, field := range []string{"key", "version", "etag", "http_etag"} {
		if err := requiredString(field); err != nil {
			return err
		}
	}

	size, ok := obj["size"]
	if !ok {
		return cerr.ErrInvalidR2Object.New("missing 'size'")
	}
	if n, ok := asFloat(size); !ok || n != math.Trunc(n) {
		return cerr.ErrInvalidR2Object.New("'size' must be an integer")
	}

	uploaded, ok := obj["uploaded"].(string)
	if !ok {
		return cerr.ErrInvalidR2Object.New("missing 'uploaded'")
	}
	if _, err := time.Parse(time.RFC3339, uploaded); err != nil {
		return cerr.ErrInvalidR2Object.New("'uploaded' must be an ISO 8601 date")
	}

	if meta, ok := obj["custom_metadata"]; ok && meta != nil {
		asMap, ok := meta.(map[string]any)
		if !ok {
			return cerr.ErrInvalidR2Object.New("'custom_metadata' must be an object or null")
		}
		for _, v := range asMap {
			if _, ok := v.(string); !ok {
				return cerr.ErrInvalidR2Object.New("'custom_metadata' values must be strings")
			}
		}
	}

	return nil
}
