package query

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

const (
	tmpTableName = "_cloesce_tmp"
	tmpTableCol  = "path"
	tmpTableID   = "id"
)

// SqlStatement is one parameterized statement of an upsert plan: the SQL
// text with `?` placeholders, and the bound values in order.
type SqlStatement struct {
	Query  string
	Values []any
}

// KVUpload is a KV write whose key format fully resolved against the
// model being upserted (no pending primary key placeholder).
type KVUpload struct {
	NamespaceBinding string
	Key              string
	Value            any
	Metadata         any
}

// DelayedKVUpload is a KV write whose key format references the owning
// model's not-yet-known (auto-generated) primary key; Path names the
// navigation-property chain from the upsert root down to the model that
// owns it, so the caller can resolve it once the SQL has executed.
type DelayedKVUpload struct {
	Path             []string
	NamespaceBinding string
	Key              string
	Value            any
	Metadata         any
}

// UpsertResult is the complete plan an upsert call produces: the ordered
// SQL statements to execute, and any KV side-effects to apply afterward.
type UpsertResult struct {
	SQL              []SqlStatement
	KVUploads        []KVUpload
	KVDelayedUploads []DelayedKVUpload
}

// ctxRef marks a column value that isn't known yet at plan-build time: it
// resolves at execution time to `_cloesce_tmp`'s row for path, either the
// dependency's caller-supplied id or its `last_insert_rowid()`. Grounded
// on `SqlUpsertBuilder::value_from_ctx`.
type ctxRef struct{ path string }

// Upsert plans the topologically-ordered INSERT/UPDATE/upsert statements
// that persist newModel (and, per includeTree, its nested navigation
// properties) into modelName's table and its dependents'/dependencies'.
// A one-to-one reference is inserted before its parent (the parent's FK
// column needs the child's id); one-to-many and many-to-many references
// are inserted after (they need the parent's id). Foreign keys and
// primary keys that aren't supplied in newModel are threaded through a
// small context map, resolved either directly (the value was produced
// earlier in this same plan) or via `_cloesce_tmp` (the value only
// exists once SQLite assigns a rowid at execution time). Grounded on
// `orm/src/methods/upsert.rs`'s `UpsertModel`.
func Upsert(modelName string, meta ModelMeta, newModel map[string]any, includeTree *cidl.IncludeTree) (UpsertResult, error) {
	if includeTree == nil {
		includeTree = cidl.NewIncludeTree()
	}

	g := &upsertGen{meta: meta, context: map[string]*any{}}
	if err := g.dfs(nil, modelName, newModel, includeTree, modelName); err != nil {
		return UpsertResult{}, err
	}

	model, ok := meta[modelName]
	if !ok {
		return UpsertResult{}, cerr.ErrUnknownModel.New(modelName)
	}

	if model.PrimaryKey != nil {
		selectSQL, err := SelectModel(modelName, "", includeTree, meta)
		if err != nil {
			return UpsertResult{}, err
		}
		base := strings.TrimSuffix(strings.TrimSpace(selectSQL), ";")

		pkPath := fmt.Sprintf("%s.%s", modelName, model.PrimaryKey.Name)
		var whereArg any
		var whereExpr string
		if ctx, ok := g.context[pkPath]; ok && ctx != nil {
			v, err := validateJSONToCIDL(*ctx, model.PrimaryKey.Type, modelName, model.PrimaryKey.Name)
			if err != nil {
				return UpsertResult{}, err
			}
			whereExpr = "?"
			whereArg = v
		} else {
			whereExpr = fmt.Sprintf("(SELECT %s FROM %s WHERE %s = ?)", quoteIdent(tmpTableID), quoteIdent(tmpTableName), quoteIdent(tmpTableCol))
			whereArg = pkPath
		}

		g.sql = append(g.sql, SqlStatement{
			Query:  fmt.Sprintf("%s WHERE %s = %s;", base, qualify(modelName, model.PrimaryKey.Name), whereExpr),
			Values: []any{whereArg},
		})
		g.sql = append(g.sql, SqlStatement{Query: fmt.Sprintf("DELETE FROM %s;", quoteIdent(tmpTableName))})
	}

	return UpsertResult{SQL: g.sql, KVUploads: g.kv, KVDelayedUploads: g.kvDelayed}, nil
}

type upsertGen struct {
	meta     ModelMeta
	context  map[string]*any
	sql      []SqlStatement
	kv       []KVUpload
	kvDelayed []DelayedKVUpload
}

func (g *upsertGen) dfs(parentModelName *string, modelName string, newModel map[string]any, includeTree *cidl.IncludeTree, path string) error {
	model, ok := g.meta[modelName]
	if !ok {
		return cerr.ErrUnknownModel.New(modelName)
	}

	for _, kv := range model.KVObjects {
		raw, ok := newModel[kv.Value.Name]
		delete(newModel, kv.Value.Name)
		obj, okObj := raw.(map[string]any)
		if !ok || !okObj {
			return cerr.ErrTypeMismatch.New(fmt.Sprintf("%s.%s must be an object", model.Name, kv.Value.Name))
		}

		value, ok := obj["raw"]
		if !ok {
			return cerr.ErrMissingAttribute.New(fmt.Sprintf("%s.%s missing 'raw' field", model.Name, kv.Value.Name))
		}
		metadata := obj["metadata"]

		key, pending, err := interpolateKeyFormat(kv.Format, newModel, model)
		if err != nil {
			return err
		}

		if pending {
			parts := strings.Split(path, ".")
			if len(parts) > 0 {
				parts = parts[1:]
			}
			g.kvDelayed = append(g.kvDelayed, DelayedKVUpload{
				Path: parts, NamespaceBinding: kv.NamespaceBinding, Key: key, Value: value, Metadata: metadata,
			})
		} else {
			g.kv = append(g.kv, KVUpload{
				NamespaceBinding: kv.NamespaceBinding, Key: key, Value: value, Metadata: metadata,
			})
		}
	}

	if model.PrimaryKey == nil {
		return nil
	}
	pk := *model.PrimaryKey

	builder := newSQLUpsertBuilder(model.Name, len(model.Columns), pk)

	pkVal, hasPkVal := newModel[pk.Name]
	delete(newModel, pk.Name)
	if !hasPkVal && pk.Type.Kind != cidl.Integer {
		encoded, _ := json.Marshal(newModel)
		return cerr.ErrMissingPrimaryKey.New(fmt.Sprintf("%s.%s", model.Name, string(encoded)))
	}

	var oneToOnes, others []cidl.NavigationProperty
	for _, n := range model.NavigationProps {
		if n.NavKind.Kind == cidl.OneToOne {
			oneToOnes = append(oneToOnes, n)
		} else {
			others = append(others, n)
		}
	}

	navRefToPath := map[string]string{}
	for _, nav := range oneToOnes {
		childTree, ok := includeTree.Get(nav.VarName)
		if !ok {
			continue
		}
		raw, ok := newModel[nav.VarName]
		if !ok {
			continue
		}
		childObj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		delete(newModel, nav.VarName)

		if err := g.dfs(&model.Name, nav.ModelReference, childObj, childTree, path+"."+nav.VarName); err != nil {
			return err
		}

		navModel := g.meta[nav.ModelReference]
		navRefToPath[nav.NavKind.ColumnReference] = fmt.Sprintf("%s.%s.%s", path, nav.VarName, navModel.PrimaryKey.Name)
	}

	var parentIDPath string
	if parentModelName != nil {
		head := path
		if idx := strings.LastIndex(path, "."); idx >= 0 {
			head = path[:idx]
		}
		parentModel := g.meta[*parentModelName]
		parentIDPath = fmt.Sprintf("%s.%s", head, parentModel.PrimaryKey.Name)
	}

	for _, attr := range model.Columns {
		pathKey, hasPathKey := navRefToPath[attr.Value.Name]
		if !hasPathKey && parentModelName != nil {
			pathKey, hasPathKey = parentIDPath, true
		}

		val, hasVal := newModel[attr.Value.Name]
		delete(newModel, attr.Value.Name)

		switch {
		case hasVal:
			if err := builder.pushVal(attr.Value.Name, val, attr.Value.Type); err != nil {
				return err
			}
		case attr.ForeignKeyReference != nil && hasPathKey:
			if err := builder.pushValCtx(g.context[pathKey], attr.Value.Name, attr.Value.Type, pathKey); err != nil {
				return err
			}
		case attr.Value.Type.IsNullable():
			if err := builder.pushVal(attr.Value.Name, nil, attr.Value.Type); err != nil {
				return err
			}
		case hasPkVal:
			// Update with a missing non-nullable attribute is allowed: leave it untouched.
		default:
			encoded, _ := json.Marshal(newModel)
			return cerr.ErrMissingAttribute.New(fmt.Sprintf("%s.%s: %s", model.Name, attr.Value.Name, string(encoded)))
		}
	}

	if err := g.upsertTable(hasPkVal, pkVal, path, pk, builder); err != nil {
		return err
	}

	for _, nav := range others {
		childTree, ok := includeTree.Get(nav.VarName)
		if !ok {
			continue
		}
		raw, ok := newModel[nav.VarName]
		delete(newModel, nav.VarName)
		if !ok {
			continue
		}
		items, ok := raw.([]any)
		if !ok {
			continue
		}

		for _, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if err := g.dfs(&model.Name, nav.ModelReference, obj, childTree, path+"."+nav.VarName); err != nil {
				return err
			}
			if nav.NavKind.Kind == cidl.ManyToMany {
				if err := g.insertJunction(path, nav, nav.ManyToManyTableName(model.Name), model); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (g *upsertGen) upsertTable(hasPkVal bool, pkVal any, path string, pk cidl.NamedTypedValue, builder *sqlUpsertBuilder) error {
	stmt, err := builder.build(hasPkVal, pkVal)
	if err != nil {
		return err
	}
	g.sql = append(g.sql, stmt)

	idPath := fmt.Sprintf("%s.%s", path, pk.Name)
	if !hasPkVal {
		g.sql = append(g.sql, SqlStatement{
			Query: fmt.Sprintf("REPLACE INTO %s (%s, %s) VALUES (?, last_insert_rowid());",
				quoteIdent(tmpTableName), quoteIdent(tmpTableCol), quoteIdent(tmpTableID)),
			Values: []any{idPath},
		})
		g.context[idPath] = nil
	} else {
		v := pkVal
		g.context[idPath] = &v
	}
	return nil
}

// insertJunction inserts one row into nav's many-to-many junction table,
// sides resolved in "left"/"right" lexicographic order matching
// `cidl.ManyToManyTableName`. Grounded on `UpsertModel::insert_jct`.
func (g *upsertGen) insertJunction(path string, nav cidl.NavigationProperty, uniqueID string, model cidl.Model) error {
	navModel := g.meta[nav.ModelReference]
	navPK := *navModel.PrimaryKey
	modelPK := *model.PrimaryKey

	type side struct {
		name    string
		cidlT   cidl.CidlType
		pathKey string
		desc    string
	}
	sides := []side{
		{nav.ModelReference, navPK.Type, fmt.Sprintf("%s.%s.%s", path, nav.VarName, navPK.Name), fmt.Sprintf("%s.%s", nav.ModelReference, navPK.Name)},
		{model.Name, modelPK.Type, fmt.Sprintf("%s.%s", path, modelPK.Name), fmt.Sprintf("%s.%s", model.Name, modelPK.Name)},
	}
	sort.Slice(sides, func(i, j int) bool { return sides[i].name < sides[j].name })

	cols := []string{"left", "right"}
	vals := make([]any, 2)
	for i, s := range sides {
		if ctx, ok := g.context[s.pathKey]; ok && ctx != nil {
			v, err := validateJSONToCIDL(*ctx, s.cidlT, uniqueID, s.desc)
			if err != nil {
				return err
			}
			vals[i] = v
		} else {
			vals[i] = ctxRef{path: s.pathKey}
		}
	}

	dialect := goqu.Dialect("sqlite3")
	ds := dialect.Insert(uniqueID).Cols(cols[0], cols[1]).Vals(goqu.Vals{resolveVal(vals[0]), resolveVal(vals[1])}).OnConflict(goqu.DoNothing())

	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	g.sql = append(g.sql, SqlStatement{Query: sql, Values: args})
	return nil
}

// sqlUpsertBuilder accumulates a single table's column/value pairs while
// dfs walks its attributes, then renders the final INSERT, UPDATE, or
// insert-with-ON-CONFLICT-DO-UPDATE statement. Grounded on
// `SqlUpsertBuilder`.
type sqlUpsertBuilder struct {
	modelName string
	scalarLen int
	pk        cidl.NamedTypedValue
	cols      []string
	vals      []any
}

func newSQLUpsertBuilder(modelName string, scalarLen int, pk cidl.NamedTypedValue) *sqlUpsertBuilder {
	return &sqlUpsertBuilder{modelName: modelName, scalarLen: scalarLen, pk: pk}
}

func (b *sqlUpsertBuilder) pushVal(varName string, value any, t cidl.CidlType) error {
	v, err := validateJSONToCIDL(value, t, b.modelName, varName)
	if err != nil {
		return err
	}
	b.cols = append(b.cols, varName)
	b.vals = append(b.vals, v)
	return nil
}

func (b *sqlUpsertBuilder) pushValCtx(ctx *any, varName string, t cidl.CidlType, path string) error {
	if ctx == nil {
		b.cols = append(b.cols, varName)
		b.vals = append(b.vals, ctxRef{path: path})
		return nil
	}
	return b.pushVal(varName, *ctx, t)
}

func resolveVal(v any) any {
	if ref, ok := v.(ctxRef); ok {
		return goqu.L(fmt.Sprintf("(SELECT %s FROM %s WHERE %s = ?)", quoteIdent(tmpTableID), quoteIdent(tmpTableName), quoteIdent(tmpTableCol)), ref.path)
	}
	return v
}

func (b *sqlUpsertBuilder) build(hasPkVal bool, pkVal any) (SqlStatement, error) {
	var pkExpr any
	if hasPkVal {
		v, err := validateJSONToCIDL(pkVal, b.pk.Type, b.modelName, b.pk.Name)
		if err != nil {
			return SqlStatement{}, err
		}
		pkExpr = v
	}

	dialect := goqu.Dialect("sqlite3")

	if len(b.cols) < b.scalarLen {
		record := goqu.Record{}
		for i, c := range b.cols {
			record[c] = resolveVal(b.vals[i])
		}
		ds := dialect.Update(b.modelName).Set(record).Where(goqu.C(b.pk.Name).Eq(pkExpr)).Prepared(true)
		sql, args, err := ds.ToSQL()
		return SqlStatement{Query: sql, Values: args}, err
	}

	cols := append([]string{}, b.cols...)
	vals := make([]any, len(b.vals))
	for i, v := range b.vals {
		vals[i] = resolveVal(v)
	}
	if hasPkVal {
		cols = append(cols, b.pk.Name)
		vals = append(vals, pkExpr)
	}

	colArgs := make([]interface{}, len(cols))
	for i, c := range cols {
		colArgs[i] = c
	}

	ds := dialect.Insert(b.modelName).Cols(colArgs...).Vals(vals)
	if hasPkVal && len(b.cols) > 0 {
		update := goqu.Record{}
		for _, c := range b.cols {
			update[c] = goqu.L(fmt.Sprintf("excluded.%s", quoteIdent(c)))
		}
		ds = ds.OnConflict(goqu.DoUpdate(b.pk.Name, update))
	}

	sql, args, err := ds.Prepared(true).ToSQL()
	return SqlStatement{Query: sql, Values: args}, err
}

// validateJSONToCIDL coerces a decoded-JSON value to the Go value that
// should be bound for a column typed t, enforcing the same per-kind shape
// checks as the original (integers must be whole, booleans must be JSON
// booleans, blobs are base64 text or a byte-array). Grounded on
// `validate_json_to_cidl`.
func validateJSONToCIDL(value any, t cidl.CidlType, modelName, attrName string) (any, error) {
	if t.IsNullable() && value == nil {
		return nil, nil
	}

	mismatch := func() error {
		return cerr.ErrTypeMismatch.New(fmt.Sprintf("%s.%s", modelName, attrName))
	}

	switch t.RootType().Kind {
	case cidl.Integer:
		n, ok := asFloat(value)
		if !ok || n != math.Trunc(n) {
			return nil, mismatch()
		}
		return int64(n), nil

	case cidl.Boolean:
		b, ok := value.(bool)
		if !ok {
			return nil, mismatch()
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil

	case cidl.Real:
		n, ok := asFloat(value)
		if !ok {
			return nil, mismatch()
		}
		return n, nil

	case cidl.Text, cidl.DateIso:
		s, ok := value.(string)
		if !ok {
			return nil, mismatch()
		}
		return s, nil

	case cidl.Blob:
		return decodeBlob(value, mismatch)

	default:
		return nil, mismatch()
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func b64Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func decodeBlob(value any, mismatch func() error) (any, error) {
	switch v := value.(type) {
	case string:
		b, err := b64Decode(v)
		if err != nil {
			return nil, mismatch()
		}
		return b, nil
	case []any:
		out := make([]byte, 0, len(v))
		for _, elem := range v {
			n, ok := asFloat(elem)
			if !ok || n < 0 || n > 255 || n != math.Trunc(n) {
				return nil, mismatch()
			}
			out = append(out, byte(n))
		}
		return out, nil
	default:
		return nil, mismatch()
	}
}

// interpolateKeyFormat substitutes `{param}` placeholders in a KV key
// format against newModel's fields. A placeholder naming the model's own
// (not-yet-known) primary key is left in place and reported as pending,
// so the caller can resolve it once the insert has run. Grounded on
// `key_format_interpolation`.
func interpolateKeyFormat(format string, newModel map[string]any, model cidl.Model) (string, bool, error) {
	var b strings.Builder
	pending := false

	i := 0
	for i < len(format) {
		if format[i] != '{' {
			b.WriteByte(format[i])
			i++
			continue
		}

		end := strings.IndexByte(format[i:], '}')
		if end < 0 {
			b.WriteString(format[i:])
			break
		}
		end += i
		param := format[i+1 : end]

		val, ok := newModel[param]
		if !ok {
			if model.PrimaryKey != nil && model.PrimaryKey.Name == param {
				pending = true
				fmt.Fprintf(&b, "{%s}", param)
				i = end + 1
				continue
			}
			return "", false, cerr.ErrMissingKeyParameter.New(fmt.Sprintf("%s.%s requires parameter '%s'", model.Name, format, param))
		}

		switch v := val.(type) {
		case string:
			b.WriteString(v)
		case bool:
			b.WriteString(strconv.FormatBool(v))
		case float64:
			if v == math.Trunc(v) {
				b.WriteString(strconv.FormatInt(int64(v), 10))
			} else {
				b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
			}
		default:
			return "", false, cerr.ErrTypeMismatch.New(fmt.Sprintf("%s.%s parameter '%s' must be string, number, or boolean", model.Name, format, param))
		}

		i = end + 1
	}

	return b.String(), pending, nil
}
