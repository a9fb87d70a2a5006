package cidl

import (
	"fmt"
	"hash/fnv"
)

// foldString mixes s into the running FNV-1a hash.
func foldString(h *uint64, s string) {
	f := fnv.New64a()
	_, _ = f.Write([]byte{byte(*h), byte(*h >> 8), byte(*h >> 16), byte(*h >> 24)})
	_, _ = f.Write([]byte(s))
	*h = f.Sum64()
}

func foldUint64(h *uint64, v uint64) {
	foldString(h, fmt.Sprintf("%x", v))
}

// columnHash folds (name, type, foreign_key_reference).
func columnHash(v NamedTypedValue, fk *string) uint64 {
	var h uint64
	foldString(&h, v.Name)
	foldString(&h, v.Type.String())
	if fk != nil {
		foldString(&h, *fk)
	} else {
		foldString(&h, "")
	}
	return h
}

// navHash folds (model_reference, var_name, kind).
func navHash(n NavigationProperty) uint64 {
	var h uint64
	foldString(&h, n.ModelReference)
	foldString(&h, n.VarName)
	foldString(&h, n.NavKind.Kind.String())
	foldString(&h, n.NavKind.ColumnReference)
	return h
}

// modelHash folds ("Model", pk, name, column hashes, nav hashes).
func modelHash(m Model) uint64 {
	var h uint64
	foldString(&h, "Model")
	if m.PrimaryKey != nil {
		foldString(&h, m.PrimaryKey.Name)
		foldString(&h, m.PrimaryKey.Type.String())
	} else {
		foldString(&h, "")
	}
	foldString(&h, m.Name)
	for _, c := range m.Columns {
		foldUint64(&h, columnHash(c.Value, c.ForeignKeyReference))
	}
	for _, n := range m.NavigationProps {
		foldUint64(&h, navHash(n))
	}
	return h
}

// SetMerkleHash walks models in declaration order, writing per-child
// hashes before aggregating the parent hash, then folds all model hashes
// into the AST's root hash. It is idempotent: a nonzero root hash is
// treated as already-hashed and skipped, so repeated calls on the same
// AST never change any hash (§8 universal invariant).
func SetMerkleHash(a *CloesceAst) {
	if a.Hash != 0 {
		return
	}

	var root uint64
	for p := a.Models.Oldest(); p != nil; p = p.Next() {
		m := p.Value
		if m.Hash == 0 {
			m.Hash = modelHash(m)
			for i := range m.Columns {
				m.Columns[i].Hash = columnHash(m.Columns[i].Value, m.Columns[i].ForeignKeyReference)
			}
			for i := range m.NavigationProps {
				m.NavigationProps[i].Hash = navHash(m.NavigationProps[i])
			}
			a.Models.Set(p.Key, m)
		}
		foldUint64(&root, m.Hash)
	}
	a.Hash = root
}
