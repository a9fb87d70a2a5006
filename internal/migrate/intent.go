// Package migrate plans the sequence of DDL/DML statements that carries a
// previously-migrated schema forward to a new one. Grounded on
// original_source/src/generator/migrations/src/lib.rs.
package migrate

// Dilemma is a choice the planner cannot resolve on its own: whether a
// model (or column) that disappeared from the new AST was actually
// dropped, or renamed to one of the candidates listed in Options.
// Grounded on `MigrationsDilemma`.
type Dilemma struct {
	ModelName  string
	ColumnName string // empty for a model-level dilemma
	Options    []string
}

// Intent resolves a Dilemma, potentially by blocking on user input. A nil
// return means "drop it"; a non-nil index selects Options[*idx] as the
// rename target. Grounded on the `MigrationsIntent` trait.
type Intent interface {
	Ask(d Dilemma) *int
}

// MapIntent is a deterministic Intent driven by a prepared mapping from
// (model, column) to a chosen option index, useful for tests and for
// driving the planner from an already-resolved answer (e.g. a CLI flag
// or a previously recorded decision) rather than blocking interactively.
type MapIntent struct {
	// Answers maps "model" or "model.column" to an option index.
	Answers map[string]int
}

func NewMapIntent() *MapIntent {
	return &MapIntent{Answers: make(map[string]int)}
}

func (m *MapIntent) Ask(d Dilemma) *int {
	key := d.ModelName
	if d.ColumnName != "" {
		key = d.ModelName + "." + d.ColumnName
	}
	if idx, ok := m.Answers[key]; ok {
		return &idx
	}
	return nil
}

// DropIntent always answers "drop it", useful as a safe non-interactive
// default when no rename disambiguation is available.
type DropIntent struct{}

func (DropIntent) Ask(Dilemma) *int { return nil }
