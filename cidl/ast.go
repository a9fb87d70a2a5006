package cidl

// CloesceAst is the top-level interface description: a project's models,
// services, and plain old objects, plus the wrangler environment the
// project expects. Ordering of Models/Services/Poos encodes dependency
// order once Analyze has run.
type CloesceAst struct {
	ProjectName string
	WranglerEnv *WranglerEnv
	Models      *OrderedMap[Model]
	Services    *OrderedMap[Service]
	Poos        *OrderedMap[PlainOldObject]
	Hash        uint64
	MainSource  *string
}

// NewCloesceAst constructs an AST with empty ordered maps, ready to be
// populated by an extractor.
func NewCloesceAst(projectName string) *CloesceAst {
	return &CloesceAst{
		ProjectName: projectName,
		Models:      NewOrderedMap[Model](),
		Services:    NewOrderedMap[Service](),
		Poos:        NewOrderedMap[PlainOldObject](),
	}
}

// MigrationsAst is the projection of CloesceAst to just the D1-bearing
// models (those with a non-null primary key), used by the migration
// planner so it never sees KV/R2/service/poo concerns.
type MigrationsAst struct {
	Hash   uint64             `json:"hash"`
	Models *OrderedMap[Model] `json:"models"`
}

// ToMigrations discards every model without a primary key, preserving
// the ordering of the ones that remain.
func (a *CloesceAst) ToMigrations() *MigrationsAst {
	out := &MigrationsAst{Hash: a.Hash, Models: NewOrderedMap[Model]()}
	for p := a.Models.Oldest(); p != nil; p = p.Next() {
		if p.Value.PrimaryKey != nil {
			out.Models.Set(p.Key, p.Value)
		}
	}
	return out
}
