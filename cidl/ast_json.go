package cidl

import (
	"encoding/json"

	"github.com/cloesce/core/cerr"
)

type astWire struct {
	ProjectName string          `json:"project_name"`
	WranglerEnv *WranglerEnv    `json:"wrangler_env,omitempty"`
	Models      json.RawMessage `json:"models"`
	Services    json.RawMessage `json:"services"`
	Poos        json.RawMessage `json:"poos"`
	Hash        uint64          `json:"hash"`
	MainSource  *string         `json:"main_source,omitempty"`
}

// MarshalJSON renders the full CloesceAst import format (§6): a single
// JSON object with insertion-ordered models/services/poos.
func (a CloesceAst) MarshalJSON() ([]byte, error) {
	models, err := MarshalOrderedMap(a.Models)
	if err != nil {
		return nil, err
	}
	services, err := MarshalOrderedMap(a.Services)
	if err != nil {
		return nil, err
	}
	poos, err := MarshalOrderedMap(a.Poos)
	if err != nil {
		return nil, err
	}

	return json.Marshal(astWire{
		ProjectName: a.ProjectName,
		WranglerEnv: a.WranglerEnv,
		Models:      models,
		Services:    services,
		Poos:        poos,
		Hash:        a.Hash,
		MainSource:  a.MainSource,
	})
}

// UnmarshalJSON parses the CloesceAst import format. Unknown top-level
// fields are ignored, per §6.
func (a *CloesceAst) UnmarshalJSON(data []byte) error {
	var w astWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	a.ProjectName = w.ProjectName
	a.WranglerEnv = w.WranglerEnv
	a.Hash = w.Hash
	a.MainSource = w.MainSource

	models, err := decodeOrEmpty[Model](w.Models)
	if err != nil {
		return err
	}
	a.Models = models

	services, err := decodeOrEmpty[Service](w.Services)
	if err != nil {
		return err
	}
	a.Services = services

	poos, err := decodeOrEmpty[PlainOldObject](w.Poos)
	if err != nil {
		return err
	}
	a.Poos = poos

	return nil
}

func decodeOrEmpty[V any](raw json.RawMessage) (*OrderedMap[V], error) {
	if len(raw) == 0 {
		return NewOrderedMap[V](), nil
	}
	return UnmarshalOrderedMap[V](raw)
}

// LoadAST decodes a CloesceAst from its JSON import format.
func LoadAST(data []byte) (*CloesceAst, error) {
	var a CloesceAst
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, cerr.ErrInvalidInputFile.New(err.Error())
	}
	return &a, nil
}

// StoreAST encodes a CloesceAst to its JSON import format.
func StoreAST(a *CloesceAst) ([]byte, error) {
	return json.Marshal(a)
}

type migrationsWire struct {
	Hash   uint64          `json:"hash"`
	Models json.RawMessage `json:"models"`
}

// MarshalJSON renders the migration-AST projection (§6): just {hash, models}.
func (m MigrationsAst) MarshalJSON() ([]byte, error) {
	models, err := MarshalOrderedMap(m.Models)
	if err != nil {
		return nil, err
	}
	return json.Marshal(migrationsWire{Hash: m.Hash, Models: models})
}

// UnmarshalJSON parses either a dedicated migration-AST file or a full
// CloesceAst file, filtering out every model whose primary_key is null so
// the same file round-trips for both views (§6).
func (m *MigrationsAst) UnmarshalJSON(data []byte) error {
	var w migrationsWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	m.Hash = w.Hash
	models, err := decodeOrEmpty[Model](w.Models)
	if err != nil {
		return err
	}

	m.Models = NewOrderedMap[Model]()
	for p := models.Oldest(); p != nil; p = p.Next() {
		if p.Value.PrimaryKey != nil {
			m.Models.Set(p.Key, p.Value)
		}
	}
	return nil
}

// LoadMigrationsAst decodes a MigrationsAst, tolerant of a full AST's shape.
func LoadMigrationsAst(data []byte) (*MigrationsAst, error) {
	var m MigrationsAst
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, cerr.ErrInvalidInputFile.New(err.Error())
	}
	return &m, nil
}

// StoreMigrationsAst encodes a MigrationsAst to its JSON projection format.
func StoreMigrationsAst(m *MigrationsAst) ([]byte, error) {
	return json.Marshal(m)
}
