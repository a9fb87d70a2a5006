package cidl

import "encoding/json"

func (c CrudKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *CrudKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "GET":
		*c = CrudGet
	case "LIST":
		*c = CrudList
	case "SAVE":
		*c = CrudSave
	}
	return nil
}

type modelWire struct {
	Name            string               `json:"name"`
	PrimaryKey      *NamedTypedValue     `json:"primary_key,omitempty"`
	Columns         []D1Column           `json:"columns"`
	NavigationProps []NavigationProperty `json:"navigation_properties"`
	KeyParams       []string             `json:"key_params"`
	KVObjects       []KVObject           `json:"kv_objects"`
	R2Objects       []R2ObjectDecl       `json:"r2_objects"`
	Methods         json.RawMessage      `json:"methods"`
	DataSources     json.RawMessage      `json:"data_sources"`
	Cruds           []CrudKind           `json:"cruds"`
	SourcePath      string               `json:"source_path,omitempty"`
	Hash            uint64               `json:"hash,omitempty"`
}

// MarshalJSON renders a Model, including its ordered-map Methods and
// DataSources fields, as a single JSON object (§6 AST import format).
func (m Model) MarshalJSON() ([]byte, error) {
	methods, err := MarshalOrderedMap(m.Methods)
	if err != nil {
		return nil, err
	}
	dataSources, err := MarshalOrderedMap(m.DataSources)
	if err != nil {
		return nil, err
	}

	cruds := make([]CrudKind, 0, len(m.Cruds))
	for c := range m.Cruds {
		cruds = append(cruds, c)
	}

	return json.Marshal(modelWire{
		Name:            m.Name,
		PrimaryKey:      m.PrimaryKey,
		Columns:         m.Columns,
		NavigationProps: m.NavigationProps,
		KeyParams:       m.KeyParams,
		KVObjects:       m.KVObjects,
		R2Objects:       m.R2Objects,
		Methods:         methods,
		DataSources:     dataSources,
		Cruds:           cruds,
		SourcePath:      m.SourcePath,
		Hash:            m.Hash,
	})
}

// UnmarshalJSON parses a Model, decoding Methods/DataSources through the
// ordered-map codec so method/data-source declaration order survives.
func (m *Model) UnmarshalJSON(data []byte) error {
	var w modelWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	m.Name = w.Name
	m.PrimaryKey = w.PrimaryKey
	m.Columns = w.Columns
	m.NavigationProps = w.NavigationProps
	m.KeyParams = w.KeyParams
	m.KVObjects = w.KVObjects
	m.R2Objects = w.R2Objects
	m.SourcePath = w.SourcePath
	m.Hash = w.Hash

	m.Cruds = make(map[CrudKind]struct{}, len(w.Cruds))
	for _, c := range w.Cruds {
		m.Cruds[c] = struct{}{}
	}

	if len(w.Methods) > 0 {
		methods, err := UnmarshalOrderedMap[ApiMethod](w.Methods)
		if err != nil {
			return err
		}
		m.Methods = methods
	} else {
		m.Methods = NewOrderedMap[ApiMethod]()
	}

	if len(w.DataSources) > 0 {
		dataSources, err := UnmarshalOrderedMap[DataSource](w.DataSources)
		if err != nil {
			return err
		}
		m.DataSources = dataSources
	} else {
		m.DataSources = NewOrderedMap[DataSource]()
	}

	return nil
}
