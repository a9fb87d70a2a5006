package cidl

// CrudKind is one of the CRUD operations a model can expose generically.
type CrudKind int

const (
	CrudGet CrudKind = iota
	CrudList
	CrudSave
)

func (c CrudKind) String() string {
	switch c {
	case CrudGet:
		return "GET"
	case CrudList:
		return "LIST"
	case CrudSave:
		return "SAVE"
	default:
		return "UNKNOWN"
	}
}

// KVObject declares an auxiliary key/value artifact attached to a model.
type KVObject struct {
	Format           string          `json:"format"`
	NamespaceBinding string          `json:"namespace_binding"`
	Value            NamedTypedValue `json:"value"`
	ListPrefix       bool            `json:"list_prefix"`
}

// R2ObjectDecl declares an auxiliary object-store artifact attached to a model.
type R2ObjectDecl struct {
	Format        string `json:"format"`
	VarName       string `json:"var_name"`
	BucketBinding string `json:"bucket_binding"`
	ListPrefix    bool   `json:"list_prefix"`
}

// Model is a data model: its relational shape (PK, columns, navigation
// properties), its auxiliary KV/R2 artifacts, and the methods/data
// sources/CRUD surface attached to it.
type Model struct {
	Name            string
	PrimaryKey      *NamedTypedValue
	Columns         []D1Column
	NavigationProps []NavigationProperty
	KeyParams       []string
	KVObjects       []KVObject
	R2Objects       []R2ObjectDecl
	Methods         *OrderedMap[ApiMethod]
	DataSources     *OrderedMap[DataSource]
	Cruds           map[CrudKind]struct{}
	SourcePath      string
	Hash            uint64
}

// HasD1 reports whether the model has a relational shape worth migrating.
func (m Model) HasD1() bool {
	return m.PrimaryKey != nil || len(m.Columns) > 0
}

// HasKV reports whether the model declares any KV artifacts.
func (m Model) HasKV() bool { return len(m.KVObjects) > 0 }

// HasR2 reports whether the model declares any R2 artifacts.
func (m Model) HasR2() bool { return len(m.R2Objects) > 0 }

// FindNav looks up a navigation property by its var name.
func (m Model) FindNav(varName string) (NavigationProperty, bool) {
	for _, n := range m.NavigationProps {
		if n.VarName == varName {
			return n, true
		}
	}
	return NavigationProperty{}, false
}

// FindColumn looks up a column by name.
func (m Model) FindColumn(name string) (D1Column, bool) {
	for _, c := range m.Columns {
		if c.Value.Name == name {
			return c, true
		}
	}
	return D1Column{}, false
}
