package cidl

// ServiceAttribute is a single dependency-injected field on a Service.
type ServiceAttribute struct {
	VarName         string `json:"var_name"`
	InjectReference string `json:"inject_reference"`
}

// Service is a dependency-injection service: a set of injected attributes,
// an optional initializer listing the symbols its constructor consumes,
// and a set of methods.
type Service struct {
	Name        string
	Attributes  []ServiceAttribute
	Initializer []string
	Methods     *OrderedMap[ApiMethod]
	SourcePath  string
}

// PlainOldObject (POO) is a value type referenced by models or methods but
// never itself stored relationally.
type PlainOldObject struct {
	Name       string            `json:"name"`
	Attributes []NamedTypedValue `json:"attributes"`
	SourcePath string            `json:"source_path,omitempty"`
}
