package cidl

// WranglerEnv is the set of binding declarations a compiled project
// expects to find in the host's wrangler configuration.
type WranglerEnv struct {
	Name       string            `json:"name"`
	Vars       map[string]string `json:"vars"`
	D1Binding  string            `json:"d1_binding"`
	KVBindings []string          `json:"kv_bindings"`
	SourcePath string            `json:"source_path,omitempty"`
}

// D1Database is a D1 database binding declared in the wrangler spec.
type D1Database struct {
	Binding *string `json:"binding,omitempty"`
}

// KVNamespace is a KV namespace binding declared in the wrangler spec.
type KVNamespace struct {
	Binding *string `json:"binding,omitempty"`
}

// R2Bucket is an R2 bucket binding declared in the wrangler spec.
type R2Bucket struct {
	Binding *string `json:"binding,omitempty"`
}

// WranglerSpec is the external wrangler configuration the analyzer
// cross-checks a WranglerEnv against. It is never otherwise interpreted.
type WranglerSpec struct {
	Vars         map[string]string `json:"vars"`
	D1Databases  []D1Database      `json:"d1_databases"`
	KVNamespaces []KVNamespace     `json:"kv_namespaces"`
	R2Buckets    []R2Bucket        `json:"r2_buckets"`
}
