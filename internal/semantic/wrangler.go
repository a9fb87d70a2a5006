package semantic

import (
	"fmt"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

// validateWrangler is sub-stage 1 of analyze: it must run before anything
// else so later stages can assume a consistent wrangler environment.
// Grounded on original_source/src/generator/semantic/src/lib.rs's
// `wrangler` fn.
func validateWrangler(ast *cidl.CloesceAst, spec *cidl.WranglerSpec) error {
	env := ast.WranglerEnv
	if env == nil {
		if ast.Models.Len() == 0 {
			return nil
		}
		return cerr.ErrMissingWranglerEnv.New("the AST is missing a WranglerEnv but models are defined")
	}

	var hasD1, hasKV, hasR2 bool
	for p := ast.Models.Oldest(); p != nil; p = p.Next() {
		hasD1 = hasD1 || p.Value.HasD1()
		hasKV = hasKV || p.Value.HasKV()
		hasR2 = hasR2 || p.Value.HasR2()
	}

	for v := range env.Vars {
		if _, ok := spec.Vars[v]; !ok {
			return cerr.ErrMissingWranglerVariable.New(fmt.Sprintf("%s (%s)", v, env.SourcePath))
		}
	}

	if len(spec.D1Databases) == 0 && hasD1 {
		return cerr.ErrMissingWranglerD1Binding.New(
			fmt.Sprintf("no D1 database binding is defined, but D1 models are defined (%s)", env.SourcePath))
	}

	if len(spec.D1Databases) > 0 {
		db := spec.D1Databases[0]
		binding := ""
		if db.Binding != nil {
			binding = *db.Binding
		}
		if env.D1Binding != binding {
			return cerr.ErrInconsistentWranglerBinding.New(
				fmt.Sprintf("%s.%s != %s in %s", env.Name, env.D1Binding, binding, env.SourcePath))
		}
	}

	if len(spec.KVNamespaces) == 0 && hasKV {
		return cerr.ErrMissingWranglerKVNamespace.New(
			fmt.Sprintf("no KV namespace binding is defined, but KV models are defined (%s)", env.SourcePath))
	}

	for _, kv := range env.KVBindings {
		found := false
		for _, ns := range spec.KVNamespaces {
			if ns.Binding != nil && *ns.Binding == kv {
				found = true
				break
			}
		}
		if !found {
			return cerr.ErrInconsistentWranglerBinding.New(fmt.Sprintf("%s %s", kv, env.SourcePath))
		}
	}

	if len(spec.R2Buckets) == 0 && hasR2 {
		return cerr.ErrMissingWranglerR2Bucket.New(
			fmt.Sprintf("no R2 bucket binding is defined, but R2 models are defined (%s)", env.SourcePath))
	}

	return nil
}
