// Package semantic implements the AST's grammar checks and the
// topological reordering of models, POOs, and services into the order
// their dependencies require. Grounded on
// original_source/src/generator/semantic/src/lib.rs.
package semantic

import "github.com/cloesce/core/cidl"

// Analyze validates ast's grammar in place, yielding an error on the
// first violation. The wrangler environment is validated first so every
// later stage can assume it's consistent; models are ordered into SQL
// insertion order, POOs and services into construction order.
func Analyze(ast *cidl.CloesceAst, spec *cidl.WranglerSpec) error {
	if err := validateWrangler(ast, spec); err != nil {
		return err
	}
	if err := validateModels(ast); err != nil {
		return err
	}
	if err := validatePoos(ast); err != nil {
		return err
	}
	if err := validateServices(ast); err != nil {
		return err
	}
	return nil
}
