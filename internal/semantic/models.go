package semantic

import (
	"fmt"

	"github.com/cloesce/core/cerr"
	"github.com/cloesce/core/cidl"
)

// validateModels is sub-stage: model/column/FK/nav/KV/R2/data-source/CRUD
// validation, followed by a topological reorder of the D1-backed models
// into SQL insertion order. No wrangler env means no models can have been
// declared meaningfully, so this is a no-op. Grounded on
// original_source/src/generator/semantic/src/lib.rs's `models` fn.
func validateModels(ast *cidl.CloesceAst) error {
	if ast.WranglerEnv == nil {
		return nil
	}

	var d1Models []cidl.Model

	for p := ast.Models.Oldest(); p != nil; p = p.Next() {
		model := p.Value

		if p.Key != model.Name {
			return cerr.ErrInvalidMapping.New(fmt.Sprintf("models[%s] has name %s", p.Key, model.Name))
		}

		if model.HasD1() {
			d1Models = append(d1Models, model)
		}

		if model.HasKV() || model.HasR2() {
			if err := validateKVR2Model(ast, model); err != nil {
				return err
			}
		}

		if err := validateDataSourceTrees(ast, model); err != nil {
			return err
		}

		for m := model.Methods.Oldest(); m != nil; m = m.Next() {
			if err := validateMethod(model.Name, m.Key, m.Value, ast); err != nil {
				return err
			}
		}

		for crud := range model.Cruds {
			if crud == cidl.CrudList && !model.HasD1() {
				return cerr.ErrUnsupportedCrudOperation.New(
					fmt.Sprintf("%s has LIST CRUD but is not a D1 backed model", model.Name))
			}
		}
	}

	if len(d1Models) > 0 {
		rank, err := validateD1Models(ast, d1Models)
		if err != nil {
			return err
		}
		ast.Models = cidl.ReorderByRank(ast.Models, rank)
	}

	return nil
}

// validateDataSourceTrees walks every data source's include tree
// breadth-first, checking each var name resolves on the model it's
// currently positioned at.
func validateDataSourceTrees(ast *cidl.CloesceAst, model cidl.Model) error {
	type frame struct {
		node   *cidl.IncludeTree
		parent cidl.Model
	}

	for d := model.DataSources.Oldest(); d != nil; d = d.Next() {
		queue := []frame{{d.Value.Tree, model}}

		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]

			if f.node == nil {
				continue
			}
			for c := f.node.Children.Oldest(); c != nil; c = c.Next() {
				refModel, isNav, err := validIncludeTreeReference(f.parent, c.Key)
				if err != nil {
					return err
				}
				if !isNav {
					continue
				}

				childModel, ok := ast.Models.Get(refModel)
				if !ok {
					return cerr.ErrInvalidModelReference.New(fmt.Sprintf("%s => %s?", f.parent.Name, refModel))
				}
				queue = append(queue, frame{c.Value, childModel})
			}
		}
	}

	return nil
}

type fkRef struct {
	model, col string
}

// validateD1Models validates the relational grammar of every D1-backed
// model (PK, columns, FKs, nav props, M:M junctions) and returns the SQL
// insertion order as a rank map. Grounded on the `d1_models` fn.
func validateD1Models(ast *cidl.CloesceAst, d1Models []cidl.Model) (map[string]int, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	modelAttrRefToFKModel := make(map[fkRef]string)
	type unvalidatedNav struct {
		modelName string
		navModel  string
		nav       cidl.NavigationProperty
	}
	var unvalidatedNavs []unvalidatedNav

	m2m := make(map[string][]string)

	for _, model := range d1Models {
		if !model.HasD1() {
			continue
		}
		if model.PrimaryKey == nil {
			return nil, cerr.ErrMissingPrimaryKey.New(model.Name)
		}

		if _, ok := graph[model.Name]; !ok {
			graph[model.Name] = nil
		}
		if _, ok := inDegree[model.Name]; !ok {
			inDegree[model.Name] = 0
		}

		pk := model.PrimaryKey
		if pk.Type.IsNullable() {
			return nil, cerr.ErrNullPrimaryKey.New(fmt.Sprintf("%s.%s", model.Name, pk.Name))
		}
		if err := ensureValidSQLType(model.Name, *pk); err != nil {
			return nil, err
		}

		for _, col := range model.Columns {
			if err := ensureValidSQLType(model.Name, col.Value); err != nil {
				return nil, err
			}

			if col.ForeignKeyReference == nil {
				continue
			}
			fkModelName := *col.ForeignKeyReference

			fkModel, ok := ast.Models.Get(fkModelName)
			if !ok {
				return nil, cerr.ErrInvalidModelReference.New(
					fmt.Sprintf("%s.%s => %s?", model.Name, col.Value.Name, fkModelName))
			}
			if fkModel.PrimaryKey == nil {
				return nil, cerr.ErrInvalidModelReference.New(
					fmt.Sprintf("%s.%s => %s has no primary key?", model.Name, col.Value.Name, fkModelName))
			}

			if !cidl.TypesEqual(col.Value.Type.RootType(), fkModel.PrimaryKey.Type) {
				return nil, cerr.ErrMismatchedForeignKeyTypes.New(fmt.Sprintf(
					"%s.%s (%s) != %s.%s (%s)",
					model.Name, col.Value.Name, col.Value.Type,
					fkModelName, fkModel.PrimaryKey.Name, fkModel.PrimaryKey.Type))
			}

			modelAttrRefToFKModel[fkRef{model.Name, col.Value.Name}] = fkModelName

			if !col.Value.Type.IsNullable() {
				graph[fkModelName] = append(graph[fkModelName], model.Name)
				inDegree[model.Name]++
			}
		}

		for _, nav := range model.NavigationProps {
			if _, ok := ast.Models.Get(nav.ModelReference); !ok {
				return nil, cerr.ErrInvalidModelReference.New(fmt.Sprintf("%s => %s?", model.Name, nav.ModelReference))
			}

			switch nav.NavKind.Kind {
			case cidl.OneToOne:
				fkModel, ok := modelAttrRefToFKModel[fkRef{model.Name, nav.NavKind.ColumnReference}]
				if !ok {
					return nil, cerr.ErrInvalidNavigationPropertyReference.New(fmt.Sprintf(
						"%s.%s references %s.%s which does not exist or is not a foreign key to %s",
						model.Name, nav.VarName, nav.ModelReference, nav.NavKind.ColumnReference, model.Name))
				}
				if fkModel != nav.ModelReference {
					return nil, cerr.ErrMismatchedNavigationPropertyTypes.New(
						fmt.Sprintf("(%s.%s) does not match type (%s)", model.Name, nav.VarName, fkModel))
				}
			case cidl.OneToMany:
				unvalidatedNavs = append(unvalidatedNavs, unvalidatedNav{model.Name, nav.ModelReference, nav})
			case cidl.ManyToMany:
				id := nav.ManyToManyTableName(model.Name)
				m2m[id] = append(m2m[id], model.Name)
			}
		}
	}

	for _, u := range unvalidatedNavs {
		fkModel, ok := modelAttrRefToFKModel[fkRef{u.navModel, u.nav.NavKind.ColumnReference}]
		if !ok {
			return nil, cerr.ErrInvalidNavigationPropertyReference.New(fmt.Sprintf(
				"%s.%s references %s.%s which does not exist or is not a foreign key to %s",
				u.modelName, u.nav.VarName, u.navModel, u.nav.NavKind.ColumnReference, u.modelName))
		}
		if u.modelName != fkModel {
			return nil, cerr.ErrMismatchedNavigationPropertyTypes.New(fmt.Sprintf(
				"(%s.%s) does not match type (%s.%s)", u.modelName, u.nav.VarName, u.navModel, u.nav.NavKind.ColumnReference))
		}

		graph[u.modelName] = append(graph[u.modelName], u.navModel)
		if _, ok := inDegree[u.navModel]; !ok {
			inDegree[u.navModel] = 0
		}
		inDegree[u.navModel]++
	}

	for uniqueID, jcts := range m2m {
		if len(jcts) < 2 {
			return nil, cerr.ErrMissingManyToManyReference.New(
				fmt.Sprintf("missing junction table for many to many table %s", uniqueID))
		}
		if len(jcts) > 2 {
			joined := ""
			for i, j := range jcts {
				if i > 0 {
					joined += ","
				}
				joined += j
			}
			return nil, cerr.ErrExtraneousManyToManyReferences.New(fmt.Sprintf("%s %s", uniqueID, joined))
		}
	}

	return kahn(graph, inDegree, len(d1Models))
}

// validateKVR2Model checks that every KV/R2 key format string on model
// references only columns, key params, or the primary key, and that KV
// value types resolve. Grounded on the `kv_r2_models` fn.
func validateKVR2Model(ast *cidl.CloesceAst, model cidl.Model) error {
	hasVar := func(v string) bool {
		if _, ok := model.FindColumn(v); ok {
			return true
		}
		for _, kp := range model.KeyParams {
			if kp == v {
				return true
			}
		}
		return model.PrimaryKey != nil && model.PrimaryKey.Name == v
	}

	for _, kv := range model.KVObjects {
		vars, err := extractBraced(kv.Format)
		if err != nil {
			return err
		}
		for _, v := range vars {
			if !hasVar(v) {
				return cerr.ErrUnknownKeyReference.New(
					fmt.Sprintf("%s.%s => %s missing key param for variable %s", model.Name, kv.Value.Name, kv.Format, v))
			}
		}

		switch kv.Value.Type.Kind {
		case cidl.Object, cidl.Partial:
			if !isValidObjectRef(ast, kv.Value.Type.Name) {
				return cerr.ErrUnknownObject.New(fmt.Sprintf("%s.%s => %s?", model.Name, kv.Value.Name, kv.Value.Type.Name))
			}
		case cidl.Inject:
			return cerr.ErrUnexpectedInject.New(fmt.Sprintf("%s.%s => %s?", model.Name, kv.Value.Name, kv.Value.Type.Name))
		case cidl.DataSource:
			if !isValidDataSourceRef(ast, kv.Value.Type.Name) {
				return cerr.ErrInvalidModelReference.New(fmt.Sprintf("%s.%s => %s?", model.Name, kv.Value.Name, kv.Value.Type.Name))
			}
		}
	}

	for _, r2 := range model.R2Objects {
		vars, err := extractBraced(r2.Format)
		if err != nil {
			return err
		}
		for _, v := range vars {
			if !hasVar(v) {
				return cerr.ErrUnknownKeyReference.New(
					fmt.Sprintf("%s.%s => %s missing key param for variable %s", model.Name, r2.VarName, r2.Format, v))
			}
		}
	}

	return nil
}
