package semantic

import (
	"testing"

	"github.com/cloesce/core/cidl"
)

func idPK() cidl.NamedTypedValue {
	return cidl.NamedTypedValue{Name: "id", Type: cidl.TInteger()}
}

func simpleAst() *cidl.CloesceAst {
	return cidl.NewCloesceAst("test")
}

// withWranglerEnv gives an AST a WranglerEnv so validateModels doesn't
// short-circuit as a no-op (it treats a nil env as "no models were
// meaningfully declared").
func withWranglerEnv(ast *cidl.CloesceAst) *cidl.CloesceAst {
	ast.WranglerEnv = &cidl.WranglerEnv{Name: "test"}
	return ast
}

// d1Model builds a minimal D1-backed model, initializing the
// ordered-map fields the way decode-from-JSON always does (§6) so
// validateModels' unconditional Methods/DataSources traversal is safe.
func d1Model(name string) cidl.Model {
	return cidl.Model{
		Name:        name,
		PrimaryKey:  ptr(idPK()),
		Methods:     cidl.NewOrderedMap[cidl.ApiMethod](),
		DataSources: cidl.NewOrderedMap[cidl.DataSource](),
	}
}

func ptr[T any](v T) *T      { return &v }
func strp(s string) *string { return &s }

func TestValidateModelsOrdersForeignKeys(t *testing.T) {
	ast := withWranglerEnv(simpleAst())
	horse := d1Model("Horse")
	person := d1Model("Person")
	person.Columns = []cidl.D1Column{
		{Value: cidl.NamedTypedValue{Name: "horseId", Type: cidl.TInteger()}, ForeignKeyReference: strp("Horse")},
	}
	ast.Models.Set("Person", person)
	ast.Models.Set("Horse", horse)

	if err := validateModels(ast); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := cidl.Keys(ast.Models)
	horseIdx, personIdx := -1, -1
	for i, k := range order {
		if k == "Horse" {
			horseIdx = i
		}
		if k == "Person" {
			personIdx = i
		}
	}
	if !(horseIdx < personIdx) {
		t.Fatalf("expected Horse before Person (Person has a non-nullable FK to Horse), got %v", order)
	}
}

func TestValidateModelsRejectsMismatchedForeignKeyType(t *testing.T) {
	ast := withWranglerEnv(simpleAst())
	horse := d1Model("Horse")
	person := d1Model("Person")
	person.Columns = []cidl.D1Column{
		{Value: cidl.NamedTypedValue{Name: "horseId", Type: cidl.TText()}, ForeignKeyReference: strp("Horse")},
	}
	ast.Models.Set("Horse", horse)
	ast.Models.Set("Person", person)

	if err := validateModels(ast); err == nil {
		t.Fatal("expected a mismatched foreign key type error")
	}
}

func TestValidateModelsRejectsMissingManyToManyPartner(t *testing.T) {
	ast := withWranglerEnv(simpleAst())
	student := d1Model("Student")
	student.NavigationProps = []cidl.NavigationProperty{
		{VarName: "courses", ModelReference: "Course", NavKind: cidl.NavigationPropertyKind{Kind: cidl.ManyToMany}},
	}
	course := d1Model("Course")
	ast.Models.Set("Student", student)
	ast.Models.Set("Course", course)

	if err := validateModels(ast); err == nil {
		t.Fatal("expected a missing many-to-many reference error when only one side declares the nav property")
	}
}

func TestValidateModelsAcceptsSymmetricManyToMany(t *testing.T) {
	ast := withWranglerEnv(simpleAst())
	student := d1Model("Student")
	student.NavigationProps = []cidl.NavigationProperty{
		{VarName: "courses", ModelReference: "Course", NavKind: cidl.NavigationPropertyKind{Kind: cidl.ManyToMany}},
	}
	course := d1Model("Course")
	course.NavigationProps = []cidl.NavigationProperty{
		{VarName: "students", ModelReference: "Student", NavKind: cidl.NavigationPropertyKind{Kind: cidl.ManyToMany}},
	}
	ast.Models.Set("Student", student)
	ast.Models.Set("Course", course)

	if err := validateModels(ast); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateModelsRejectsMismatchedMapKey(t *testing.T) {
	ast := withWranglerEnv(simpleAst())
	ast.Models.Set("Foo", d1Model("Bar"))

	if err := validateModels(ast); err == nil {
		t.Fatal("expected an error when a model's map key doesn't match its name")
	}
}

func TestValidateModelsDetectsCycle(t *testing.T) {
	ast := withWranglerEnv(simpleAst())
	a := d1Model("A")
	a.Columns = []cidl.D1Column{
		{Value: cidl.NamedTypedValue{Name: "bId", Type: cidl.TInteger()}, ForeignKeyReference: strp("B")},
	}
	b := d1Model("B")
	b.Columns = []cidl.D1Column{
		{Value: cidl.NamedTypedValue{Name: "aId", Type: cidl.TInteger()}, ForeignKeyReference: strp("A")},
	}
	ast.Models.Set("A", a)
	ast.Models.Set("B", b)

	if err := validateModels(ast); err == nil {
		t.Fatal("expected a cyclical dependency error for mutual non-nullable FKs")
	}
}
