package semantic

import (
	"testing"

	"github.com/cloesce/core/cidl"
)

func pooWith(name string, attrs ...cidl.NamedTypedValue) cidl.PlainOldObject {
	return cidl.PlainOldObject{Name: name, Attributes: attrs}
}

func TestValidatePoosOrdersByDependency(t *testing.T) {
	ast := cidl.NewCloesceAst("test")
	// Address has no POO deps; Person depends on Address. Declared in
	// reverse order to exercise the reordering.
	ast.Poos.Set("Person", pooWith("Person",
		cidl.NamedTypedValue{Name: "name", Type: cidl.TText()},
		cidl.NamedTypedValue{Name: "address", Type: cidl.TObject("Address")},
	))
	ast.Poos.Set("Address", pooWith("Address",
		cidl.NamedTypedValue{Name: "line1", Type: cidl.TText()},
	))

	if err := validatePoos(ast); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := cidl.Keys(ast.Poos)
	addressIdx, personIdx := -1, -1
	for i, k := range order {
		if k == "Address" {
			addressIdx = i
		}
		if k == "Person" {
			personIdx = i
		}
	}
	if !(addressIdx < personIdx) {
		t.Fatalf("expected Address before Person, got order %v", order)
	}
}

func TestValidatePoosDetectsCycle(t *testing.T) {
	ast := cidl.NewCloesceAst("test")
	ast.Poos.Set("A", pooWith("A", cidl.NamedTypedValue{Name: "b", Type: cidl.TObject("B")}))
	ast.Poos.Set("B", pooWith("B", cidl.NamedTypedValue{Name: "a", Type: cidl.TObject("A")}))

	if err := validatePoos(ast); err == nil {
		t.Fatal("expected a cyclical dependency error")
	}
}

func TestValidatePoosRejectsVoidAttribute(t *testing.T) {
	ast := cidl.NewCloesceAst("test")
	ast.Poos.Set("A", pooWith("A", cidl.NamedTypedValue{Name: "x", Type: cidl.TVoid()}))

	if err := validatePoos(ast); err == nil {
		t.Fatal("expected an error for a Void-typed POO attribute")
	}
}

func TestValidatePoosRejectsUnknownObjectReference(t *testing.T) {
	ast := cidl.NewCloesceAst("test")
	ast.Poos.Set("A", pooWith("A", cidl.NamedTypedValue{Name: "x", Type: cidl.TObject("Missing")}))

	if err := validatePoos(ast); err == nil {
		t.Fatal("expected an error for an unresolvable Object reference")
	}
}

func TestValidatePoosRejectsMismatchedMapKey(t *testing.T) {
	ast := cidl.NewCloesceAst("test")
	ast.Poos.Set("Foo", pooWith("Bar"))

	if err := validatePoos(ast); err == nil {
		t.Fatal("expected an error when a poo's map key doesn't match its name")
	}
}
