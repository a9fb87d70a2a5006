package semantic

import (
	"testing"

	"github.com/cloesce/core/cidl"
)

func svcWith(name string, attrs ...cidl.ServiceAttribute) cidl.Service {
	return cidl.Service{Name: name, Attributes: attrs, Methods: cidl.NewOrderedMap[cidl.ApiMethod]()}
}

func TestValidateServicesOrdersByInjectDependency(t *testing.T) {
	ast := cidl.NewCloesceAst("test")
	// Consumer depends on Dependency. Declared in reverse order to
	// exercise the reordering.
	ast.Services.Set("Consumer", svcWith("Consumer", cidl.ServiceAttribute{VarName: "dep", InjectReference: "Dependency"}))
	ast.Services.Set("Dependency", svcWith("Dependency"))

	if err := validateServices(ast); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := cidl.Keys(ast.Services)
	depIdx, consumerIdx := -1, -1
	for i, k := range order {
		if k == "Dependency" {
			depIdx = i
		}
		if k == "Consumer" {
			consumerIdx = i
		}
	}
	if !(depIdx < consumerIdx) {
		t.Fatalf("expected Dependency before Consumer, got order %v", order)
	}
}

func TestValidateServicesRejectsMismatchedMapKey(t *testing.T) {
	ast := cidl.NewCloesceAst("test")
	ast.Services.Set("Foo", svcWith("Bar"))

	if err := validateServices(ast); err == nil {
		t.Fatal("expected an error when a service's map key doesn't match its name")
	}
}
