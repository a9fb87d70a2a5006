package semantic

import (
	"testing"

	"github.com/cloesce/core/cidl"
)

func TestAnalyzeOrdersModelsPoosAndServices(t *testing.T) {
	ast := simpleAst()
	binding := "DB"
	ast.WranglerEnv = &cidl.WranglerEnv{Name: "test", D1Binding: "DB"}

	horse := d1Model("Horse")
	person := d1Model("Person")
	person.Columns = []cidl.D1Column{
		{Value: cidl.NamedTypedValue{Name: "horseId", Type: cidl.TInteger()}, ForeignKeyReference: strp("Horse")},
	}
	ast.Models.Set("Person", person)
	ast.Models.Set("Horse", horse)

	ast.Poos.Set("Person_DTO", cidl.PlainOldObject{
		Name: "Person_DTO",
		Attributes: []cidl.NamedTypedValue{
			{Name: "address", Type: cidl.TObject("Address_DTO")},
		},
	})
	ast.Poos.Set("Address_DTO", cidl.PlainOldObject{
		Name:       "Address_DTO",
		Attributes: []cidl.NamedTypedValue{{Name: "line1", Type: cidl.TText()}},
	})

	ast.Services.Set("Consumer", cidl.Service{
		Name: "Consumer",
		Attributes: []cidl.ServiceAttribute{
			{VarName: "dep", InjectReference: "Dependency"},
		},
		Methods: cidl.NewOrderedMap[cidl.ApiMethod](),
	})
	ast.Services.Set("Dependency", cidl.Service{
		Name:    "Dependency",
		Methods: cidl.NewOrderedMap[cidl.ApiMethod](),
	})

	spec := &cidl.WranglerSpec{D1Databases: []cidl.D1Database{{Binding: &binding}}}
	if err := Analyze(ast, spec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	models := cidl.Keys(ast.Models)
	if models[0] != "Horse" || models[1] != "Person" {
		t.Fatalf("expected Horse before Person, got %v", models)
	}

	poos := cidl.Keys(ast.Poos)
	if poos[0] != "Address_DTO" || poos[1] != "Person_DTO" {
		t.Fatalf("expected Address_DTO before Person_DTO, got %v", poos)
	}

	services := cidl.Keys(ast.Services)
	if services[0] != "Dependency" || services[1] != "Consumer" {
		t.Fatalf("expected Dependency before Consumer, got %v", services)
	}
}

func TestAnalyzeFailsFastOnWranglerViolation(t *testing.T) {
	ast := simpleAst()
	ast.Models.Set("Horse", d1Model("Horse"))

	if err := Analyze(ast, &cidl.WranglerSpec{}); err == nil {
		t.Fatal("expected an error when models exist without a WranglerEnv")
	}
}
