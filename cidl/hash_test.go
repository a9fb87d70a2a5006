package cidl

import "testing"

func modelWithColumn(name, colName string) Model {
	return Model{
		Name:       name,
		PrimaryKey: &NamedTypedValue{Name: "id", Type: TInteger()},
		Columns: []D1Column{
			{Value: NamedTypedValue{Name: colName, Type: TText()}},
		},
	}
}

func astWithModel(m Model) *CloesceAst {
	a := NewCloesceAst("test")
	a.Models.Set(m.Name, m)
	return a
}

func TestSetMerkleHashIsIdempotent(t *testing.T) {
	a := astWithModel(modelWithColumn("Horse", "color"))

	SetMerkleHash(a)
	first := a.Hash
	firstModel, _ := a.Models.Get("Horse")

	SetMerkleHash(a)
	second := a.Hash
	secondModel, _ := a.Models.Get("Horse")

	if first == 0 {
		t.Fatal("expected a nonzero root hash after hashing")
	}
	if first != second {
		t.Fatalf("re-hashing changed the root hash: %d != %d", first, second)
	}
	if firstModel.Hash != secondModel.Hash {
		t.Fatalf("re-hashing changed the model hash: %d != %d", firstModel.Hash, secondModel.Hash)
	}
}

func TestSetMerkleHashDeterministicAcrossRuns(t *testing.T) {
	a1 := astWithModel(modelWithColumn("Horse", "color"))
	a2 := astWithModel(modelWithColumn("Horse", "color"))

	SetMerkleHash(a1)
	SetMerkleHash(a2)

	if a1.Hash != a2.Hash {
		t.Fatalf("expected identical ASTs to hash identically: %d != %d", a1.Hash, a2.Hash)
	}
}

func TestSetMerkleHashChangesWithContent(t *testing.T) {
	a1 := astWithModel(modelWithColumn("Horse", "color"))
	a2 := astWithModel(modelWithColumn("Horse", "age"))

	SetMerkleHash(a1)
	SetMerkleHash(a2)

	if a1.Hash == a2.Hash {
		t.Fatal("expected differing column names to produce differing hashes")
	}
}

func TestSetMerkleHashFoldsNavProperties(t *testing.T) {
	base := modelWithColumn("Person", "name")

	withNav := base
	withNav.NavigationProps = []NavigationProperty{
		{VarName: "horse", ModelReference: "Horse", NavKind: NavigationPropertyKind{Kind: OneToOne, ColumnReference: "horseId"}},
	}

	a1 := astWithModel(base)
	a2 := astWithModel(withNav)

	SetMerkleHash(a1)
	SetMerkleHash(a2)

	if a1.Hash == a2.Hash {
		t.Fatal("expected a navigation property to change the model's hash")
	}
}
