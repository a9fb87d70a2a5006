package migrate

import (
	"strings"
	"testing"

	"github.com/cloesce/core/cidl"
)

func ptr[T any](v T) *T      { return &v }
func strp(s string) *string { return &s }

func pk(t cidl.CidlType) cidl.NamedTypedValue {
	return cidl.NamedTypedValue{Name: "id", Type: t}
}

func mAst(models ...cidl.Model) *cidl.MigrationsAst {
	m := cidl.NewOrderedMap[cidl.Model]()
	for _, model := range models {
		m.Set(model.Name, model)
	}
	return &cidl.MigrationsAst{Models: m}
}

func TestMigrateNoOpWhenHashesMatch(t *testing.T) {
	ast := mAst(cidl.Model{Name: "User", PrimaryKey: ptr(pk(cidl.TInteger()))})
	ast.Hash = 42
	lm := mAst(cidl.Model{Name: "User", PrimaryKey: ptr(pk(cidl.TInteger()))})
	lm.Hash = 42

	got := Migrate(ast, lm, DropIntent{})
	if got != "" {
		t.Fatalf("expected empty string when root hashes match, got %q", got)
	}
}

func TestMigrateBootstrapCreatesTempTable(t *testing.T) {
	ast := mAst(cidl.Model{Name: "User", PrimaryKey: ptr(pk(cidl.TInteger()))})
	ast.Hash = 1

	got := Migrate(ast, nil, DropIntent{})
	if !strings.Contains(got, "_cloesce_tmp") {
		t.Fatalf("expected bootstrap migration to create _cloesce_tmp, got:\n%s", got)
	}
	if !strings.Contains(got, `CREATE TABLE IF NOT EXISTS "User"`) {
		t.Fatalf("expected a CREATE TABLE for User, got:\n%s", got)
	}
}

// Scenario 4 (§8): a primary key type change forces a full rebuild:
// rename-copy-drop with a CAST on the changed column.
func TestMigrateRebuildsOnPrimaryKeyTypeChange(t *testing.T) {
	lmUser := cidl.Model{Name: "User", PrimaryKey: ptr(pk(cidl.TInteger())), Hash: 100}
	newUser := cidl.Model{Name: "User", PrimaryKey: ptr(pk(cidl.TText())), Hash: 200}

	ast, lm := mAst(newUser), mAst(lmUser)
	ast.Hash, lm.Hash = 2, 1
	got := Migrate(ast, lm, DropIntent{})

	if !strings.Contains(got, `ALTER TABLE "User" RENAME TO "User_`) {
		t.Fatalf("expected a rename-to-hashed-name statement, got:\n%s", got)
	}
	if !strings.Contains(got, `CREATE TABLE IF NOT EXISTS "User"`) {
		t.Fatalf("expected a fresh CREATE TABLE for User, got:\n%s", got)
	}
	if !strings.Contains(strings.ToUpper(got), `CAST("ID" AS TEXT)`) {
		t.Fatalf("expected the id column to be CAST during the rebuild copy, got:\n%s", got)
	}
	if !strings.Contains(got, `DROP TABLE "User_`) {
		t.Fatalf("expected the renamed old table to be dropped, got:\n%s", got)
	}

	renameIdx := strings.Index(got, "RENAME TO")
	createIdx := strings.Index(got, "CREATE TABLE")
	insertIdx := strings.Index(strings.ToUpper(got), "INSERT INTO")
	dropIdx := strings.LastIndex(got, "DROP TABLE")
	if !(renameIdx < createIdx && createIdx < insertIdx && insertIdx < dropIdx) {
		t.Fatalf("expected rename < create < insert < drop ordering, got:\n%s", got)
	}
}

// Scenario 5 (§8): a rename resolved via intent must not force a rebuild
// of a dependent table whose FK target merely got renamed.
func TestMigrateRenameDoesNotForceDependentRebuild(t *testing.T) {
	lmUser := cidl.Model{Name: "User", PrimaryKey: ptr(pk(cidl.TInteger())), Hash: 1}
	lmSettings := cidl.Model{
		Name:       "UserSettings",
		PrimaryKey: ptr(pk(cidl.TInteger())),
		Columns: []cidl.D1Column{
			{Value: cidl.NamedTypedValue{Name: "userId", Type: cidl.TInteger()}, ForeignKeyReference: strp("User"), Hash: 10},
		},
		Hash: 2,
	}

	newUser := cidl.Model{Name: "AppUser", PrimaryKey: ptr(pk(cidl.TInteger())), Hash: 1}
	newSettings := cidl.Model{
		Name:       "UserSettings",
		PrimaryKey: ptr(pk(cidl.TInteger())),
		Columns: []cidl.D1Column{
			{Value: cidl.NamedTypedValue{Name: "userId", Type: cidl.TInteger()}, ForeignKeyReference: strp("AppUser"), Hash: 10},
		},
		Hash: 2,
	}

	intent := NewMapIntent()
	intent.Answers["User"] = 0 // choose AppUser as the rename target

	ast, lm := mAst(newUser, newSettings), mAst(lmUser, lmSettings)
	ast.Hash, lm.Hash = 2, 1
	got := Migrate(ast, lm, intent)

	if !strings.Contains(got, `ALTER TABLE "User" RENAME TO "AppUser";`) {
		t.Fatalf("expected a rename statement for User -> AppUser, got:\n%s", got)
	}
	if strings.Contains(got, `"UserSettings_`) {
		t.Fatalf("UserSettings should not be rebuilt when its FK target was only renamed, got:\n%s", got)
	}
	if strings.Contains(got, `RENAME TO "UserSettings"`) {
		t.Fatalf("UserSettings itself was not renamed, got:\n%s", got)
	}
}

// Scenario 6 (§8): two models each declaring a M:M nav against the other
// create exactly one junction table with deterministic column names.
func TestMigrateCreatesSingleJunctionTableForManyToMany(t *testing.T) {
	student := cidl.Model{
		Name:       "Student",
		PrimaryKey: ptr(pk(cidl.TInteger())),
		NavigationProps: []cidl.NavigationProperty{
			{VarName: "courses", ModelReference: "Course", NavKind: cidl.NavigationPropertyKind{Kind: cidl.ManyToMany}},
		},
		Hash: 1,
	}
	course := cidl.Model{
		Name:       "Course",
		PrimaryKey: ptr(pk(cidl.TInteger())),
		NavigationProps: []cidl.NavigationProperty{
			{VarName: "students", ModelReference: "Student", NavKind: cidl.NavigationPropertyKind{Kind: cidl.ManyToMany}},
		},
		Hash: 2,
	}

	got := Migrate(mAst(student, course), nil, DropIntent{})

	if strings.Count(got, `CREATE TABLE IF NOT EXISTS "CourseStudent"`) != 1 {
		t.Fatalf("expected exactly one CourseStudent junction table, got:\n%s", got)
	}
	if !strings.Contains(got, `FOREIGN KEY ("left") REFERENCES "Course"("id")`) {
		t.Fatalf("expected left to reference Course (lexicographically smaller), got:\n%s", got)
	}
	if !strings.Contains(got, `FOREIGN KEY ("right") REFERENCES "Student"("id")`) {
		t.Fatalf("expected right to reference Student, got:\n%s", got)
	}
}

func TestMigrateAlterAddsManyToManyWithSortedSides(t *testing.T) {
	lmStudent := cidl.Model{Name: "Student", PrimaryKey: ptr(pk(cidl.TInteger())), Hash: 1}
	newStudent := cidl.Model{
		Name:       "Student",
		PrimaryKey: ptr(pk(cidl.TInteger())),
		NavigationProps: []cidl.NavigationProperty{
			{VarName: "courses", ModelReference: "Course", NavKind: cidl.NavigationPropertyKind{Kind: cidl.ManyToMany}},
		},
		Hash: 2,
	}
	course := cidl.Model{Name: "Course", PrimaryKey: ptr(pk(cidl.TInteger())), Hash: 3}

	ast, lm := mAst(newStudent, course), mAst(lmStudent, course)
	ast.Hash, lm.Hash = 2, 1
	got := Migrate(ast, lm, DropIntent{})

	if !strings.Contains(got, `FOREIGN KEY ("left") REFERENCES "Course"("id")`) {
		t.Fatalf("expected left to reference Course regardless of which model's nav triggered the add, got:\n%s", got)
	}
	if !strings.Contains(got, `FOREIGN KEY ("right") REFERENCES "Student"("id")`) {
		t.Fatalf("expected right to reference Student, got:\n%s", got)
	}
}

func TestMigrateDropsModelsBeforeCreatingNewOnes(t *testing.T) {
	lmObsolete := cidl.Model{Name: "Obsolete", PrimaryKey: ptr(pk(cidl.TInteger())), Hash: 1}
	newModel := cidl.Model{Name: "Fresh", PrimaryKey: ptr(pk(cidl.TInteger())), Hash: 2}

	ast, lm := mAst(newModel), mAst(lmObsolete)
	ast.Hash, lm.Hash = 2, 1
	got := Migrate(ast, lm, DropIntent{})

	dropIdx := strings.Index(got, "--- Dropped Models")
	createIdx := strings.Index(got, "--- New Models")
	if dropIdx == -1 || createIdx == -1 || dropIdx > createIdx {
		t.Fatalf("expected Dropped Models section before New Models section, got:\n%s", got)
	}
	if !strings.Contains(got, `DROP TABLE IF EXISTS "Obsolete";`) {
		t.Fatalf("expected Obsolete to be dropped, got:\n%s", got)
	}
}
