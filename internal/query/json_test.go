package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloesce/core/cidl"
)

func TestAsJSONScalar(t *testing.T) {
	meta := ModelMeta{
		"Person": {
			Name:       "Person",
			PrimaryKey: idPK(),
			Columns: []cidl.D1Column{
				col("name", cidl.TText(), nil),
				col("blob", cidl.TNullable(cidl.TBlob()), nil),
				col("favoriteRealNumber", cidl.TNullable(cidl.TReal()), nil),
			},
		},
	}

	got, err := AsJSON("Person", nil, meta)
	require.NoError(t, err)
	assert.Equal(t,
		`json_group_array(json_object('id', "Person"."id", 'name', "Person"."name", 'blob', hex("Person"."blob"), 'favoriteRealNumber', "Person"."favoriteRealNumber"))`,
		got)
}

func TestAsJSONOneToOne(t *testing.T) {
	meta := ModelMeta{
		"Person": {
			Name:       "Person",
			PrimaryKey: idPK(),
			Columns: []cidl.D1Column{
				col("name", cidl.TText(), nil),
				col("profile_id", cidl.TInteger(), strp("Profile")),
			},
			NavigationProps: []cidl.NavigationProperty{
				nav("profile", "Profile", cidl.NavigationPropertyKind{Kind: cidl.OneToOne, ColumnReference: "profile_id"}),
			},
		},
		"Profile": {
			Name:       "Profile",
			PrimaryKey: idPK(),
			Columns:    []cidl.D1Column{col("bio", cidl.TText(), nil)},
		},
	}

	got, err := AsJSON("Person", tree(map[string]*cidl.IncludeTree{"profile": nil}), meta)
	require.NoError(t, err)
	assert.Equal(t,
		`json_group_array(json_object('id', "Person"."id", 'name', "Person"."name", 'profile_id', "Person"."profile_id", 'profile', COALESCE((SELECT json_object('id', "Profile"."id", 'bio', "Profile"."bio") FROM "Profile" WHERE "Profile"."id" = "Person"."profile_id"), '{}')))`,
		got)
}

func TestAsJSONOneToMany(t *testing.T) {
	meta := ModelMeta{
		"Author": {
			Name:       "Author",
			PrimaryKey: idPK(),
			Columns:    []cidl.D1Column{col("name", cidl.TText(), nil)},
			NavigationProps: []cidl.NavigationProperty{
				nav("books", "Book", cidl.NavigationPropertyKind{Kind: cidl.OneToMany, ColumnReference: "author_id"}),
			},
		},
		"Book": {
			Name:       "Book",
			PrimaryKey: idPK(),
			Columns: []cidl.D1Column{
				col("title", cidl.TText(), nil),
				col("author_id", cidl.TInteger(), strp("Author")),
			},
		},
	}

	got, err := AsJSON("Author", tree(map[string]*cidl.IncludeTree{"books": nil}), meta)
	require.NoError(t, err)
	assert.Equal(t,
		`json_group_array(json_object('id', "Author"."id", 'name', "Author"."name", 'books', COALESCE((SELECT json_group_array(json_object('id', "Book"."id", 'title', "Book"."title", 'author_id', "Book"."author_id")) FROM "Book" WHERE "Book"."author_id" = "Author"."id"), '[]')))`,
		got)
}

func TestAsJSONManyToMany(t *testing.T) {
	meta := ModelMeta{
		"Student": {
			Name:       "Student",
			PrimaryKey: idPK(),
			Columns:    []cidl.D1Column{col("name", cidl.TText(), nil)},
			NavigationProps: []cidl.NavigationProperty{
				nav("courses", "Course", cidl.NavigationPropertyKind{Kind: cidl.ManyToMany}),
			},
		},
		"Course": {
			Name:       "Course",
			PrimaryKey: idPK(),
			Columns:    []cidl.D1Column{col("title", cidl.TText(), nil)},
			NavigationProps: []cidl.NavigationProperty{
				nav("students", "Student", cidl.NavigationPropertyKind{Kind: cidl.ManyToMany}),
			},
		},
	}

	got, err := AsJSON("Student", tree(map[string]*cidl.IncludeTree{"courses": nil}), meta)
	require.NoError(t, err)
	assert.Equal(t,
		`json_group_array(json_object('id', "Student"."id", 'name', "Student"."name", 'courses', COALESCE((SELECT json_group_array(json_object('id', "Course"."id", 'title', "Course"."title")) FROM "Course" JOIN "CourseStudent" ON "CourseStudent"."left" = "Course"."id" WHERE "CourseStudent"."right" = "Student"."id"), '[]')))`,
		got)
}

func TestAsJSONUnknownModel(t *testing.T) {
	_, err := AsJSON("Ghost", nil, ModelMeta{})
	assert.Error(t, err)
}
