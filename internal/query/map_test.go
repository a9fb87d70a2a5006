package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloesce/core/cidl"
)

func TestMapRowsNoRecordsReturnsEmpty(t *testing.T) {
	meta := ModelMeta{
		"Horse": {
			Name:       "Horse",
			PrimaryKey: idPK(),
			Columns:    []cidl.D1Column{col("name", cidl.TNullable(cidl.TText()), nil)},
			NavigationProps: []cidl.NavigationProperty{
				nav("riders", "Rider", cidl.NavigationPropertyKind{Kind: cidl.OneToMany, ColumnReference: "id"}),
			},
		},
		"Rider": {Name: "Rider", PrimaryKey: idPK(), Columns: []cidl.D1Column{col("nickname", cidl.TNullable(cidl.TText()), nil)}},
	}

	result, err := MapRows("Horse", nil, nil, meta)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestMapRowsFlat(t *testing.T) {
	meta := ModelMeta{
		"Horse": {Name: "Horse", PrimaryKey: idPK(), Columns: []cidl.D1Column{col("name", cidl.TNullable(cidl.TText()), nil)}},
	}

	rows := []Row{{"id": int64(1), "name": "Lightning"}}

	result, err := MapRows("Horse", rows, nil, meta)
	require.NoError(t, err)
	require.Len(t, result, 1)

	v, ok := result[0].Get("id")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	v, ok = result[0].Get("name")
	require.True(t, ok)
	assert.Equal(t, "Lightning", v)
}

func TestMapRowsOneToOne(t *testing.T) {
	meta := ModelMeta{
		"Horse": {
			Name:       "Horse",
			PrimaryKey: idPK(),
			Columns: []cidl.D1Column{
				col("name", cidl.TNullable(cidl.TText()), nil),
				col("best_rider_id", cidl.TInteger(), strp("Rider")),
			},
			NavigationProps: []cidl.NavigationProperty{
				nav("best_rider", "Rider", cidl.NavigationPropertyKind{Kind: cidl.OneToOne, ColumnReference: "best_rider_id"}),
			},
		},
		"Rider": {Name: "Rider", PrimaryKey: idPK(), Columns: []cidl.D1Column{col("nickname", cidl.TNullable(cidl.TText()), nil)}},
	}

	rows := []Row{{
		"id":                  int64(1),
		"name":                "Shadowfax",
		"best_rider_id":       int64(1),
		"best_rider.id":       int64(1),
		"best_rider.nickname": "Gandalf",
	}}

	it := tree(map[string]*cidl.IncludeTree{"best_rider": nil})
	result, err := MapRows("Horse", rows, it, meta)
	require.NoError(t, err)
	require.Len(t, result, 1)

	riderVal, ok := result[0].Get("best_rider")
	require.True(t, ok)
	rider, ok := riderVal.(Object)
	require.True(t, ok)
	v, _ := rider.Get("nickname")
	assert.Equal(t, "Gandalf", v)
}

func TestMapRowsOneToMany(t *testing.T) {
	meta := ModelMeta{
		"Horse": {
			Name:       "Horse",
			PrimaryKey: idPK(),
			Columns:    []cidl.D1Column{col("name", cidl.TNullable(cidl.TText()), nil)},
			NavigationProps: []cidl.NavigationProperty{
				nav("riders", "Rider", cidl.NavigationPropertyKind{Kind: cidl.OneToMany, ColumnReference: "horse_id"}),
			},
		},
		"Rider": {
			Name:       "Rider",
			PrimaryKey: idPK(),
			Columns: []cidl.D1Column{
				col("nickname", cidl.TNullable(cidl.TText()), nil),
				col("horse_id", cidl.TInteger(), strp("Horse")),
			},
		},
	}

	rows := []Row{
		{"id": int64(1), "name": "Black Beauty", "riders.id": int64(1), "riders.nickname": "Alice", "riders.horse_id": int64(1)},
		{"id": int64(1), "name": "Black Beauty", "riders.id": int64(2), "riders.nickname": "Bob", "riders.horse_id": int64(1)},
	}

	it := tree(map[string]*cidl.IncludeTree{"riders": nil})
	result, err := MapRows("Horse", rows, it, meta)
	require.NoError(t, err)
	require.Len(t, result, 1)

	ridersVal, _ := result[0].Get("riders")
	riders, ok := ridersVal.([]any)
	require.True(t, ok)
	assert.Len(t, riders, 2)
}

func TestMapRowsManyToMany(t *testing.T) {
	meta := ModelMeta{
		"Student": {
			Name:       "Student",
			PrimaryKey: idPK(),
			Columns:    []cidl.D1Column{col("name", cidl.TNullable(cidl.TText()), nil)},
			NavigationProps: []cidl.NavigationProperty{
				nav("courses", "Course", cidl.NavigationPropertyKind{Kind: cidl.ManyToMany}),
			},
		},
		"Course": {Name: "Course", PrimaryKey: idPK(), Columns: []cidl.D1Column{col("title", cidl.TText(), nil)}},
	}

	rows := []Row{
		{"id": int64(1), "name": "Alice", "courses.id": int64(1), "courses.title": "Math"},
		{"id": int64(1), "name": "Alice", "courses.id": int64(2), "courses.title": "History"},
	}

	it := tree(map[string]*cidl.IncludeTree{"courses": nil})
	result, err := MapRows("Student", rows, it, meta)
	require.NoError(t, err)
	require.Len(t, result, 1)

	coursesVal, _ := result[0].Get("courses")
	courses, ok := coursesVal.([]any)
	require.True(t, ok)
	assert.Len(t, courses, 2)
}

func TestMapRowsUnknownModel(t *testing.T) {
	_, err := MapRows("Ghost", nil, nil, ModelMeta{})
	assert.Error(t, err)
}
