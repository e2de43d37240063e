package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointSchema() Schema {
	return Schema{
		Fields: []Field{
			{Name: "id", Type: FieldInt},
			{Name: "name", Type: FieldString},
		},
		GeometryField: "geometry",
		CRS:           CRS{Code: "EPSG:3005"},
	}
}

func TestCopyIsIndependent(t *testing.T) {
	ds := NewDataset("src", pointSchema())
	ds.Records = append(ds.Records, Record{
		"id":       1,
		"name":     "alpha",
		"geometry": orb.Point{1, 2},
	})

	clone := ds.Copy()
	clone.Records[0]["name"] = "mutated"
	clone.Records[0]["geometry"] = orb.Point{9, 9}
	clone.Schema.Fields[0].Name = "renamed"

	assert.Equal(t, "alpha", ds.Records[0]["name"])
	assert.Equal(t, orb.Point{1, 2}, ds.Records[0]["geometry"])
	assert.Equal(t, "id", ds.Schema.Fields[0].Name)
}

func TestGeometryNilHandling(t *testing.T) {
	ds := NewDataset("src", pointSchema())
	rec := Record{"id": 1, "name": "x", "geometry": nil}
	assert.Nil(t, ds.Geometry(rec))

	nonSpatial := NewDataset("flat", Schema{Fields: []Field{{Name: "id", Type: FieldInt}}})
	assert.Nil(t, nonSpatial.Geometry(Record{"id": 1}))
	assert.False(t, nonSpatial.Spatial())
}

func TestGeometryTypes(t *testing.T) {
	ds := NewDataset("src", pointSchema())
	ds.Records = append(ds.Records,
		Record{"id": 1, "geometry": orb.MultiPoint{{0, 0}}},
		Record{"id": 2, "geometry": orb.Point{1, 1}},
		Record{"id": 3, "geometry": nil},
	)
	assert.Equal(t, []string{"POINT", "MULTIPOINT"}, ds.GeometryTypes())
	assert.True(t, ds.MixedMulti())
}

func TestPromoteToMulti(t *testing.T) {
	ds := NewDataset("src", pointSchema())
	ds.Records = append(ds.Records,
		Record{"id": 1, "geometry": orb.Point{1, 1}},
		Record{"id": 2, "geometry": orb.MultiPoint{{2, 2}}},
	)
	promoted := ds.PromoteToMulti()
	assert.Equal(t, []string{"MULTIPOINT"}, promoted.GeometryTypes())
	assert.False(t, promoted.MixedMulti())
	// original untouched
	assert.Equal(t, orb.Point{1, 1}, ds.Records[0]["geometry"])
}

func TestIndexByKey(t *testing.T) {
	ds := NewDataset("src", pointSchema())
	ds.Records = append(ds.Records,
		Record{"id": 1, "name": "a"},
		Record{"id": 2, "name": "b"},
	)
	idx, err := ds.IndexByKey("id")
	require.NoError(t, err)
	assert.Len(t, idx, 2)
	assert.Equal(t, "b", idx["2"]["name"])
	assert.Equal(t, []string{"1", "2"}, ds.KeyOrder("id"))
}

func TestIndexByKeyDuplicate(t *testing.T) {
	ds := NewDataset("src", pointSchema())
	ds.Records = append(ds.Records,
		Record{"id": 1, "name": "a"},
		Record{"id": 1, "name": "b"},
	)
	_, err := ds.IndexByKey("id")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}
