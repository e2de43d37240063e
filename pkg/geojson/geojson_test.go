package geojson

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisdiff/changedet/pkg/domain"
)

const sampleCollection = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [1, 2]},
			"properties": {"id": 1, "name": "alpha", "active": true}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [3, 4]},
			"properties": {"id": 2, "name": "beta", "active": false, "extra": "only here"}
		}
	]
}`

func TestDecode(t *testing.T) {
	ds, err := Decode([]byte(sampleCollection), "sample")
	require.NoError(t, err)

	assert.True(t, ds.Spatial())
	assert.Equal(t, DefaultCRS, ds.Schema.CRS)
	// inferred fields are sorted by name
	assert.Equal(t, []string{"active", "extra", "id", "name"}, ds.Schema.FieldNames())

	idType, _ := ds.Schema.FieldType("id")
	assert.Equal(t, domain.FieldFloat, idType) // JSON numbers decode as floats
	activeType, _ := ds.Schema.FieldType("active")
	assert.Equal(t, domain.FieldBool, activeType)

	require.Len(t, ds.Records, 2)
	assert.Equal(t, orb.Point{1, 2}, ds.Records[0]["geometry"])
	assert.Equal(t, "alpha", ds.Records[0]["name"])
	// property absent from a feature becomes a null
	assert.Nil(t, ds.Records[0]["extra"])
	assert.Equal(t, "only here", ds.Records[1]["extra"])
}

func TestDecodeNullGeometry(t *testing.T) {
	data := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": null, "properties": {"id": 1}}
		]
	}`
	ds, err := Decode([]byte(data), "nulls")
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Nil(t, ds.Geometry(ds.Records[0]))
}

func TestDecodeMixedTypes(t *testing.T) {
	data := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": null, "properties": {"v": "text"}},
			{"type": "Feature", "geometry": null, "properties": {"v": 12}}
		]
	}`
	_, err := Decode([]byte(data), "mixed")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestWithCRS(t *testing.T) {
	ds, err := Decode([]byte(sampleCollection), "sample", WithCRS("EPSG:3005", false))
	require.NoError(t, err)
	assert.Equal(t, domain.CRS{Code: "EPSG:3005", Geographic: false}, ds.Schema.CRS)
}

func TestEncodeRoundTrip(t *testing.T) {
	ds, err := Decode([]byte(sampleCollection), "sample")
	require.NoError(t, err)

	encoded, err := Encode(ds)
	require.NoError(t, err)

	back, err := Decode(encoded, "roundtrip")
	require.NoError(t, err)
	assert.Equal(t, ds.Schema.FieldNames(), back.Schema.FieldNames())
	require.Len(t, back.Records, 2)
	assert.Equal(t, orb.Point{1, 2}, back.Records[0]["geometry"])
	assert.Equal(t, "beta", back.Records[1]["name"])
}

func TestEncodeNullGeometry(t *testing.T) {
	ds := domain.NewDataset("x", domain.Schema{
		Fields:        []domain.Field{{Name: "id", Type: domain.FieldFloat}},
		GeometryField: "geometry",
		CRS:           DefaultCRS,
	})
	ds.Records = append(ds.Records, domain.Record{"id": 1.0, "geometry": nil})

	encoded, err := Encode(ds)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"geometry":null`)
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sampleCollection), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 2)

	out := filepath.Join(dir, "out.geojson")
	require.NoError(t, Save(ds, out))
	back, err := Load(out)
	require.NoError(t, err)
	assert.Len(t, back.Records, 2)
}
