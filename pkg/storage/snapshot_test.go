package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisdiff/changedet/pkg/domain"
)

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf))

	header, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, MagicBytes, string(header.Magic[:]))
	assert.Equal(t, uint8(FormatVersion), header.Version)
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("NOPE0000")
	_, err := ReadHeader(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file format")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	spatial := domain.NewDataset("NEW", domain.Schema{
		Fields: []domain.Field{
			{Name: "id", Type: domain.FieldString},
			{Name: "score", Type: domain.FieldFloat},
		},
		GeometryField: "geometry",
		CRS:           domain.CRS{Code: "EPSG:3005"},
	})
	spatial.Records = append(spatial.Records,
		domain.Record{"id": "a1", "score": 0.5, "geometry": orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}},
		domain.Record{"id": "a2", "score": 1.5, "geometry": nil},
	)

	flat := domain.NewDataset("DELETED", domain.Schema{
		Fields: []domain.Field{
			{Name: "id", Type: domain.FieldString},
			{Name: "ok", Type: domain.FieldBool},
		},
	})
	flat.Records = append(flat.Records, domain.Record{"id": "b1", "ok": true})

	path := filepath.Join(t.TempDir(), "diff"+FileExtension)
	require.NoError(t, Save(path, spatial, flat))

	layers, err := Load(path)
	require.NoError(t, err)
	require.Len(t, layers, 2)

	// order and names survive
	assert.Equal(t, "NEW", layers[0].Name)
	assert.Equal(t, "DELETED", layers[1].Name)

	got := layers[0]
	assert.Equal(t, spatial.Schema.FieldNames(), got.Schema.FieldNames())
	assert.Equal(t, "EPSG:3005", got.Schema.CRS.Code)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "a1", got.Records[0]["id"])
	assert.Equal(t, 0.5, got.Records[0]["score"])
	assert.Equal(t,
		orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}},
		got.Records[0]["geometry"])
	assert.Nil(t, got.Geometry(got.Records[1]))

	assert.False(t, layers[1].Spatial())
	assert.Equal(t, true, layers[1].Records[0]["ok"])
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage"+FileExtension)
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot at all"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
