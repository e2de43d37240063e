package geomhash

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestValidPrecision(t *testing.T) {
	assert.True(t, ValidPrecision(0.01))
	assert.True(t, ValidPrecision(1))
	assert.True(t, ValidPrecision(0.0000001))
	assert.False(t, ValidPrecision(0.5))
	assert.False(t, ValidPrecision(0))
	assert.False(t, ValidPrecision(-0.01))
}

func TestPrecisionBoundary(t *testing.T) {
	a := orb.Point{0, 0}

	// within the snap distance: equal
	assert.True(t, Equal(a, orb.Point{0, 0.004}, 0.01))
	// beyond the snap distance: unequal
	assert.False(t, Equal(a, orb.Point{0, 0.02}, 0.01))
	// a finer precision distinguishes what a coarser one cannot
	assert.False(t, Equal(a, orb.Point{0, 0.004}, 0.001))
}

func TestNilGeometries(t *testing.T) {
	assert.True(t, Equal(nil, nil, 0.01))
	assert.False(t, Equal(orb.Point{0, 0}, nil, 0.01))
	assert.False(t, Equal(nil, orb.Point{0, 0}, 0.01))
	assert.Equal(t, "", Fingerprint(nil, 0.01))
}

func TestLineDirectionNormalized(t *testing.T) {
	forward := orb.LineString{{0, 0}, {1, 1}, {2, 0}}
	backward := orb.LineString{{2, 0}, {1, 1}, {0, 0}}
	assert.True(t, Equal(forward, backward, 0.01))

	other := orb.LineString{{0, 0}, {1, 2}, {2, 0}}
	assert.False(t, Equal(forward, other, 0.01))
}

func TestRingRotationAndOrientation(t *testing.T) {
	base := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	rotated := orb.Polygon{{{10, 10}, {0, 10}, {0, 0}, {10, 0}, {10, 10}}}
	reversed := orb.Polygon{{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}}

	assert.True(t, Equal(base, rotated, 0.01))
	assert.True(t, Equal(base, reversed, 0.01))

	bigger := orb.Polygon{{{0, 0}, {11, 0}, {11, 10}, {0, 10}, {0, 0}}}
	assert.False(t, Equal(base, bigger, 0.01))
}

func TestPolygonWithHole(t *testing.T) {
	withHole := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}
	sameHoleRotated := orb.Polygon{
		{{10, 0}, {10, 10}, {0, 10}, {0, 0}, {10, 0}},
		{{6, 6}, {4, 6}, {4, 4}, {6, 4}, {6, 6}},
	}
	solid := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}

	assert.True(t, Equal(withHole, sameHoleRotated, 0.01))
	assert.False(t, Equal(withHole, solid, 0.01))
}

func TestMultipartOrderNormalized(t *testing.T) {
	a := orb.MultiPoint{{0, 0}, {5, 5}}
	b := orb.MultiPoint{{5, 5}, {0, 0}}
	assert.True(t, Equal(a, b, 0.01))

	lines1 := orb.MultiLineString{{{0, 0}, {1, 0}}, {{5, 5}, {6, 5}}}
	lines2 := orb.MultiLineString{{{6, 5}, {5, 5}}, {{0, 0}, {1, 0}}}
	assert.True(t, Equal(lines1, lines2, 0.01))
}

func TestDistinctTypesNeverEqual(t *testing.T) {
	pt := orb.Point{1, 1}
	mp := orb.MultiPoint{{1, 1}}
	assert.False(t, Equal(pt, mp, 0.01))
}

func TestFingerprintStable(t *testing.T) {
	poly := orb.Polygon{{{0, 0}, {10.004, 0}, {10, 10}, {0, 10}, {0, 0}}}
	first := Fingerprint(poly, 0.01)
	second := Fingerprint(poly, 0.01)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}
