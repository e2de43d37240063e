// Package geomhash produces canonical, precision-tolerant fingerprints of
// geometries. Two geometries fingerprint equal iff they describe the same
// shape once coordinates are snapped to the configured precision grid:
// ring orientation, ring start vertex, line direction and multipart
// ordering are all normalized away.
package geomhash

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// gridPoint is a coordinate snapped to integer multiples of the precision
type gridPoint struct {
	X, Y int64
}

func snapPoint(p orb.Point, precision float64) gridPoint {
	return gridPoint{
		X: int64(math.Round(p[0] / precision)),
		Y: int64(math.Round(p[1] / precision)),
	}
}

// snapLine snaps every vertex and collapses consecutive duplicates that
// snapping may have produced
func snapLine(pts []orb.Point, precision float64) []gridPoint {
	out := make([]gridPoint, 0, len(pts))
	for _, p := range pts {
		gp := snapPoint(p, precision)
		if n := len(out); n > 0 && out[n-1] == gp {
			continue
		}
		out = append(out, gp)
	}
	return out
}

func pointLess(a, b gridPoint) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func lineLess(a, b []gridPoint) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return pointLess(a[i], b[i])
		}
	}
	return len(a) < len(b)
}

func reverseLine(pts []gridPoint) []gridPoint {
	out := make([]gridPoint, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// canonicalLine picks the lexicographically smaller of a line and its
// reversal, so direction does not affect the fingerprint
func canonicalLine(pts []gridPoint) []gridPoint {
	rev := reverseLine(pts)
	if lineLess(rev, pts) {
		return rev
	}
	return pts
}

// canonicalRing normalizes a ring to counter-clockwise orientation and
// rotates it to start at its minimum vertex. Input may carry a closing
// duplicate vertex; the result does not.
func canonicalRing(pts []gridPoint) []gridPoint {
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if len(pts) == 0 {
		return pts
	}

	// shoelace sign; float64 is plenty for the sign of the area
	var area float64
	for i := range pts {
		j := (i + 1) % len(pts)
		area += float64(pts[i].X)*float64(pts[j].Y) - float64(pts[j].X)*float64(pts[i].Y)
	}
	if area < 0 {
		pts = reverseLine(pts)
	}

	min := 0
	for i := range pts {
		if pointLess(pts[i], pts[min]) {
			min = i
		}
	}
	out := make([]gridPoint, 0, len(pts))
	out = append(out, pts[min:]...)
	out = append(out, pts[:min]...)
	return out
}

func renderLine(sb *strings.Builder, pts []gridPoint) {
	sb.WriteByte('(')
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(p.X, 10))
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatInt(p.Y, 10))
	}
	sb.WriteByte(')')
}

func renderLines(sb *strings.Builder, lines [][]gridPoint) {
	sb.WriteByte('(')
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte(',')
		}
		renderLine(sb, l)
	}
	sb.WriteByte(')')
}

func polygonLines(poly orb.Polygon, precision float64) [][]gridPoint {
	rings := make([][]gridPoint, 0, len(poly))
	for _, ring := range poly {
		rings = append(rings, canonicalRing(snapLine(ring, precision)))
	}
	// exterior ring stays first; interior rings sort among themselves
	if len(rings) > 2 {
		holes := rings[1:]
		sort.Slice(holes, func(i, j int) bool { return lineLess(holes[i], holes[j]) })
	}
	return rings
}

func renderPolygon(poly orb.Polygon, precision float64) string {
	var sb strings.Builder
	renderLines(&sb, polygonLines(poly, precision))
	return sb.String()
}

// Fingerprint returns the canonical form of a geometry at the given
// precision. A nil geometry fingerprints to the empty string.
func Fingerprint(g orb.Geometry, precision float64) string {
	if g == nil {
		return ""
	}
	var sb strings.Builder
	switch v := g.(type) {
	case orb.Point:
		sb.WriteString("POINT")
		renderLine(&sb, []gridPoint{snapPoint(v, precision)})
	case orb.MultiPoint:
		pts := make([]gridPoint, 0, len(v))
		for _, p := range v {
			pts = append(pts, snapPoint(p, precision))
		}
		sort.Slice(pts, func(i, j int) bool { return pointLess(pts[i], pts[j]) })
		sb.WriteString("MULTIPOINT")
		renderLine(&sb, pts)
	case orb.LineString:
		sb.WriteString("LINESTRING")
		renderLine(&sb, canonicalLine(snapLine(v, precision)))
	case orb.MultiLineString:
		lines := make([][]gridPoint, 0, len(v))
		for _, ls := range v {
			lines = append(lines, canonicalLine(snapLine(ls, precision)))
		}
		sort.Slice(lines, func(i, j int) bool { return lineLess(lines[i], lines[j]) })
		sb.WriteString("MULTILINESTRING")
		renderLines(&sb, lines)
	case orb.Ring:
		return Fingerprint(orb.Polygon{v}, precision)
	case orb.Polygon:
		sb.WriteString("POLYGON")
		sb.WriteString(renderPolygon(v, precision))
	case orb.MultiPolygon:
		polys := make([]string, 0, len(v))
		for _, p := range v {
			polys = append(polys, renderPolygon(p, precision))
		}
		sort.Strings(polys)
		sb.WriteString("MULTIPOLYGON(")
		sb.WriteString(strings.Join(polys, ","))
		sb.WriteByte(')')
	case orb.Collection:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, Fingerprint(p, precision))
		}
		sb.WriteString("GEOMETRYCOLLECTION(")
		sb.WriteString(strings.Join(parts, ","))
		sb.WriteByte(')')
	case orb.Bound:
		return Fingerprint(v.ToPolygon(), precision)
	}
	return sb.String()
}

// Equal reports whether two geometries are equal within the given
// precision. Two nil geometries are equal; nil vs non-nil are not.
func Equal(a, b orb.Geometry, precision float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return Fingerprint(a, precision) == Fingerprint(b, precision)
}
