package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
)

// Record represents one row of a dataset
type Record map[string]interface{}

// FieldType declares the scalar type of a dataset field
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldFloat  FieldType = "float"
	FieldBool   FieldType = "bool"
	FieldTime   FieldType = "time"
)

// Field describes one attribute column: its name and declared type
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// CRS identifies a coordinate reference system. Equality is by Code;
// Geographic marks degree-based systems (affects default precision).
type CRS struct {
	Code       string `json:"code"`
	Geographic bool   `json:"geographic"`
}

// Schema describes the shape of a dataset: its attribute fields, the name
// of the geometry field (empty for non-spatial data), and the CRS.
type Schema struct {
	Fields        []Field `json:"fields"`
	GeometryField string  `json:"geometry_field,omitempty"`
	CRS           CRS     `json:"crs,omitempty"`
}

// Spatial reports whether the schema carries a geometry field
func (s Schema) Spatial() bool {
	return s.GeometryField != ""
}

// HasField reports whether a field with the given name is declared
func (s Schema) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// FieldType returns the declared type of a field, if present
func (s Schema) FieldType(name string) (FieldType, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
}

// FieldNames returns the declared field names in schema order
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Copy returns a schema with its own fields slice
func (s Schema) Copy() Schema {
	out := s
	out.Fields = make([]Field, len(s.Fields))
	copy(out.Fields, s.Fields)
	return out
}

// Dataset is an ordered collection of records sharing one schema
type Dataset struct {
	Name    string
	Schema  Schema
	Records []Record
}

// NewDataset creates an empty dataset with the given name and schema
func NewDataset(name string, schema Schema) *Dataset {
	return &Dataset{
		Name:    name,
		Schema:  schema,
		Records: []Record{},
	}
}

// Spatial reports whether the dataset carries geometries
func (d *Dataset) Spatial() bool {
	return d.Schema.Spatial()
}

// Geometry returns the geometry value of a record, or nil for null/missing
// geometries and non-spatial datasets
func (d *Dataset) Geometry(rec Record) orb.Geometry {
	if !d.Spatial() {
		return nil
	}
	g, ok := rec[d.Schema.GeometryField].(orb.Geometry)
	if !ok {
		return nil
	}
	return g
}

// CopyRecord returns a record sharing no storage with the original.
// Geometries are cloned, scalar values are copied by value.
func CopyRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		if g, ok := v.(orb.Geometry); ok && g != nil {
			out[k] = orb.Clone(g)
			continue
		}
		out[k] = v
	}
	return out
}

// Copy returns a deep copy of the dataset. Callers can mutate the copy
// without affecting the original.
func (d *Dataset) Copy() *Dataset {
	out := &Dataset{
		Name:    d.Name,
		Schema:  d.Schema.Copy(),
		Records: make([]Record, len(d.Records)),
	}
	for i, rec := range d.Records {
		out.Records[i] = CopyRecord(rec)
	}
	return out
}

// GeometryTypes returns the sorted, upper-case set of geometry type names
// present in the dataset, ignoring null geometries (e.g. [POINT] or
// [MULTIPOINT POINT], sorted by length then value)
func (d *Dataset) GeometryTypes() []string {
	seen := make(map[string]bool)
	for _, rec := range d.Records {
		g := d.Geometry(rec)
		if g == nil {
			continue
		}
		seen[strings.ToUpper(string(g.GeoJSONType()))] = true
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if len(types[i]) != len(types[j]) {
			return len(types[i]) < len(types[j])
		}
		return types[i] < types[j]
	})
	return types
}

// IndexByKey builds a map from the canonical string form of each record's
// key value to the record. Fails with ErrDuplicateKey if two records share
// a key value.
func (d *Dataset) IndexByKey(field string) (map[string]Record, error) {
	idx := make(map[string]Record, len(d.Records))
	for _, rec := range d.Records {
		key := FormatValue(rec[field])
		if _, exists := idx[key]; exists {
			return nil, fmt.Errorf("duplicate value %q for key %s: %w", key, field, ErrDuplicateKey)
		}
		idx[key] = rec
	}
	return idx, nil
}

// KeyOrder returns the canonical string form of each record's key value,
// in record order
func (d *Dataset) KeyOrder(field string) []string {
	keys := make([]string, len(d.Records))
	for i, rec := range d.Records {
		keys[i] = FormatValue(rec[field])
	}
	return keys
}

// PromoteToMulti returns a copy of the dataset with all singlepart
// geometries promoted to their multipart variants. No-op for non-spatial
// datasets.
func (d *Dataset) PromoteToMulti() *Dataset {
	out := d.Copy()
	if !out.Spatial() {
		return out
	}
	for _, rec := range out.Records {
		g := out.Geometry(rec)
		switch v := g.(type) {
		case orb.Point:
			rec[out.Schema.GeometryField] = orb.MultiPoint{v}
		case orb.LineString:
			rec[out.Schema.GeometryField] = orb.MultiLineString{v}
		case orb.Polygon:
			rec[out.Schema.GeometryField] = orb.MultiPolygon{v}
		}
	}
	return out
}

// MixedMulti reports whether the dataset mixes a singlepart geometry type
// with its multipart variant (e.g. POINT alongside MULTIPOINT)
func (d *Dataset) MixedMulti() bool {
	types := d.GeometryTypes()
	if len(types) < 2 {
		return false
	}
	for _, t := range types {
		for _, u := range types {
			if u == "MULTI"+t {
				return true
			}
		}
	}
	return false
}
