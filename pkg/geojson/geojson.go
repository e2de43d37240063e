// Package geojson loads and saves datasets as GeoJSON feature
// collections, inferring an explicit schema from feature properties.
package geojson

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/paulmach/orb/geojson"

	"github.com/gisdiff/changedet/pkg/domain"
)

// GeometryFieldName is the geometry field name given to loaded datasets
const GeometryFieldName = "geometry"

// DefaultCRS is assumed for GeoJSON input (the format mandates WGS84)
var DefaultCRS = domain.CRS{Code: "EPSG:4326", Geographic: true}

// Option configures loading
type Option func(*loader)

type loader struct {
	crs domain.CRS
}

// WithCRS overrides the CRS recorded on the loaded dataset, for callers
// whose data is known to be in a projected system despite the format
func WithCRS(code string, geographic bool) Option {
	return func(l *loader) {
		l.crs = domain.CRS{Code: code, Geographic: geographic}
	}
}

// Load reads a GeoJSON feature collection from a file
func Load(path string, options ...Option) (*domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(data, path, options...)
}

// Decode parses a GeoJSON feature collection into a dataset with an
// inferred schema. Property types must be consistent across features;
// properties missing from a feature become nulls.
func Decode(data []byte, name string, options ...Option) (*domain.Dataset, error) {
	l := &loader{crs: DefaultCRS}
	for _, option := range options {
		option(l)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	fields, err := inferSchema(fc, name)
	if err != nil {
		return nil, err
	}

	ds := domain.NewDataset(name, domain.Schema{
		Fields:        fields,
		GeometryField: GeometryFieldName,
		CRS:           l.crs,
	})
	for _, feature := range fc.Features {
		rec := make(domain.Record, len(fields)+1)
		for _, f := range fields {
			value, ok := feature.Properties[f.Name]
			if !ok {
				value = nil
			}
			rec[f.Name] = value
		}
		if feature.Geometry != nil {
			rec[GeometryFieldName] = feature.Geometry
		} else {
			rec[GeometryFieldName] = nil
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// inferSchema derives field descriptors from the union of feature
// properties, sorted by name for a deterministic field order
func inferSchema(fc *geojson.FeatureCollection, name string) ([]domain.Field, error) {
	types := make(map[string]domain.FieldType)
	allKeys := make(map[string]bool)
	for _, feature := range fc.Features {
		for key, value := range feature.Properties {
			allKeys[key] = true
			var t domain.FieldType
			switch value.(type) {
			case nil:
				continue
			case string:
				t = domain.FieldString
			case bool:
				t = domain.FieldBool
			case float64:
				t = domain.FieldFloat
			case int, int64:
				t = domain.FieldInt
			default:
				return nil, fmt.Errorf("field %s in %s has unsupported value type %T: %w",
					key, name, value, domain.ErrSchemaMismatch)
			}
			if seen, ok := types[key]; ok && seen != t {
				return nil, fmt.Errorf("field %s in %s has mixed value types (%s, %s): %w",
					key, name, seen, t, domain.ErrSchemaMismatch)
			}
			types[key] = t
		}
	}
	// properties that never carry a value still need a column
	for key := range allKeys {
		if _, ok := types[key]; !ok {
			types[key] = domain.FieldString
		}
	}

	names := make([]string, 0, len(types))
	for key := range types {
		names = append(names, key)
	}
	sort.Strings(names)

	fields := make([]domain.Field, 0, len(names))
	for _, key := range names {
		fields = append(fields, domain.Field{Name: key, Type: types[key]})
	}
	return fields, nil
}

type featureDoc struct {
	Type       string             `json:"type"`
	Geometry   *geojson.Geometry  `json:"geometry"`
	Properties geojson.Properties `json:"properties"`
}

type collectionDoc struct {
	Type     string       `json:"type"`
	Features []featureDoc `json:"features"`
}

// Encode renders a dataset as a GeoJSON feature collection. Null and
// missing geometries become "geometry": null.
func Encode(ds *domain.Dataset) ([]byte, error) {
	doc := collectionDoc{
		Type:     "FeatureCollection",
		Features: make([]featureDoc, 0, len(ds.Records)),
	}
	for _, rec := range ds.Records {
		feature := featureDoc{
			Type:       "Feature",
			Properties: make(geojson.Properties, len(ds.Schema.Fields)),
		}
		if g := ds.Geometry(rec); g != nil {
			feature.Geometry = geojson.NewGeometry(g)
		}
		for _, f := range ds.Schema.Fields {
			feature.Properties[f.Name] = rec[f.Name]
		}
		doc.Features = append(doc.Features, feature)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ds.Name, err)
	}
	return data, nil
}

// Save writes a dataset to a GeoJSON file
func Save(ds *domain.Dataset, path string) error {
	data, err := Encode(ds)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
