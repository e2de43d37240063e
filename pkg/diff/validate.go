package diff

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gisdiff/changedet/pkg/domain"
	"github.com/gisdiff/changedet/pkg/geomhash"
)

// comparison holds the validated, indexed view of one Diff invocation
type comparison struct {
	a, b       *domain.Dataset
	primaryKey string
	spatial    bool
	precision  float64

	// attrFields is the comparison projection: fields compared value by
	// value, excluding the primary key and the geometry field
	attrFields []string

	idxA, idxB map[string]domain.Record
}

// effectiveFields returns a dataset's field names minus generated
// area/length fields, in schema order
func effectiveFields(ds *domain.Dataset) []string {
	out := make([]string, 0, len(ds.Schema.Fields))
	for _, f := range ds.Schema.Fields {
		if domain.IsGeneratedField(f.Name) {
			continue
		}
		out = append(out, f.Name)
	}
	return out
}

func containsFold(list []string, name string) bool {
	for _, f := range list {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// validate runs the pre-checks for Diff and builds the key indexes. Any
// failure aborts the comparison with no partial output.
func (d *Differ) validate(a, b *domain.Dataset, primaryKey string, fields, ignoreFields []string) (*comparison, error) {
	c := &comparison{
		a:          a,
		b:          b,
		primaryKey: primaryKey,
		precision:  d.precision,
	}

	switch {
	case a.Spatial() && !b.Spatial():
		return nil, fmt.Errorf("cannot compare spatial and non-spatial sources - spatial component "+
			"found in source %s but not in source %s: %w", d.labelA, d.labelB, domain.ErrSchemaMismatch)
	case b.Spatial() && !a.Spatial():
		return nil, fmt.Errorf("cannot compare spatial and non-spatial sources - spatial component "+
			"found in source %s but not in source %s: %w", d.labelB, d.labelA, domain.ErrSchemaMismatch)
	}
	c.spatial = a.Spatial()

	if !geomhash.ValidPrecision(c.precision) {
		return nil, fmt.Errorf("precision %v is not supported, use one of %v: %w",
			c.precision, geomhash.Precisions, domain.ErrConfiguration)
	}

	if containsFold(ignoreFields, primaryKey) {
		return nil, fmt.Errorf("field %s cannot be used as a primary key: %w",
			primaryKey, domain.ErrConfiguration)
	}

	// fields common to both sources, minus generated area/length fields,
	// in source-a schema order
	fieldsB := make(map[string]bool)
	for _, f := range effectiveFields(b) {
		fieldsB[f] = true
	}
	var common []string
	commonSet := make(map[string]bool)
	for _, f := range effectiveFields(a) {
		if fieldsB[f] {
			common = append(common, f)
			commonSet[f] = true
		}
	}

	if !commonSet[primaryKey] {
		return nil, fmt.Errorf("primary key %s must be present in both datasets: %w",
			primaryKey, domain.ErrConfiguration)
	}

	candidates := common
	if len(fields) > 0 {
		for _, f := range fields {
			if !commonSet[f] && f != a.Schema.GeometryField {
				return nil, fmt.Errorf("provided fields are not common to both datasets: %w",
					domain.ErrConfiguration)
			}
		}
		candidates = fields
	}

	for _, f := range candidates {
		if f == primaryKey || f == a.Schema.GeometryField || f == b.Schema.GeometryField {
			continue
		}
		if containsFold(ignoreFields, f) {
			d.logger.Warn("field is ignored and will not be included in results", zap.String("field", f))
			continue
		}
		c.attrFields = append(c.attrFields, f)
	}

	// a spatial comparison can run on geometry alone; a non-spatial one
	// needs at least one attribute beyond the primary key
	if len(c.attrFields) == 0 && !c.spatial {
		return nil, fmt.Errorf("datasets have no fields in common, cannot compare: %w",
			domain.ErrConfiguration)
	}

	for _, f := range append([]string{primaryKey}, c.attrFields...) {
		typeA, _ := a.Schema.FieldType(f)
		typeB, _ := b.Schema.FieldType(f)
		if typeA != typeB {
			return nil, fmt.Errorf("field types do not match. %s: (%s, %s): %w",
				f, typeA, typeB, domain.ErrSchemaMismatch)
		}
	}

	if c.spatial {
		typesA := a.GeometryTypes()
		typesB := b.GeometryTypes()
		if strings.Join(typesA, ",") != strings.Join(typesB, ",") {
			return nil, fmt.Errorf("geometry types %s and %s are not equivalent: %w",
				strings.Join(typesA, ","), strings.Join(typesB, ","), domain.ErrSchemaMismatch)
		}
		if a.Schema.CRS.Code != b.Schema.CRS.Code {
			return nil, fmt.Errorf("coordinate reference systems are not equivalent: %w",
				domain.ErrSchemaMismatch)
		}
	}

	var err error
	if c.idxA, err = a.IndexByKey(primaryKey); err != nil {
		return nil, fmt.Errorf("duplicate values exist for primary key %s in source %s, consider "+
			"using another primary key or pre-processing to remove duplicates: %w",
			primaryKey, d.labelA, err)
	}
	if c.idxB, err = b.IndexByKey(primaryKey); err != nil {
		return nil, fmt.Errorf("duplicate values exist for primary key %s in source %s, consider "+
			"using another primary key or pre-processing to remove duplicates: %w",
			primaryKey, d.labelB, err)
	}

	return c, nil
}
