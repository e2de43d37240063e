// Package diff aligns two datasets by primary key and classifies every
// record as added, deleted, unchanged or modified, splitting modifications
// into attribute-only, geometry-only and both. Each output bucket
// preserves the full schema of its authoritative source.
package diff

import (
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/gisdiff/changedet/pkg/domain"
	"github.com/gisdiff/changedet/pkg/geomhash"
)

// Differ compares two datasets. One Differ can run any number of
// comparisons; no state is shared between invocations.
type Differ struct {
	logger    *zap.Logger
	precision float64
	labelA    string
	labelB    string
}

// Option configures a Differ
type Option func(*Differ)

// WithLogger sets the logger used for warnings
func WithLogger(logger *zap.Logger) Option {
	return func(d *Differ) {
		d.logger = logger
	}
}

// WithPrecision sets the geometry snap distance used for geometry
// equality (default 0.01)
func WithPrecision(precision float64) Option {
	return func(d *Differ) {
		d.precision = precision
	}
}

// WithLabels sets the source labels used in messages and in the suffixed
// column names of the attribute-diff buckets (defaults "a" and "b")
func WithLabels(labelA, labelB string) Option {
	return func(d *Differ) {
		d.labelA = labelA
		d.labelB = labelB
	}
}

// NewDiffer creates a Differ
func NewDiffer(options ...Option) *Differ {
	d := &Differ{
		logger:    zap.NewNop(),
		precision: geomhash.DefaultPrecision,
		labelA:    "a",
		labelB:    "b",
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Diff compares dataset a (the earlier state) against dataset b (the
// current state). Records are aligned on primaryKey; fields restricts the
// compared attributes (default: all common fields); ignoreFields excludes
// attributes from comparison. Neither input is modified.
func (d *Differ) Diff(a, b *domain.Dataset, primaryKey string, fields, ignoreFields []string) (*Result, error) {
	c, err := d.validate(a, b, primaryKey, fields, ignoreFields)
	if err != nil {
		return nil, err
	}

	var (
		newKeys       []string
		deletedKeys   []string
		unchangedKeys []string
		attrKeys      []string
		geomKeys      []string
		bothKeys      []string
	)
	changedFields := make(map[string][]string)

	// matched keys and deletions follow source-a record order
	for _, k := range a.KeyOrder(primaryKey) {
		recA := c.idxA[k]
		recB, matched := c.idxB[k]
		if !matched {
			deletedKeys = append(deletedKeys, k)
			continue
		}

		var changed []string
		for _, f := range c.attrFields {
			if !domain.ValuesEqual(recA[f], recB[f]) {
				changed = append(changed, f)
			}
		}
		geomModified := false
		if c.spatial {
			geomModified = !geomhash.Equal(a.Geometry(recA), b.Geometry(recB), c.precision)
		}

		switch {
		case len(changed) == 0 && !geomModified:
			unchangedKeys = append(unchangedKeys, k)
		case len(changed) > 0 && !geomModified:
			attrKeys = append(attrKeys, k)
			changedFields[k] = changed
		case len(changed) == 0 && geomModified:
			geomKeys = append(geomKeys, k)
		default:
			bothKeys = append(bothKeys, k)
			changedFields[k] = changed
		}
	}

	// additions follow source-b record order
	for _, k := range b.KeyOrder(primaryKey) {
		if _, matched := c.idxA[k]; !matched {
			newKeys = append(newKeys, k)
		}
	}

	diffCols := diffColumns(c.attrFields, changedFields)
	return &Result{
		New:          pickRecords(BucketNew, b, c.idxB, newKeys),
		Deleted:      pickRecords(BucketDeleted, a, c.idxA, deletedKeys),
		Unchanged:    pickRecords(BucketUnchanged, a, c.idxA, unchangedKeys),
		ModifiedAttr: d.buildAttrDiff(BucketModifiedAttr, c, attrKeys, changedFields, diffCols),
		ModifiedGeom: pickRecords(BucketModifiedGeom, b, c.idxB, geomKeys),
		ModifiedBoth: d.buildAttrDiff(BucketModifiedBoth, c, bothKeys, changedFields, diffCols),
	}, nil
}

// pickRecords assembles a bucket carrying the full original schema of its
// source, copying the record for each key
func pickRecords(name string, src *domain.Dataset, idx map[string]domain.Record, keys []string) *domain.Dataset {
	out := domain.NewDataset(name, src.Schema.Copy())
	for _, k := range keys {
		out.Records = append(out.Records, domain.CopyRecord(idx[k]))
	}
	return out
}

// diffColumns returns the union of changed fields across all
// attribute-modified rows, in comparison-projection order. Both
// attribute-diff buckets share this column set.
func diffColumns(attrFields []string, changedFields map[string][]string) []string {
	changed := make(map[string]bool)
	for _, fields := range changedFields {
		for _, f := range fields {
			changed[f] = true
		}
	}
	var cols []string
	for _, f := range attrFields {
		if changed[f] {
			cols = append(cols, f)
		}
	}
	return cols
}

// buildAttrDiff assembles an attribute-diff bucket: primary key, a
// suffixed pair of columns per differing field (values present only on
// rows where that field actually differs), and the current geometry
func (d *Differ) buildAttrDiff(name string, c *comparison, keys []string, changedFields map[string][]string, diffCols []string) *domain.Dataset {
	schema := domain.Schema{CRS: c.b.Schema.CRS}
	pkType, _ := c.a.Schema.FieldType(c.primaryKey)
	schema.Fields = append(schema.Fields, domain.Field{Name: c.primaryKey, Type: pkType})
	for _, f := range diffCols {
		fieldType, _ := c.a.Schema.FieldType(f)
		schema.Fields = append(schema.Fields, domain.Field{Name: f + "_" + d.labelA, Type: fieldType})
		schema.Fields = append(schema.Fields, domain.Field{Name: f + "_" + d.labelB, Type: fieldType})
	}
	if c.spatial {
		schema.GeometryField = c.b.Schema.GeometryField
	}

	out := domain.NewDataset(name, schema)
	for _, k := range keys {
		recA := c.idxA[k]
		recB := c.idxB[k]
		rec := domain.Record{c.primaryKey: recB[c.primaryKey]}
		rowChanged := make(map[string]bool, len(changedFields[k]))
		for _, f := range changedFields[k] {
			rowChanged[f] = true
		}
		for _, f := range diffCols {
			if rowChanged[f] {
				rec[f+"_"+d.labelA] = recA[f]
				rec[f+"_"+d.labelB] = recB[f]
			} else {
				rec[f+"_"+d.labelA] = nil
				rec[f+"_"+d.labelB] = nil
			}
		}
		if c.spatial {
			if g := c.b.Geometry(recB); g != nil {
				rec[schema.GeometryField] = orb.Clone(g)
			} else {
				rec[schema.GeometryField] = nil
			}
		}
		out.Records = append(out.Records, rec)
	}
	return out
}
