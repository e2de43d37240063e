// Package hashkey derives deterministic surrogate keys for datasets that
// lack a reliable natural primary key. The key is a digest of selected
// field values and/or a precision-snapped geometry fingerprint, so two
// loads of the same data always produce the same keys.
package hashkey

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gisdiff/changedet/pkg/domain"
	"github.com/gisdiff/changedet/pkg/geomhash"
)

// hashDelimiter joins the formatted field values fed to the digest
const hashDelimiter = "|"

// KeyConfig controls what goes into the derived key
type KeyConfig struct {
	// Fields are the attribute fields folded into the hash, in order
	Fields []string

	// HashGeometry folds the record's geometry fingerprint into the hash
	HashGeometry bool

	// DropNullGeometry drops records with null geometry instead of
	// failing when HashGeometry is set
	DropNullGeometry bool

	// AllowDuplicates suppresses the uniqueness check on derived keys
	AllowDuplicates bool

	// Precision is the geometry snap distance; zero means the default
	Precision float64
}

// Deriver computes surrogate keys
type Deriver struct {
	logger *zap.Logger
}

// Option configures a Deriver
type Option func(*Deriver)

// WithLogger sets the logger used for warnings
func WithLogger(logger *zap.Logger) Option {
	return func(d *Deriver) {
		d.logger = logger
	}
}

// NewDeriver creates a Deriver
func NewDeriver(options ...Option) *Deriver {
	d := &Deriver{
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// AddHashKey returns a copy of the dataset with a new field holding a hex
// digest of the configured fields and/or geometry fingerprint for each
// record. The input dataset is never modified.
func (d *Deriver) AddHashKey(ds *domain.Dataset, newField string, cfg KeyConfig) (*domain.Dataset, error) {
	precision := cfg.Precision
	if precision == 0 {
		precision = geomhash.DefaultPrecision
	}
	if !geomhash.ValidPrecision(precision) {
		return nil, fmt.Errorf("precision %v is not supported, use one of %v: %w",
			precision, geomhash.Precisions, domain.ErrConfiguration)
	}

	if ds.Schema.HasField(newField) || newField == ds.Schema.GeometryField {
		return nil, fmt.Errorf("field %s is present in input dataset, use some other field name: %w",
			newField, domain.ErrConfiguration)
	}

	if len(cfg.Fields) == 0 && !cfg.HashGeometry {
		return nil, fmt.Errorf("nothing to hash, request geometry hashing and/or fields to hash: %w",
			domain.ErrConfiguration)
	}

	for _, f := range cfg.Fields {
		if domain.IsGeneratedField(f) {
			return nil, fmt.Errorf("cannot hash field %s, hashing on area/length fields is not supported: %w",
				f, domain.ErrConfiguration)
		}
		if !ds.Schema.HasField(f) {
			return nil, fmt.Errorf("field %s is not present in input dataset: %w",
				f, domain.ErrConfiguration)
		}
	}

	if cfg.HashGeometry && !ds.Spatial() {
		return nil, fmt.Errorf("cannot hash geometry, dataset has no geometry field: %w",
			domain.ErrConfiguration)
	}

	// A default precision of 1cm on degree-based data is presumed to be
	// an oversight; an explicitly chosen precision is left alone.
	if cfg.HashGeometry && ds.Schema.CRS.Geographic && precision == geomhash.DefaultPrecision {
		d.logger.Warn("data is projected in degrees but default linear precision specified, adjusting",
			zap.Float64("precision", precision),
			zap.Float64("adjusted", geomhash.GeographicPrecision))
		precision = geomhash.GeographicPrecision
	}

	out := ds.Copy()

	if cfg.HashGeometry {
		kept := make([]domain.Record, 0, len(out.Records))
		nulls := 0
		for _, rec := range out.Records {
			if out.Geometry(rec) == nil {
				nulls++
				continue
			}
			kept = append(kept, rec)
		}
		if nulls > 0 {
			d.logger.Warn("null geometries are present in source", zap.Int("count", nulls))
			if !cfg.DropNullGeometry {
				return nil, fmt.Errorf("cannot reliably hash null geometries, enable dropping them or "+
					"remove nulls from the source dataset before re-processing: %w", domain.ErrNullGeometry)
			}
			d.logger.Warn("dropping null geometries from source", zap.Int("count", nulls))
			out.Records = kept
		}
	}

	seen := make(map[string]bool, len(out.Records))
	for _, rec := range out.Records {
		key := d.hashRecord(out, rec, cfg, precision)
		if seen[key] && !cfg.AllowDuplicates {
			if cfg.HashGeometry && len(cfg.Fields) == 0 {
				return nil, fmt.Errorf("duplicate geometries are present in source, consider adding "+
					"fields to hash or editing data: %w", domain.ErrDuplicateKey)
			}
			return nil, fmt.Errorf("duplicate values for output hash are present, consider adding "+
				"more fields to hash or editing data: %w", domain.ErrDuplicateKey)
		}
		seen[key] = true
		rec[newField] = key
	}

	out.Schema.Fields = append(out.Schema.Fields, domain.Field{Name: newField, Type: domain.FieldString})
	return out, nil
}

// hashRecord digests the configured field values, with the geometry
// fingerprint folded in as an implicit final field
func (d *Deriver) hashRecord(ds *domain.Dataset, rec domain.Record, cfg KeyConfig, precision float64) string {
	parts := make([]string, 0, len(cfg.Fields)+1)
	for _, f := range cfg.Fields {
		parts = append(parts, domain.FormatValue(rec[f]))
	}
	if cfg.HashGeometry {
		parts = append(parts, geomhash.Fingerprint(ds.Geometry(rec), precision))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, hashDelimiter)))
	return hex.EncodeToString(sum[:])
}
