package diff

import "github.com/gisdiff/changedet/pkg/domain"

// Bucket names, in canonical output order
const (
	BucketNew          = "NEW"
	BucketDeleted      = "DELETED"
	BucketUnchanged    = "UNCHANGED"
	BucketModifiedAttr = "MODIFIED_ATTR"
	BucketModifiedGeom = "MODIFIED_GEOM"
	BucketModifiedBoth = "MODIFIED_BOTH"
)

// BucketNames lists the six buckets in canonical output order
var BucketNames = []string{
	BucketNew,
	BucketDeleted,
	BucketUnchanged,
	BucketModifiedAttr,
	BucketModifiedGeom,
	BucketModifiedBoth,
}

// Result holds the six output buckets of one comparison. New, ModifiedGeom
// and ModifiedBoth carry the second source's schema (current state);
// Deleted and Unchanged carry the first source's schema; ModifiedAttr and
// ModifiedBoth expose per-field before/after value pairs.
type Result struct {
	New          *domain.Dataset
	Deleted      *domain.Dataset
	Unchanged    *domain.Dataset
	ModifiedAttr *domain.Dataset
	ModifiedGeom *domain.Dataset
	ModifiedBoth *domain.Dataset
}

// Buckets returns the six datasets in canonical order
func (r *Result) Buckets() []*domain.Dataset {
	return []*domain.Dataset{
		r.New,
		r.Deleted,
		r.Unchanged,
		r.ModifiedAttr,
		r.ModifiedGeom,
		r.ModifiedBoth,
	}
}

// Summary holds per-bucket record counts
type Summary struct {
	New          int `json:"new"`
	Deleted      int `json:"deleted"`
	Unchanged    int `json:"unchanged"`
	ModifiedAttr int `json:"modified_attr"`
	ModifiedGeom int `json:"modified_geom"`
	ModifiedBoth int `json:"modified_both"`
}

// Summary returns per-bucket record counts
func (r *Result) Summary() Summary {
	return Summary{
		New:          len(r.New.Records),
		Deleted:      len(r.Deleted.Records),
		Unchanged:    len(r.Unchanged.Records),
		ModifiedAttr: len(r.ModifiedAttr.Records),
		ModifiedGeom: len(r.ModifiedGeom.Records),
		ModifiedBoth: len(r.ModifiedBoth.Records),
	}
}

// Total returns the sum of all bucket counts. It equals the number of
// distinct primary keys across both sources.
func (s Summary) Total() int {
	return s.New + s.Deleted + s.Unchanged + s.ModifiedAttr + s.ModifiedGeom + s.ModifiedBoth
}
