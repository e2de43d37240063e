package geomhash

// Supported precision values, in project units. The coarse end suits
// projected (metre-based) data, the fine end degree-based data.
var Precisions = []float64{1, 0.1, 0.01, 0.001, 0.0001, 0.00001, 0.000001, 0.0000001}

const (
	// DefaultPrecision is the snap distance used when callers do not
	// specify one (1cm in metre-based systems)
	DefaultPrecision = 0.01

	// GeographicPrecision replaces the default for degree-based
	// coordinate systems, where 0.01 would be ~1km
	GeographicPrecision = 0.0000001
)

// ValidPrecision reports whether p is one of the supported precisions
func ValidPrecision(p float64) bool {
	for _, v := range Precisions {
		if p == v {
			return true
		}
	}
	return false
}
