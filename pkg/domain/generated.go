package domain

import "strings"

// generatedFields are area/length columns produced by GIS export tools.
// They derive from geometry, so they are excluded from hashing and from
// attribute comparison. Matching is case-insensitive.
var generatedFields = map[string]bool{
	"SHAPE_AREA":       true,
	"SHAPE_LENGTH":     true,
	"SHAPE_LENG":       true,
	"SHAPE__AREA":      true,
	"SHAPE__LEN":       true,
	"SHAPE__LENGTH":    true,
	"GEOMETRY_AREA":    true,
	"GEOMETRY_LENGTH":  true,
	"ST_AREA(SHAPE)":   true,
	"ST_LENGTH(SHAPE)": true,
}

// IsGeneratedField reports whether a field name matches a known generated
// area/length field, ignoring case
func IsGeneratedField(name string) bool {
	return generatedFields[strings.ToUpper(name)]
}
