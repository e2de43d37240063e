package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", FormatValue(nil))
	assert.Equal(t, "hello", FormatValue("hello"))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "42", FormatValue(42))
	assert.Equal(t, "42", FormatValue(int64(42)))
	assert.Equal(t, "3.5", FormatValue(3.5))
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-01T12:00:00Z", FormatValue(ts))
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, ValuesEqual(nil, nil))
	assert.False(t, ValuesEqual(nil, 1))
	assert.False(t, ValuesEqual("x", nil))
	assert.True(t, ValuesEqual(42, 42))
	assert.True(t, ValuesEqual(42, 42.0))
	assert.True(t, ValuesEqual(int64(7), 7))
	assert.False(t, ValuesEqual(42, 43))
	assert.True(t, ValuesEqual("Alice", "Alice"))
	// comparison is case-sensitive: "x" and "X" are a modification
	assert.False(t, ValuesEqual("Alice", "alice"))
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, ValuesEqual(ts, ts.In(time.FixedZone("PST", -8*3600))))
}

func TestToFloat64(t *testing.T) {
	cases := []struct {
		input    interface{}
		expected float64
		ok       bool
	}{
		{42, 42.0, true},
		{int32(7), 7.0, true},
		{int64(8), 8.0, true},
		{float32(3.5), 3.5, true},
		{float64(2.2), 2.2, true},
		{uint(5), 5.0, true},
		{uint64(9), 9.0, true},
		{"not a number", 0, false},
	}
	for _, c := range cases {
		result, ok := ToFloat64(c.input)
		assert.Equal(t, c.ok, ok)
		if c.ok {
			assert.InDelta(t, c.expected, result, 1e-6)
		}
	}
}

func TestIsGeneratedField(t *testing.T) {
	assert.True(t, IsGeneratedField("SHAPE_AREA"))
	assert.True(t, IsGeneratedField("shape_length"))
	assert.True(t, IsGeneratedField("Shape_Leng"))
	assert.False(t, IsGeneratedField("area_code"))
	assert.False(t, IsGeneratedField("name"))
}
