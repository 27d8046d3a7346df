package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// normalizeLight converts the configured light vector to a unit float32 triple.
func normalizeLight(v []float64) ([3]float32, error) {
	if len(v) != 3 {
		return [3]float32{}, fmt.Errorf("caustics.light: want 3 components, got %d", len(v))
	}
	l := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return [3]float32{}, errors.New("caustics.light: zero-length vector")
	}
	return [3]float32{float32(v[0] / l), float32(v[1] / l), float32(v[2] / l)}, nil
}

// parseHexColor parses "ff3333", "#ff3333" or "0xff3333" into 0xRRGGBB.
func parseHexColor(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	if len(s) != 6 {
		return 0, fmt.Errorf("colour %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("colour %q: %w", s, err)
	}
	return uint32(v), nil
}
