package systems

import "math"

// Clamp functions for common value ranges

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clampInt clamps an int index between min and max.
func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// absf returns |v| for float32.
func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Distance functions

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float32) float32 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float32) float32 {
	return float32(math.Sqrt(float64(distanceSq(x1, y1, x2, y2))))
}

// Coordinate mapping between pool space [-1,1] and texture space [0,1].

// poolToUV maps a pool coordinate to texture space.
func poolToUV(p float32) float32 {
	return p*0.5 + 0.5
}

// texelCenter returns the texture-space centre of cell i in an n-cell axis.
func texelCenter(i, n int) float32 {
	return (float32(i) + 0.5) / float32(n)
}
