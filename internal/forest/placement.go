package forest

import (
	"hash/fnv"
	"math"
)

// Placement constants. The world is a flat disc around the spawn
// point; trees must keep clear of each other and of the origin.
const (
	worldRadius       = 50.0
	usableRadius      = worldRadius * 0.8
	minTreeDistance   = 8.0
	minOriginDistance = 5.0
	maxAttempts       = 20

	// goldenAngle spreads consecutive spiral slots evenly around the
	// disc, like seeds in a sunflower head. pi * (3 - sqrt 5).
	goldenAngle = 2.399963229728653

	// Radius grows by half the tree spacing per slot; together with the
	// golden-angle sweep this keeps any two slots at least minTreeDistance
	// apart until the radius caps at the rim.
	spiralStep   = 4.0
	innerRadius  = minOriginDistance + 1.5
	jitterSwing  = 0.6 // radians, centered on the slot angle
)

// Vec3 is a point in the forest scene. Y stays zero; trees sit on the
// ground plane.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func distance2D(a, b Vec3) float64 {
	dx, dz := a.X-b.X, a.Z-b.Z
	return math.Sqrt(dx*dx + dz*dz)
}

func sessionHash(sessionID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(sessionID))
	return h.Sum64()
}

// jitter maps a hash to [0, 1).
func jitter(h uint64) float64 {
	return float64(h%10000) / 10000
}

// placeTree assigns a position on a spiral walking outward from the
// origin, jittered by the session id's hash so adjacent sessions do not
// line up. Each attempt advances one spiral slot; after maxAttempts the
// position falls back to a clamped slot on the outer rim. Deterministic
// for a given session id and set of existing trees, and always
// terminates.
func placeTree(sessionID string, existing []Tree) Vec3 {
	h := sessionHash(sessionID)
	base := len(existing)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		slot := float64(base + attempt)
		j := jitter(h + uint64(attempt)*0x9e3779b9)

		angle := slot*goldenAngle + (j-0.5)*jitterSwing
		radius := innerRadius + spiralStep*slot
		if radius > usableRadius {
			radius = usableRadius
		}

		pos := Vec3{X: math.Cos(angle) * radius, Z: math.Sin(angle) * radius}
		if clearOf(pos, existing) {
			return pos
		}
	}

	// Rim fallback: angle from the hash alone, pushed to the edge.
	// May violate tree spacing but keeps placement bounded.
	angle := jitter(h) * 2 * math.Pi
	return Vec3{X: math.Cos(angle) * usableRadius, Z: math.Sin(angle) * usableRadius}
}

func clearOf(pos Vec3, existing []Tree) bool {
	if distance2D(pos, Vec3{}) < minOriginDistance {
		return false
	}
	for _, t := range existing {
		if distance2D(pos, t.Position) < minTreeDistance {
			return false
		}
	}
	return true
}
