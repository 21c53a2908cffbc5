package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurve(t *testing.T) {
	tests := []struct {
		in      string
		want    Curve
		wantErr bool
	}{
		{"inverse", CurveInverse, false},
		{"inverse-linear", CurveInverse, false},
		{"inverse-square", CurveInverseSquare, false},
		{"logarithmic", 0, true},
		{"", 0, true},
	}

	for _, tc := range tests {
		c, err := ParseCurve(tc.in)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrUnknownCurve, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, c, "input %q", tc.in)
	}
}

func TestGainMonotonicNonIncreasing(t *testing.T) {
	const minDist = 1.0
	distances := []float64{0.01, 0.5, 1, 1.5, 2, 3, 5, 8, 13, 21, 100, 1e4}

	for _, curve := range []Curve{CurveInverse, CurveInverseSquare} {
		prev := 2.0
		for _, d := range distances {
			g := curve.Gain(d, minDist)
			assert.LessOrEqual(t, g, prev, "%v: gain increased at d=%v", curve, d)
			assert.Greater(t, g, 0.0, "%v: gain must stay positive at d=%v", curve, d)
			assert.LessOrEqual(t, g, 1.0, "%v: gain exceeded unity at d=%v", curve, d)
			prev = g
		}
	}
}

func TestGainClampsBelowMinDistance(t *testing.T) {
	const minDist = 2.0
	for _, curve := range []Curve{CurveInverse, CurveInverseSquare} {
		ref := curve.Gain(minDist, minDist)
		assert.InDelta(t, 1.0, ref, 1e-12, "%v: gain at min distance", curve)
		for _, d := range []float64{0, 0.1, 1, 1.999} {
			assert.Equal(t, ref, curve.Gain(d, minDist), "%v: d=%v should clamp to min distance", curve, d)
		}
	}
}

func TestGainReferenceValues(t *testing.T) {
	// Spec scenario: inverse-square, min distance 1, source 10 units out
	assert.InDelta(t, 0.01, CurveInverseSquare.Gain(10, 1), 1e-12)
	assert.InDelta(t, 0.1, CurveInverse.Gain(10, 1), 1e-12)
	assert.InDelta(t, 0.25, CurveInverseSquare.Gain(4, 2), 1e-12)
}
