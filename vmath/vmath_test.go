package vmath

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func v3Near(t *testing.T, got, want Vec3, tol float64) {
	t.Helper()
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol || math.Abs(got.Z-want.Z) > tol {
		t.Fatalf("vector mismatch: got %+v want %+v", got, want)
	}
}

func TestV3Normalize(t *testing.T) {
	v := V3Normalize(Vec3{3, 0, 4})
	v3Near(t, v, Vec3{0.6, 0, 0.8}, epsilon)

	if got := V3Normalize(Vec3{}); got != (Vec3{}) {
		t.Fatalf("zero vector should normalize to zero, got %+v", got)
	}
}

func TestV3CrossOrthogonal(t *testing.T) {
	c := V3Cross(Vec3{X: 1}, Vec3{Y: 1})
	v3Near(t, c, Vec3{Z: 1}, epsilon)

	if d := V3Dot(c, Vec3{X: 1}); math.Abs(d) > epsilon {
		t.Fatalf("cross product not orthogonal: dot=%v", d)
	}
}

func TestQRotateAxisAngle(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float64
		in    Vec3
		want  Vec3
	}{
		{"yaw 90 turns forward to right", Vec3{Y: 1}, math.Pi / 2, Vec3{Z: 1}, Vec3{X: 1}},
		{"yaw -90 turns forward to left", Vec3{Y: 1}, -math.Pi / 2, Vec3{Z: 1}, Vec3{X: -1}},
		{"pitch 90 turns forward to down", Vec3{X: 1}, math.Pi / 2, Vec3{Z: 1}, Vec3{Y: -1}},
		{"full turn is identity", Vec3{Y: 1}, 2 * math.Pi, Vec3{X: 0.5, Z: 0.5}, Vec3{X: 0.5, Z: 0.5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := QFromAxisAngle(tc.axis, tc.angle)
			v3Near(t, QRotate(q, tc.in), tc.want, 1e-12)
		})
	}
}

func TestQMulComposes(t *testing.T) {
	// Two quarter yaws equal one half yaw
	quarter := QFromAxisAngle(Vec3{Y: 1}, math.Pi/2)
	half := QFromAxisAngle(Vec3{Y: 1}, math.Pi)

	v := Vec3{Z: 1}
	v3Near(t, QRotate(QMul(quarter, quarter), v), QRotate(half, v), 1e-12)
}

func TestTransformToLocal(t *testing.T) {
	// Listener at origin facing +Z: world +Z stays local +Z
	listener := IdentityTransform()
	v3Near(t, listener.ToLocal(Vec3{Z: 10}), Vec3{Z: 10}, epsilon)

	// Listener yawed 90 degrees (facing +X): a source ahead of the listener
	// in world space lands on the local forward axis
	listener.Rotation = QFromAxisAngle(Vec3{Y: 1}, math.Pi/2)
	v3Near(t, listener.ToLocal(Vec3{X: 5}), Vec3{Z: 5}, 1e-12)

	// Translation applies before rotation
	listener = IdentityTransform()
	listener.Position = Vec3{X: 1, Y: 2, Z: 3}
	v3Near(t, listener.ToLocal(Vec3{X: 1, Y: 2, Z: 4}), Vec3{Z: 1}, epsilon)
}

func TestTransformRoundTrip(t *testing.T) {
	tr := Transform{
		Position: Vec3{X: -4, Y: 1, Z: 7},
		Rotation: QFromAxisAngle(V3Normalize(Vec3{1, 1, 0}), 0.73),
	}

	p := Vec3{X: 2.5, Y: -3, Z: 0.25}
	v3Near(t, tr.ToWorld(tr.ToLocal(p)), p, 1e-12)
}

func TestTransformBasisOrthonormal(t *testing.T) {
	tr := Transform{Rotation: QFromAxisAngle(V3Normalize(Vec3{0.3, 1, -0.2}), 1.1)}

	f, u, r := tr.Forward(), tr.Up(), tr.Right()
	for name, v := range map[string]Vec3{"forward": f, "up": u, "right": r} {
		if math.Abs(V3Mag(v)-1) > 1e-12 {
			t.Fatalf("%s not unit length: %v", name, V3Mag(v))
		}
	}
	if math.Abs(V3Dot(f, u)) > 1e-12 || math.Abs(V3Dot(f, r)) > 1e-12 || math.Abs(V3Dot(u, r)) > 1e-12 {
		t.Fatal("basis vectors not orthogonal")
	}
	// right x up = forward in this frame
	v3Near(t, V3Cross(r, u), f, 1e-12)
}
