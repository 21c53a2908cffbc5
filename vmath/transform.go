package vmath

// Transform is a rigid pose in world space
// Velocity is carried for future Doppler support and is not consumed by the
// current simulation
type Transform struct {
	Position Vec3
	Rotation Quat
	Velocity Vec3
}

// IdentityTransform returns a pose at the origin facing +Z
func IdentityTransform() Transform {
	return Transform{Rotation: QIdentity()}
}

// Forward returns the world-space facing direction (+Z local)
func (t Transform) Forward() Vec3 {
	return QRotate(t.Rotation, Vec3{Z: 1})
}

// Up returns the world-space up direction (+Y local)
func (t Transform) Up() Vec3 {
	return QRotate(t.Rotation, Vec3{Y: 1})
}

// Right returns the world-space right direction (+X local)
func (t Transform) Right() Vec3 {
	return QRotate(t.Rotation, Vec3{X: 1})
}

// ToLocal maps a world-space point into this pose's local frame
func (t Transform) ToLocal(p Vec3) Vec3 {
	return QRotate(QConj(t.Rotation), V3Sub(p, t.Position))
}

// ToWorld maps a local-space point into world space
func (t Transform) ToWorld(p Vec3) Vec3 {
	return V3Add(QRotate(t.Rotation, p), t.Position)
}
