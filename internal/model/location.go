package model

import "math"

// Vec3: точка или направление в мировых координатах.
// Value type, передаётся по значению (immutable).
// Y: вертикальная ось: при проверке дальности и угла она выравнивается.
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Forward is the default facing (+Z).
var Forward = Vec3{Z: 1}

// NewVec3 создаёт Vec3 с указанными координатами.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3       { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3       { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(f float64) Vec3  { return Vec3{v.X * f, v.Y * f, v.Z * f} }
func (v Vec3) Dot(o Vec3) float64    { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) SqrMagnitude() float64 { return v.Dot(v) }
func (v Vec3) Magnitude() float64    { return math.Sqrt(v.SqrMagnitude()) }
func (v Vec3) IsZero() bool          { return v == Vec3{} }

// WithY возвращает копию с заменённой координатой Y (immutable pattern).
func (v Vec3) WithY(y float64) Vec3 {
	v.Y = y
	return v
}

// Normalized returns the unit vector, or zero for a zero vector.
func (v Vec3) Normalized() Vec3 {
	m := v.Magnitude()
	if m < 1e-9 {
		return Vec3{}
	}
	return v.Scale(1 / m)
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
func (v Vec3) DistanceSquared(o Vec3) float64 {
	return v.Sub(o).SqrMagnitude()
}

// AngleDeg returns the unsigned angle between two vectors in degrees.
// A zero vector yields 0.
func AngleDeg(a, b Vec3) float64 {
	denom := math.Sqrt(a.SqrMagnitude() * b.SqrMagnitude())
	if denom < 1e-15 {
		return 0
	}
	cos := a.Dot(b) / denom
	cos = max(-1, min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// Location: позиция и направление взгляда объекта.
type Location struct {
	Position Vec3
	Heading  Vec3
}

// NewLocation создаёт Location; нулевое направление заменяется на Forward.
func NewLocation(pos, heading Vec3) Location {
	if heading.IsZero() {
		heading = Forward
	}
	return Location{Position: pos, Heading: heading.Normalized()}
}

// WithPosition возвращает новый Location с обновлёнными координатами (immutable pattern).
func (l Location) WithPosition(pos Vec3) Location {
	l.Position = pos
	return l
}

// WithHeading возвращает новый Location с обновлённым направлением (immutable pattern).
// Нулевой вектор направление не меняет.
func (l Location) WithHeading(heading Vec3) Location {
	if !heading.IsZero() {
		l.Heading = heading.Normalized()
	}
	return l
}

// LookAt поворачивает Location к точке в горизонтальной плоскости.
func (l Location) LookAt(point Vec3) Location {
	dir := point.WithY(l.Position.Y).Sub(l.Position)
	return l.WithHeading(dir)
}
