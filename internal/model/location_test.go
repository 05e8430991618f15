package model

import (
	"math"
	"testing"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name    string
		pos     Vec3
		heading Vec3
		want    Location
	}{
		{
			name: "zero heading defaults to forward",
			pos:  NewVec3(1, 2, 3),
			want: Location{Position: NewVec3(1, 2, 3), Heading: Forward},
		},
		{
			name:    "heading is normalized",
			pos:     Vec3{},
			heading: NewVec3(10, 0, 0),
			want:    Location{Heading: NewVec3(1, 0, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLocation(tt.pos, tt.heading)
			if got != tt.want {
				t.Errorf("NewLocation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLocation_WithHeading(t *testing.T) {
	original := NewLocation(NewVec3(1, 0, 1), Forward)

	got := original.WithHeading(NewVec3(0, 0, -5))
	if got.Heading != NewVec3(0, 0, -1) {
		t.Errorf("WithHeading() heading = %+v, want (0,0,-1)", got.Heading)
	}

	// ВАЖНО: проверяем immutability, оригинал не должен измениться
	if original.Heading != Forward {
		t.Errorf("WithHeading() mutated original: %+v", original)
	}

	if same := original.WithHeading(Vec3{}); same.Heading != Forward {
		t.Errorf("WithHeading(zero) changed heading to %+v", same.Heading)
	}
}

func TestLocation_LookAtFlattensY(t *testing.T) {
	l := NewLocation(Vec3{}, Forward).LookAt(NewVec3(5, 100, 0))
	if l.Heading != NewVec3(1, 0, 0) {
		t.Errorf("LookAt() heading = %+v, want (1,0,0)", l.Heading)
	}
}

func TestVec3_DistanceSquared(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want float64
	}{
		{"same point", Vec3{}, Vec3{}, 0},
		{"x axis", Vec3{}, NewVec3(10, 0, 0), 100},
		{"3-4-5 triangle", Vec3{}, NewVec3(3, 0, 4), 25},
		{"3D distance", Vec3{}, NewVec3(1, 2, 2), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.DistanceSquared(tt.b); got != tt.want {
				t.Errorf("DistanceSquared() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngleDeg(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want float64
	}{
		{"same direction", Forward, NewVec3(0, 0, 3), 0},
		{"perpendicular", Forward, NewVec3(1, 0, 0), 90},
		{"opposite", Forward, NewVec3(0, 0, -1), 180},
		{"zero vector", Forward, Vec3{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AngleDeg(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AngleDeg() = %v, want %v", got, tt.want)
			}
		})
	}
}
