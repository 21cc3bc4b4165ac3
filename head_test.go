package trail

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLocalHead(t *testing.T) {
	tests := []struct {
		name   string
		points []mgl32.Vec2
		want   HeadGeometry
	}{
		{"none", nil, FlatHead},
		{"left only", []mgl32.Vec2{{-2, 1}}, HeadGeometry{Left: mgl32.Vec2{-2, 1}, Right: mgl32.Vec2{1, 0}}},
		{"both", []mgl32.Vec2{{0, -1}, {0, 1}}, VerticalHead},
		{"extra ignored", []mgl32.Vec2{{-1, 0}, {1, 0}, {5, 5}}, FlatHead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocalHead(tt.points...); got != tt.want {
				t.Errorf("LocalHead(%v) = %v, want %v", tt.points, got, tt.want)
			}
		})
	}
}

func TestHeadGeometryIsZero(t *testing.T) {
	if !(HeadGeometry{}).IsZero() {
		t.Error("zero HeadGeometry.IsZero() = false")
	}
	if FlatHead.IsZero() || VerticalHead.IsZero() {
		t.Error("preset reported as zero")
	}
}

func TestNewFrameOrthonormal(t *testing.T) {
	dirs := []mgl32.Vec3{
		{1, 0, 0},
		{0, 0, 1},
		{0, 1, 0},
		{0, -3, 0},
		{1, 1, 1},
		{-2, 0.5, 7},
	}
	for _, d := range dirs {
		fr := newFrame(d)
		for name, v := range map[string]mgl32.Vec3{"forward": fr.forward, "side": fr.side, "up": fr.up} {
			if l := v.Len(); l < 1-geomEpsilon || l > 1+geomEpsilon {
				t.Errorf("newFrame(%v).%s length = %v, want 1", d, name, l)
			}
		}
		if dot := fr.forward.Dot(fr.side); dot > geomEpsilon || dot < -geomEpsilon {
			t.Errorf("newFrame(%v): forward·side = %v", d, dot)
		}
		if dot := fr.forward.Dot(fr.up); dot > geomEpsilon || dot < -geomEpsilon {
			t.Errorf("newFrame(%v): forward·up = %v", d, dot)
		}
		if dot := fr.side.Dot(fr.up); dot > geomEpsilon || dot < -geomEpsilon {
			t.Errorf("newFrame(%v): side·up = %v", d, dot)
		}
	}
}

func TestFramePlace(t *testing.T) {
	fr := newFrame(mgl32.Vec3{1, 0, 0})
	got := fr.place(mgl32.Vec3{1, 1, 1}, mgl32.Vec2{0.5, 2}, 2)
	// side +Z, up +Y
	if !vecNear(got, mgl32.Vec3{1, 5, 2}) {
		t.Errorf("place() = %v, want {1 5 2}", got)
	}
}
