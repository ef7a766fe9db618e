package model

import (
	"math"
	"testing"
)

func TestPropertiesPresence(t *testing.T) {
	var none Properties
	if none.HasDensity() || none.HasMagnetization() || none.HasDirection() {
		t.Errorf("empty properties report presence: %+v", none)
	}

	p := Properties{Density: Float(2670), Magnetization: Float(1.2)}
	if !p.HasDensity() || !p.HasMagnetization() {
		t.Errorf("presence not reported: %+v", p)
	}
	if p.HasDirection() {
		t.Errorf("direction reported without angles")
	}
}

func TestDirectionBothOrNeither(t *testing.T) {
	ambient := AmbientField{InclinationDeg: 60, DeclinationDeg: -10}

	cases := []struct {
		name             string
		props            Properties
		wantInc, wantDec float64
	}{
		{"neither", Properties{}, 60, -10},
		{"inclination only", Properties{InclinationDeg: Float(5)}, 60, -10},
		{"declination only", Properties{DeclinationDeg: Float(5)}, 60, -10},
		{"both", Properties{InclinationDeg: Float(5), DeclinationDeg: Float(15)}, 5, 15},
	}
	for _, c := range cases {
		inc, dec := c.props.Direction(ambient)
		if inc != c.wantInc || dec != c.wantDec {
			t.Errorf("%s: Direction = (%v, %v), want (%v, %v)", c.name, inc, dec, c.wantInc, c.wantDec)
		}
	}
}

func TestSphereVolume(t *testing.T) {
	s := &Sphere{Radius: 10}
	want := 4.0 * math.Pi * 1000.0 / 3.0
	if got := s.Volume(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Volume = %v, want %v", got, want)
	}
}
