package core

import (
	"errors"
	"math"
	"testing"

	"github.com/subsurfacelabs/potfield/model"
)

func singlePoint(x, y, z float64) Observations {
	return Observations{X: []float64{x}, Y: []float64{y}, Z: []float64{z}}
}

func relDiff(got, want float64) float64 {
	if want == 0 {
		return math.Abs(got)
	}
	return math.Abs(got-want) / math.Abs(want)
}

func TestGravityZSingleSphereAbove(t *testing.T) {
	// One sphere at the origin, radius 1000 m, density 1000 kg/m^3,
	// observed 5 km directly above (z is positive down).
	sphere := &model.Sphere{
		Radius: 1000,
		Props:  model.Properties{Density: model.Float(1000)},
	}

	got, err := GravityZ(singlePoint(0, 0, -5000), []*model.Sphere{sphere})
	if err != nil {
		t.Fatalf("GravityZ: %v", err)
	}

	// Point-mass attraction at distance d, converted to mGal. The offset
	// is -5000 in the depth-positive frame, so the result is negative.
	mass := 1000.0 * 4.0 * math.Pi * 1000e6 / 3.0
	want := -Gravitational * SI2MGal * mass / (5000.0 * 5000.0)

	if relDiff(got[0], want) > 1e-6 {
		t.Errorf("gz = %.10g, want %.10g", got[0], want)
	}
}

func TestTotalFieldEquatorialPoint(t *testing.T) {
	// Horizontal ambient field pointing north, sphere magnetized along it,
	// observed directly above: the point sits on the dipole's equator, so
	// the anomaly is -CM*T2NT*moment/r^3.
	sphere := &model.Sphere{
		Radius: 500,
		Props:  model.Properties{Magnetization: model.Float(1)},
	}
	ambient := model.AmbientField{InclinationDeg: 0, DeclinationDeg: 0}

	got, err := TotalField(singlePoint(0, 0, -2000), []*model.Sphere{sphere}, ambient)
	if err != nil {
		t.Fatalf("TotalField: %v", err)
	}

	moment := 4.0 * math.Pi * 500.0 * 500.0 * 500.0 / 3.0
	want := -CM * T2NT * moment / math.Pow(2000, 3)

	if relDiff(got[0], want) > 1e-6 {
		t.Errorf("tf = %.10g, want %.10g", got[0], want)
	}
}

func TestProjectionUsesAmbientDirection(t *testing.T) {
	// The sphere carries its own vertical magnetization while the ambient
	// field is horizontal. On the vertical axis the perturbation is purely
	// vertical, so projecting onto the horizontal ambient direction must
	// give zero. A projection onto the source direction would not.
	sphere := &model.Sphere{
		Radius: 500,
		Props: model.Properties{
			Magnetization:  model.Float(1),
			InclinationDeg: model.Float(90),
			DeclinationDeg: model.Float(0),
		},
	}
	ambient := model.AmbientField{InclinationDeg: 0, DeclinationDeg: 0}

	got, err := TotalField(singlePoint(0, 0, -2000), []*model.Sphere{sphere}, ambient)
	if err != nil {
		t.Fatalf("TotalField: %v", err)
	}
	if math.Abs(got[0]) > 1e-9 {
		t.Errorf("tf = %.10g, want 0", got[0])
	}
}

func TestDirectionOverrideNeedsBothAngles(t *testing.T) {
	obs := singlePoint(700, -300, -1500)
	ambient := model.AmbientField{InclinationDeg: 45, DeclinationDeg: 10}

	base := &model.Sphere{
		Radius: 400,
		Props:  model.Properties{Magnetization: model.Float(2)},
	}
	// A lone inclination must not override the ambient direction.
	lonely := &model.Sphere{
		Radius: 400,
		Props: model.Properties{
			Magnetization:  model.Float(2),
			InclinationDeg: model.Float(-45),
		},
	}
	both := &model.Sphere{
		Radius: 400,
		Props: model.Properties{
			Magnetization:  model.Float(2),
			InclinationDeg: model.Float(-45),
			DeclinationDeg: model.Float(10),
		},
	}

	wantBase, err := TotalField(obs, []*model.Sphere{base}, ambient)
	if err != nil {
		t.Fatalf("TotalField(base): %v", err)
	}
	gotLonely, err := TotalField(obs, []*model.Sphere{lonely}, ambient)
	if err != nil {
		t.Fatalf("TotalField(lonely): %v", err)
	}
	gotBoth, err := TotalField(obs, []*model.Sphere{both}, ambient)
	if err != nil {
		t.Fatalf("TotalField(both): %v", err)
	}

	if gotLonely[0] != wantBase[0] {
		t.Errorf("lone inclination changed the result: %v vs %v", gotLonely[0], wantBase[0])
	}
	if gotBoth[0] == wantBase[0] {
		t.Errorf("full override did not change the result: %v", gotBoth[0])
	}
}

func TestSuperposition(t *testing.T) {
	obs := Observations{
		X: []float64{0, 500, -1200, 3000},
		Y: []float64{0, -250, 800, 100},
		Z: []float64{-100, -100, -150, -200},
	}
	a := &model.Sphere{
		X: 0, Y: 0, Z: 1000, Radius: 300,
		Props: model.Properties{Density: model.Float(800), Magnetization: model.Float(1.5)},
	}
	b := &model.Sphere{
		X: 1500, Y: -400, Z: 2500, Radius: 700,
		Props: model.Properties{Density: model.Float(-200), Magnetization: model.Float(0.7)},
	}
	ambient := model.AmbientField{InclinationDeg: -60, DeclinationDeg: 25}

	gzBoth, err := GravityZ(obs, []*model.Sphere{a, b})
	if err != nil {
		t.Fatalf("GravityZ: %v", err)
	}
	gzA, _ := GravityZ(obs, []*model.Sphere{a})
	gzB, _ := GravityZ(obs, []*model.Sphere{b})

	tfBoth, err := TotalField(obs, []*model.Sphere{a, b}, ambient)
	if err != nil {
		t.Fatalf("TotalField: %v", err)
	}
	tfA, _ := TotalField(obs, []*model.Sphere{a}, ambient)
	tfB, _ := TotalField(obs, []*model.Sphere{b}, ambient)

	for i := range gzBoth {
		if relDiff(gzBoth[i], gzA[i]+gzB[i]) > 1e-12 {
			t.Errorf("gz[%d] = %v, want sum %v", i, gzBoth[i], gzA[i]+gzB[i])
		}
		if relDiff(tfBoth[i], tfA[i]+tfB[i]) > 1e-12 {
			t.Errorf("tf[%d] = %v, want sum %v", i, tfBoth[i], tfA[i]+tfB[i])
		}
	}
}

func TestSkipsTombstonesAndMissingProperties(t *testing.T) {
	obs := singlePoint(100, 200, -300)
	dense := &model.Sphere{
		X: 0, Y: 0, Z: 900, Radius: 250,
		Props: model.Properties{Density: model.Float(1200)},
	}
	magnetic := &model.Sphere{
		X: 50, Y: 50, Z: 600, Radius: 150,
		Props: model.Properties{Magnetization: model.Float(3)},
	}
	ambient := model.AmbientField{InclinationDeg: 30, DeclinationDeg: -5}

	full := []*model.Sphere{nil, magnetic, dense, nil}
	gzFull, err := GravityZ(obs, full)
	if err != nil {
		t.Fatalf("GravityZ: %v", err)
	}
	gzOnly, _ := GravityZ(obs, []*model.Sphere{dense})
	if gzFull[0] != gzOnly[0] {
		t.Errorf("gz with tombstones = %v, want %v", gzFull[0], gzOnly[0])
	}

	tfFull, err := TotalField(obs, full, ambient)
	if err != nil {
		t.Fatalf("TotalField: %v", err)
	}
	tfOnly, _ := TotalField(obs, []*model.Sphere{magnetic}, ambient)
	if tfFull[0] != tfOnly[0] {
		t.Errorf("tf with tombstones = %v, want %v", tfFull[0], tfOnly[0])
	}
}

func TestOrderIndependence(t *testing.T) {
	obs := Observations{
		X: []float64{0, 1000},
		Y: []float64{0, -1000},
		Z: []float64{-100, -100},
	}
	spheres := []*model.Sphere{
		{X: 0, Z: 500, Radius: 100, Props: model.Properties{Density: model.Float(500), Magnetization: model.Float(1)}},
		{X: 800, Z: 1500, Radius: 300, Props: model.Properties{Density: model.Float(900), Magnetization: model.Float(2)}},
		{X: -400, Y: 600, Z: 2000, Radius: 450, Props: model.Properties{Density: model.Float(-300), Magnetization: model.Float(0.4)}},
	}
	reversed := []*model.Sphere{spheres[2], spheres[1], spheres[0]}
	ambient := model.AmbientField{InclinationDeg: 50, DeclinationDeg: 3}

	gzFwd, _ := GravityZ(obs, spheres)
	gzRev, _ := GravityZ(obs, reversed)
	tfFwd, _ := TotalField(obs, spheres, ambient)
	tfRev, _ := TotalField(obs, reversed, ambient)

	for i := range gzFwd {
		if relDiff(gzFwd[i], gzRev[i]) > 1e-12 {
			t.Errorf("gz[%d]: %v vs %v", i, gzFwd[i], gzRev[i])
		}
		if relDiff(tfFwd[i], tfRev[i]) > 1e-12 {
			t.Errorf("tf[%d]: %v vs %v", i, tfFwd[i], tfRev[i])
		}
	}
}

func TestGravityZFarFieldConvergence(t *testing.T) {
	// A sphere's external field is exactly that of a point mass at its
	// centre, so the point-mass closed form must hold at any d > r.
	const radius = 1000.0
	const density = 2670.0
	sphere := &model.Sphere{
		Radius: radius,
		Props:  model.Properties{Density: model.Float(density)},
	}
	mass := density * 4.0 * math.Pi * radius * radius * radius / 3.0

	for _, ratio := range []float64{2, 5, 10, 100, 1000} {
		d := ratio * radius
		got, err := GravityZ(singlePoint(0, 0, -d), []*model.Sphere{sphere})
		if err != nil {
			t.Fatalf("GravityZ(d=%v): %v", d, err)
		}
		want := -Gravitational * SI2MGal * mass / (d * d)
		if relDiff(got[0], want) > 1e-12 {
			t.Errorf("d/r=%v: gz = %.12g, want %.12g", ratio, got[0], want)
		}
	}
}

func TestShapeMismatchIsFatal(t *testing.T) {
	obs := Observations{
		X: []float64{1, 2, 3},
		Y: []float64{1, 2, 3, 4},
		Z: []float64{1, 2, 3},
	}
	sphere := &model.Sphere{
		Radius: 100,
		Props:  model.Properties{Density: model.Float(1000), Magnetization: model.Float(1)},
	}

	if out, err := GravityZ(obs, []*model.Sphere{sphere}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("GravityZ err = %v, want ErrShapeMismatch", err)
	} else if out != nil {
		t.Errorf("GravityZ returned partial output alongside error")
	}

	if out, err := TotalField(obs, []*model.Sphere{sphere}, model.AmbientField{}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("TotalField err = %v, want ErrShapeMismatch", err)
	} else if out != nil {
		t.Errorf("TotalField returned partial output alongside error")
	}
}

func TestCoincidentPointYieldsLocalNonFinite(t *testing.T) {
	// First point sits exactly on the sphere centre; the second is normal.
	obs := Observations{
		X: []float64{100, 100},
		Y: []float64{200, 200},
		Z: []float64{500, -300},
	}
	sphere := &model.Sphere{
		X: 100, Y: 200, Z: 500, Radius: 50,
		Props: model.Properties{Density: model.Float(1000), Magnetization: model.Float(1)},
	}
	ambient := model.AmbientField{InclinationDeg: 45, DeclinationDeg: 0}

	gz, err := GravityZ(obs, []*model.Sphere{sphere})
	if err != nil {
		t.Fatalf("GravityZ: %v", err)
	}
	if !math.IsNaN(gz[0]) && !math.IsInf(gz[0], 0) {
		t.Errorf("gz at coincident point = %v, want non-finite", gz[0])
	}
	if math.IsNaN(gz[1]) || math.IsInf(gz[1], 0) {
		t.Errorf("gz at normal point = %v, want finite", gz[1])
	}

	tf, err := TotalField(obs, []*model.Sphere{sphere}, ambient)
	if err != nil {
		t.Fatalf("TotalField: %v", err)
	}
	if !math.IsNaN(tf[0]) && !math.IsInf(tf[0], 0) {
		t.Errorf("tf at coincident point = %v, want non-finite", tf[0])
	}
	if math.IsNaN(tf[1]) || math.IsInf(tf[1], 0) {
		t.Errorf("tf at normal point = %v, want finite", tf[1])
	}
}
