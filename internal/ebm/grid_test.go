package ebm

import (
	"math"
	"testing"
)

func TestGridSpacing(t *testing.T) {
	for _, n := range []int{1, 2, 9, 90, 181} {
		x, lat := buildGrid(n)

		if len(x) != n || len(lat) != n {
			t.Fatalf("n=%d: expected %d points, got %d/%d", n, n, len(x), len(lat))
		}
		if x[0] <= -1 {
			t.Errorf("n=%d: x[0]=%f not inside (-1,1)", n, x[0])
		}
		if x[n-1] >= 1 {
			t.Errorf("n=%d: x[%d]=%f not inside (-1,1)", n, n-1, x[n-1])
		}

		for i := 0; i < n; i++ {
			want := -1 + 2*(float64(i)+0.5)/float64(n)
			if math.Abs(x[i]-want) > 1e-12 {
				t.Errorf("n=%d: x[%d]=%f, want %f", n, i, x[i], want)
			}
			if i > 0 && x[i] <= x[i-1] {
				t.Errorf("n=%d: x not strictly increasing at %d", n, i)
			}
		}
	}
}

func TestGridLatitudeTransform(t *testing.T) {
	x, lat := buildGrid(90)
	for i := range x {
		want := math.Asin(x[i]) * 180 / math.Pi
		if lat[i] != want {
			t.Errorf("lat[%d]=%f, want %f", i, lat[i], want)
		}
		if i > 0 && lat[i] <= lat[i-1] {
			t.Errorf("lat not strictly increasing at %d", i)
		}
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	if _, err := New(0, DefaultParams()); err != ErrBandCount {
		t.Errorf("bands=0: expected ErrBandCount, got %v", err)
	}
	if _, err := New(-5, DefaultParams()); err != ErrBandCount {
		t.Errorf("bands=-5: expected ErrBandCount, got %v", err)
	}

	p := DefaultParams()
	p.D = 0
	if _, err := New(90, p); err != ErrDiffusivity {
		t.Errorf("D=0: expected ErrDiffusivity, got %v", err)
	}

	p = DefaultParams()
	p.B = -1
	if _, err := New(90, p); err != ErrRestoring {
		t.Errorf("B=-1: expected ErrRestoring, got %v", err)
	}

	p = DefaultParams()
	p.IceAlbedo = p.OceanAlbedo
	if _, err := New(90, p); err != ErrAlbedoOrder {
		t.Errorf("equal albedos: expected ErrAlbedoOrder, got %v", err)
	}
}
