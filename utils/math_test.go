package utils

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestClamp(t *testing.T) {
	for _, tc := range []struct {
		name      string
		x, lo, hi float64
		want      float64
	}{
		{"inside", 0.5, -0.7, 0.7, 0.5},
		{"below", -1, -0.7, 0.7, -0.7},
		{"above", 1, -0.7, 0.7, 0.7},
		{"at lower bound", -0.7, -0.7, 0.7, -0.7},
		{"at upper bound", 0.7, -0.7, 0.7, 0.7},
		{"degenerate range", 3, 2, 2, 2},
		{"zero", 0, -0.7, 0.7, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Clamp(tc.x, tc.lo, tc.hi)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, got, test.ShouldEqual, tc.want)
		})
	}
}

func TestClampInvalidBounds(t *testing.T) {
	_, err := Clamp(0, 1, -1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrInvalidBounds), test.ShouldBeTrue)
}

func TestClampNonFinite(t *testing.T) {
	_, err := Clamp(math.NaN(), -0.7, 0.7)
	test.That(t, errors.Is(err, ErrNotANumber), test.ShouldBeTrue)

	got, err := Clamp(math.Inf(1), -0.7, 0.7)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldEqual, 0.7)
	got, err = Clamp(math.Inf(-1), -0.7, 0.7)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldEqual, -0.7)
}

func TestClampProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		a := rng.Float64()*4 - 2
		b := rng.Float64()*4 - 2
		if a > b {
			a, b = b, a
		}
		x := rng.Float64()*8 - 4

		got, err := Clamp(x, a, b)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldBeBetweenOrEqual, a, b)
		switch {
		case x < a:
			test.That(t, got, test.ShouldEqual, a)
		case x > b:
			test.That(t, got, test.ShouldEqual, b)
		default:
			test.That(t, got, test.ShouldEqual, x)
		}
	}
}
