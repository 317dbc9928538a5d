package motor

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestGetSign(t *testing.T) {
	test.That(t, GetSign(0.3), test.ShouldEqual, 1)
	test.That(t, GetSign(-0.3), test.ShouldEqual, -1)
	test.That(t, GetSign(0), test.ShouldEqual, 0)
	test.That(t, GetSign(math.Copysign(0, -1)), test.ShouldEqual, 0)
}
