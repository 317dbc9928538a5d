package utils

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestFieldRequiredError(t *testing.T) {
	err := NewConfigValidationFieldRequiredError("drive.pins", "pwm_left")
	test.That(t, err.Error(), test.ShouldContainSubstring, "drive.pins")
	test.That(t, GetFieldFromFieldRequiredError(err), test.ShouldEqual, "pwm_left")

	wrapped := NewConfigValidationError("config.yaml", err)
	test.That(t, GetFieldFromFieldRequiredError(wrapped), test.ShouldEqual, "pwm_left")
	test.That(t, GetFieldFromFieldRequiredError(errors.New("other")), test.ShouldEqual, "")
}
