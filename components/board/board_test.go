package board_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/diffdrive/teleop/components/board"
	"github.com/diffdrive/teleop/components/board/fake"
	"github.com/diffdrive/teleop/logging"
	"github.com/diffdrive/teleop/utils"
)

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	test.That(t, board.RegisteredDrivers(), test.ShouldContain, fake.DriverName)

	b, err := board.NewFromConfig(ctx, board.Config{Driver: fake.DriverName}, logger)
	test.That(t, err, test.ShouldBeNil)
	_, ok := b.(*fake.Board)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.Close(ctx), test.ShouldBeNil)

	_, err = board.NewFromConfig(ctx, board.Config{Driver: "toaster"}, logger)
	test.That(t, errors.Is(err, board.ErrUnknownDriver), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, fake.DriverName)
}

func TestRegisterDriverTwice(t *testing.T) {
	noop := func(ctx context.Context, conf board.Config, logger logging.Logger) (board.Board, error) {
		return nil, nil
	}
	board.RegisterDriver("twice", noop)
	test.That(t, func() { board.RegisterDriver("twice", noop) }, test.ShouldPanic)
}

func TestConfigValidate(t *testing.T) {
	conf := board.Config{}
	err := conf.Validate("board")
	test.That(t, utils.GetFieldFromFieldRequiredError(err), test.ShouldEqual, "driver")

	conf.Driver = board.DefaultDriver
	test.That(t, conf.Validate("board"), test.ShouldBeNil)
}
