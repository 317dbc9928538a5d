// Package main drives a two-wheel robot from a gamepad.
package main

import (
	"context"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	goutils "go.viam.com/utils"

	"github.com/diffdrive/teleop/components/base/wheeled"
	"github.com/diffdrive/teleop/components/board"
	// registers all board drivers.
	_ "github.com/diffdrive/teleop/components/board/register"
	"github.com/diffdrive/teleop/components/input"
	fakeinput "github.com/diffdrive/teleop/components/input/fake"
	"github.com/diffdrive/teleop/components/input/gamepad"
	"github.com/diffdrive/teleop/config"
	"github.com/diffdrive/teleop/logging"
	"github.com/diffdrive/teleop/services/teleop"
)

// Flags.
const (
	flagConfig     = "config"
	flagSpeedLimit = "speed-limit"
	flagBoard      = "board"
	flagController = "controller"
	flagLogLevel   = "log-level"
	flagDebug      = "debug"
)

var logger = logging.NewLogger("teleop")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	defer goutils.UncheckedErrorFunc(logger.Sync)
	return newApp(logger).RunContext(ctx, args)
}

func newApp(logger logging.Logger) *cli.App {
	return &cli.App{
		Name:            "teleop",
		Usage:           "drive a two-wheel robot with a gamepad",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE` (.json, .yaml or .yml)",
			},
			&cli.Float64Flag{
				Name:  flagSpeedLimit,
				Usage: "largest wheel speed as a fraction of full scale, in (0, 1]",
			},
			&cli.StringFlag{
				Name:  flagBoard,
				Usage: "board driver: " + strings.Join(board.RegisteredDrivers(), ", "),
			},
			&cli.StringFlag{
				Name:  flagController,
				Usage: "controller driver: " + config.ControllerJoystick + " or " + config.ControllerFake,
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "log level: debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c, logger)
			if err != nil {
				return err
			}
			return run(c.Context, cfg, logger)
		},
	}
}

// loadConfig layers flags over the config file and environment.
func loadConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig), logger)
	if err != nil {
		return nil, err
	}
	if c.IsSet(flagSpeedLimit) {
		cfg.Drive.SpeedLimit = c.Float64(flagSpeedLimit)
	}
	if c.IsSet(flagBoard) {
		cfg.Board.Driver = c.String(flagBoard)
	}
	if c.IsSet(flagController) {
		cfg.Controller.Driver = c.String(flagController)
	}
	if c.IsSet(flagLogLevel) {
		cfg.LogLevel = c.String(flagLogLevel)
	}
	if c.Bool(flagDebug) {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) (err error) {
	if cfg.LogFile != "" {
		appender, closer := logging.NewFileAppender(cfg.LogFile)
		logger.AddAppender(appender)
		defer goutils.UncheckedErrorFunc(closer.Close)
	}
	// Validate already vetted the level.
	level, _ := logging.LevelFromString(cfg.LogLevel) //nolint:errcheck
	logger.SetLevel(level)
	if cfg.Debug {
		logging.GlobalLogLevel.SetLevel(zap.DebugLevel)
		logger.SetLevel(logging.DEBUG)
		ctx = logging.EnableDebugMode(ctx, "teleop")
	}

	b, err := board.NewFromConfig(ctx, cfg.Board, logger.Sublogger("board"))
	if err != nil {
		return err
	}
	wb, err := wheeled.NewBase(ctx, b, cfg.Drive, logger.Sublogger("base"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, wb.Close(context.Background()))
	}()

	var source input.Source
	switch cfg.Controller.Driver {
	case config.ControllerFake:
		source = fakeinput.NewWaveSource(clock.New(), cfg.Controller.PollHz)
	default:
		source = gamepad.NewSource(cfg.Controller.Config, clock.New(), logger.Sublogger("gamepad"))
	}
	reader := input.NewReader(source, logger.Sublogger("input"))
	defer goutils.UncheckedErrorFunc(reader.Close)

	inputLogger := logger.Sublogger("input")
	for _, c := range input.Buttons {
		if err := reader.RegisterControlCallback(ctx, c, []input.EventType{input.ButtonChange},
			func(ctx context.Context, ev input.Event) {
				inputLogger.Debugw("button", "control", ev.Control, "event", ev.Event)
			}); err != nil {
			return err
		}
	}

	logger.Infow("driving",
		"board", cfg.Board.Driver,
		"controller", cfg.Controller.Driver,
		"speed_limit", cfg.Drive.SpeedLimit,
		"loop_hz", cfg.LoopHz)
	return teleop.Run(ctx, reader, wb, logger.Sublogger("loop"), cfg.LoopHz)
}
