// Package register registers all board drivers.
package register

import (
	// for boards.
	_ "github.com/diffdrive/teleop/components/board/fake"
	_ "github.com/diffdrive/teleop/components/board/genericlinux"
	_ "github.com/diffdrive/teleop/components/board/pi"
)
