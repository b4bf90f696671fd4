// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/daybook/internal/adapters/config"
	_ "go.trai.ch/daybook/internal/adapters/logger"
	_ "go.trai.ch/daybook/internal/adapters/notify"
	_ "go.trai.ch/daybook/internal/adapters/remote"
	_ "go.trai.ch/daybook/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/daybook/internal/app"
	_ "go.trai.ch/daybook/internal/engine/cache"
	_ "go.trai.ch/daybook/internal/engine/executor"
	_ "go.trai.ch/daybook/internal/engine/gate"
	_ "go.trai.ch/daybook/internal/engine/modal"
	_ "go.trai.ch/daybook/internal/engine/toast"
)
