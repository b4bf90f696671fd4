package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/daybook/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/daybook/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/daybook/internal/adapters/notify"    //nolint:depguard // Wired in app layer
	"go.trai.ch/daybook/internal/adapters/remote"    //nolint:depguard // Wired in app layer
	"go.trai.ch/daybook/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/core/ports"
	"go.trai.ch/daybook/internal/engine/cache"
	"go.trai.ch/daybook/internal/engine/executor"
	"go.trai.ch/daybook/internal/engine/gate"
	"go.trai.ch/daybook/internal/engine/modal"
	"go.trai.ch/daybook/internal/engine/toast"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.SettingsNodeID,
			remote.NodeID,
			remote.StoreNodeID,
			remote.AccountNodeID,
			cache.NodeID,
			toast.NodeID,
			modal.NodeID,
			gate.NodeID,
			executor.NodeID,
			telemetry.ProviderNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			notify.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			printer, err := graft.Dep[*notify.Printer](ctx)
			if err != nil {
				return nil, err
			}
			return NewComponents(a, log, printer), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cfg, err := graft.Dep[domain.Config](ctx)
	if err != nil {
		return nil, err
	}
	db, err := graft.Dep[*remote.Store](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.RemoteStore](ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := graft.Dep[ports.AccountService](ctx)
	if err != nil {
		return nil, err
	}
	c, err := graft.Dep[*cache.Cache](ctx)
	if err != nil {
		return nil, err
	}
	toasts, err := graft.Dep[*toast.Queue](ctx)
	if err != nil {
		return nil, err
	}
	modals, err := graft.Dep[*modal.Stack](ctx)
	if err != nil {
		return nil, err
	}
	g, err := graft.Dep[*gate.Gate](ctx)
	if err != nil {
		return nil, err
	}
	exec, err := graft.Dep[*executor.Executor](ctx)
	if err != nil {
		return nil, err
	}
	provider, err := graft.Dep[*telemetry.Provider](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	a := New(cfg, store, accounts, c, toasts, modals, g, exec, provider.Tracer(), log).
		WithCloser(func(context.Context) error { return db.Close() }).
		WithCloser(provider.Shutdown)
	return a, nil
}
