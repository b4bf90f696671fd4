package executor

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/daybook/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/daybook/internal/adapters/remote"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/daybook/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/core/ports"
	"go.trai.ch/daybook/internal/engine/cache"
	"go.trai.ch/daybook/internal/engine/modal"
	"go.trai.ch/daybook/internal/engine/toast"
)

// NodeID is the unique identifier for the mutation executor Graft node.
const NodeID graft.ID = "engine.executor"

func init() {
	graft.Register(graft.Node[*Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.SettingsNodeID,
			remote.StoreNodeID,
			cache.NodeID,
			toast.NodeID,
			modal.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Executor, error) {
			cfg, err := graft.Dep[domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.RemoteStore](ctx)
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
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return New(store, c, toasts, modals, tracer, cfg.Remote.Timeout), nil
		},
	})
}
