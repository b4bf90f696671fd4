package toast

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/daybook/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/daybook/internal/core/domain"
)

// NodeID is the unique identifier for the toast queue Graft node.
const NodeID graft.ID = "engine.toast"

func init() {
	graft.Register(graft.Node[*Queue]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (*Queue, error) {
			cfg, err := graft.Dep[domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg.Toast.TTL), nil
		},
	})
}
