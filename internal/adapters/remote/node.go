package remote

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/daybook/internal/adapters/config"
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the SQL store Graft node.
	NodeID graft.ID = "adapter.remote"
	// StoreNodeID provides the store as a ports.RemoteStore.
	StoreNodeID graft.ID = "adapter.remote.store"
	// AccountNodeID provides the store as a ports.AccountService.
	AccountNodeID graft.ID = "adapter.remote.account"
)

func init() {
	graft.Register(graft.Node[*Store]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (*Store, error) {
			cfg, err := graft.Dep[domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return Open(ctx, cfg.Remote)
		},
	})

	graft.Register(graft.Node[ports.RemoteStore]{
		ID:        StoreNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (ports.RemoteStore, error) {
			s, err := graft.Dep[*Store](ctx)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	})

	graft.Register(graft.Node[ports.AccountService]{
		ID:        AccountNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (ports.AccountService, error) {
			s, err := graft.Dep[*Store](ctx)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	})
}
