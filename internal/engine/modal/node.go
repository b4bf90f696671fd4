package modal

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the modal stack Graft node.
const NodeID graft.ID = "engine.modal"

func init() {
	graft.Register(graft.Node[*Stack]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Stack, error) {
			return New(), nil
		},
	})
}
