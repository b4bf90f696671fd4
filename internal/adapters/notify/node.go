package notify

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the notification printer Graft node.
const NodeID graft.ID = "adapter.notify"

func init() {
	graft.Register(graft.Node[*Printer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Printer, error) {
			return NewPrinter(nil), nil
		},
	})
}
