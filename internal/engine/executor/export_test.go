package executor

import (
	"context"

	"go.trai.ch/daybook/internal/core/domain"
)

// SettleWith runs settle with a result channel that already holds
// entity and err when ready is set, and stays empty otherwise.
func SettleWith(ctx context.Context, ready bool, entity domain.Entity, err error) (domain.Entity, error) {
	done := make(chan callResult, 1)
	if ready {
		done <- callResult{entity: entity, err: err}
	}
	return settle(ctx, done)
}
