package marketdatav1

import (
	"context"

	orderbookv1 "github.com/tradehub/matching-engine/internal/domain/orderbook/v1"
)

// Publisher is the market-data collaborator. Both calls are best-effort and
// issued after the book mutation commits; failures must never unwind or
// reorder committed matches.
type Publisher interface {
	PublishTrade(ctx context.Context, trade *orderbookv1.Trade) error
	PublishDepth(ctx context.Context, market string, depth *orderbookv1.Depth) error
}
