package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/common"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/service"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/session"
)

// prepareThreshold is the batch size above which per-item preparation is
// dispatched concurrently. Small batches are prepared inline since pool
// overhead would dominate.
const prepareThreshold = 5

// defaultPrepareWorkers bounds the concurrent preparation pool.
const defaultPrepareWorkers = 4

// FetchResult carries a prepared batch or the precise reason none could
// be fetched. An empty Items with a nil Err means nothing is pending;
// callers can always tell that apart from "could not check".
type FetchResult struct {
	Items  []model.PreparedItem
	Status session.Status
	Err    error
}

// Preparer fetches an account's confirmations and prepares per-item
// presentation data, resolving icons concurrently for large batches.
type Preparer struct {
	guard   SessionGuard
	svc     service.ConfirmationService
	icons   service.IconResolver
	workers int
}

// NewPreparer creates a preparer. A nil resolver disables icon
// decoration; workers <= 0 selects the default pool size.
func NewPreparer(guard SessionGuard, svc service.ConfirmationService, icons service.IconResolver, workers int) *Preparer {
	if workers <= 0 {
		workers = defaultPrepareWorkers
	}
	return &Preparer{
		guard:   guard,
		svc:     svc,
		icons:   icons,
		workers: workers,
	}
}

// FetchAndPrepare validates the session, fetches the pending set, and
// prepares every item. Preparation failure for one item never fails the
// batch; the item is surfaced without its decoration.
func (p *Preparer) FetchAndPrepare(ctx context.Context, account *model.Account) FetchResult {
	status, guardErr := p.guard.EnsureUsable(ctx, account)
	if guardErr != nil {
		return FetchResult{Status: status, Err: guardErr}
	}

	items, fetchErr := p.svc.ListConfirmations(ctx, account)
	if fetchErr != nil {
		return FetchResult{
			Status: status,
			Err:    fmt.Errorf("%w: %v", common.ErrFetchFailed, fetchErr),
		}
	}

	prepared := make([]model.PreparedItem, len(items))

	if len(items) <= prepareThreshold {
		for i, item := range items {
			prepared[i] = p.prepareOne(ctx, item)
		}
		return FetchResult{Items: prepared, Status: status}
	}

	// Index-addressed slot writes keep the output in fetch order without
	// any shared container to lock.
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			prepared[i] = p.prepareOne(ctx, items[i])
		}(i)
	}
	wg.Wait()

	return FetchResult{Items: prepared, Status: status}
}

func (p *Preparer) prepareOne(ctx context.Context, item model.ConfirmationItem) model.PreparedItem {
	out := model.PreparedItem{ConfirmationItem: item}

	if p.icons == nil || item.Icon == "" {
		return out
	}

	data, err := p.icons.Resolve(ctx, item.Icon)
	if err != nil {
		slog.Debug("Icon resolution failed, presenting without it",
			"confirmation_id", item.ID,
			"icon", item.Icon,
			"error", err)
		return out
	}
	out.IconData = data

	return out
}
