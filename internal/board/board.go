// Package board keeps a local page of orders for a back-office operator and
// applies status changes to it optimistically.
package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"orderdesk/internal/listing"
	"orderdesk/internal/model"
	"orderdesk/internal/workflow"

	"github.com/rs/zerolog"
)

// ErrSuperseded is returned by a load whose response arrived after a newer
// load was started. The response is discarded.
var ErrSuperseded = errors.New("board: superseded by a newer request")

// Source is the backend the board reads from and writes to.
type Source interface {
	ListOrders(ctx context.Context, params model.ListParams) (listing.Page, error)
	UpdateStatus(ctx context.Context, id string, target model.Status) (*model.Order, error)
}

// View is a point-in-time copy of the board.
type View struct {
	Orders     []model.Order
	Total      int
	Page       int
	TotalPages int
	Params     model.ListParams
	Loaded     bool
}

// Board is safe for concurrent use.
type Board struct {
	source Source
	role   model.Role
	logger zerolog.Logger

	mu         sync.Mutex
	params     model.ListParams
	page       listing.Page
	loaded     bool
	seq        uint64
	generation uint64
	cancel     context.CancelFunc
}

// New creates a board for an operator acting as role. Couriers see the
// courier listing.
func New(source Source, role model.Role, limit int, logger zerolog.Logger) *Board {
	params := model.ListParams{Page: 1, Limit: listing.NormalizeLimit(limit), Scope: model.ScopeAdmin}
	if role == model.RoleCourier {
		params.Scope = model.ScopeCourier
	}
	return &Board{
		source: source,
		role:   role,
		logger: logger.With().Str("component", "board").Logger(),
		params: params,
		page:   listing.Page{Items: []model.Order{}},
	}
}

// View returns a copy of the current state.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	return View{
		Orders:     slices.Clone(b.page.Items),
		Total:      b.page.Total,
		Page:       b.params.Page,
		TotalPages: listing.TotalPages(b.page.Total, b.params.Limit),
		Params:     b.params,
		Loaded:     b.loaded,
	}
}

// Refresh reloads the current page.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	params := b.params
	b.mu.Unlock()
	return b.load(ctx, params)
}

// Goto loads the given 1-indexed page. Pages outside 1..TotalPages are
// ignored. Before the first load the board has a single page.
func (b *Board) Goto(ctx context.Context, page int) error {
	b.mu.Lock()
	params := b.params
	outOfRange := !listing.InRange(page, b.page.Total, params.Limit)
	b.mu.Unlock()

	if outOfRange {
		b.logger.Debug().Int("page", page).Msg("page out of range, ignoring")
		return nil
	}
	params.Page = page
	return b.load(ctx, params)
}

// SetCriteria changes the status filter and search term and returns to the
// first page.
func (b *Board) SetCriteria(ctx context.Context, status model.Status, search string) error {
	b.mu.Lock()
	params := b.params
	b.mu.Unlock()

	params.Status = status
	params.Search = strings.TrimSpace(search)
	params.Page = 1
	return b.load(ctx, params)
}

// load fetches params and installs the result if no newer load started in
// the meantime. Starting a load cancels the one in flight.
func (b *Board) load(ctx context.Context, params model.ListParams) error {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	if b.cancel != nil {
		b.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	page, err := b.source.ListOrders(fetchCtx, params)

	b.mu.Lock()
	defer b.mu.Unlock()
	cancel()

	if seq != b.seq {
		b.logger.Debug().
			Uint64("seq", seq).
			Uint64("latest", b.seq).
			Msg("discarding stale list response")
		return ErrSuperseded
	}
	b.cancel = nil

	if err != nil {
		b.logger.Error().
			Err(err).
			Int("page", params.Page).
			Msg("failed to load orders")
		return fmt.Errorf("failed to load orders: %w", err)
	}

	b.params = params
	b.page = listing.Page{
		Items: listing.Filter(page.Items, listing.CriteriaFor(params)),
		Total: page.Total,
	}
	b.loaded = true
	b.generation++
	return nil
}

// Transition moves order id to target. The change is checked locally and
// applied to the board before the backend is called; if the backend rejects
// it the board is restored.
func (b *Board) Transition(ctx context.Context, id string, target model.Status) (model.Order, error) {
	b.mu.Lock()
	idx := b.indexOf(id)
	if idx < 0 {
		b.mu.Unlock()
		return model.Order{}, model.NewDomainError(model.ErrCodeNotFound, "order "+id+" is not on the board")
	}
	prev := b.page.Items[idx]

	next, err := workflow.ApplyTransition(prev, target, b.role)
	if err != nil {
		b.mu.Unlock()
		b.logger.Warn().
			Str("order_id", id).
			Str("from", string(prev.Status)).
			Str("to", string(target)).
			Msg("transition rejected locally")
		return model.Order{}, err
	}
	if next.Status == prev.Status {
		b.mu.Unlock()
		return prev, nil
	}

	b.page.Items[idx] = next
	b.reapplyFilter()
	generation := b.generation
	b.mu.Unlock()

	updated, err := b.source.UpdateStatus(ctx, id, target)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.rollback(prev, next.Status, idx, generation)
		b.logger.Warn().
			Err(err).
			Str("order_id", id).
			Str("status", string(prev.Status)).
			Msg("status update failed, reverted")
		return model.Order{}, err
	}

	result := next
	if updated != nil {
		result = *updated
	}
	if i := b.indexOf(id); i >= 0 {
		b.page.Items[i] = result
		b.reapplyFilter()
	}
	return result, nil
}

// Advance moves a courier order one delivery step forward.
func (b *Board) Advance(ctx context.Context, id string) (model.Order, error) {
	b.mu.Lock()
	idx := b.indexOf(id)
	var current model.Status
	if idx >= 0 {
		current = b.page.Items[idx].Status
	}
	b.mu.Unlock()

	if idx < 0 {
		return model.Order{}, model.NewDomainError(model.ErrCodeNotFound, "order "+id+" is not on the board")
	}
	next, ok := workflow.Advance(current)
	if !ok {
		return model.Order{}, model.NewDomainError(model.ErrCodeInvalidTransition,
			"order "+id+" has no next delivery step from "+string(current))
	}
	return b.Transition(ctx, id, next)
}

// rollback restores prev if the board still shows the optimistic status. A
// row filtered out of the page is put back where it was, unless the page has
// since been reloaded.
func (b *Board) rollback(prev model.Order, optimistic model.Status, idx int, generation uint64) {
	if i := b.indexOf(prev.ID); i >= 0 {
		if b.page.Items[i].Status == optimistic {
			b.page.Items[i] = prev
		}
		return
	}
	if generation != b.generation {
		return
	}
	idx = min(idx, len(b.page.Items))
	b.page.Items = slices.Insert(b.page.Items, idx, prev)
	b.page.Total++
}

func (b *Board) reapplyFilter() {
	before := len(b.page.Items)
	b.page.Items = listing.Filter(b.page.Items, listing.CriteriaFor(b.params))
	b.page.Total -= before - len(b.page.Items)
}

func (b *Board) indexOf(id string) int {
	return slices.IndexFunc(b.page.Items, func(o model.Order) bool { return o.ID == id })
}
