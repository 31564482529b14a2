package repository

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"nestegg-client/internal/cache"
	"nestegg-client/internal/domain"
	apperrors "nestegg-client/internal/errors"
	"nestegg-client/internal/flight"
	"nestegg-client/internal/invalidation"
	"nestegg-client/internal/observability"
	"nestegg-client/internal/remote"
)

// PortfolioSource is the remote surface the portfolio repository needs.
type PortfolioSource interface {
	ListPortfolios(ctx context.Context) ([]domain.Portfolio, error)
	GetPortfolio(ctx context.Context, id string) (domain.Portfolio, error)
	CreatePortfolio(ctx context.Context, input domain.CreatePortfolioInput) (domain.Portfolio, error)
	UpdatePortfolio(ctx context.Context, id string, input domain.UpdatePortfolioInput) (domain.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string) error

	ListHoldings(ctx context.Context, portfolioID string) ([]domain.Holding, error)
	AddHolding(ctx context.Context, portfolioID string, input domain.CreateHoldingInput) (domain.Holding, error)
	UpdateHolding(ctx context.Context, portfolioID, holdingID string, input domain.UpdateHoldingInput) (domain.Holding, error)
	RemoveHolding(ctx context.Context, portfolioID, holdingID string) error

	ListLedger(ctx context.Context, portfolioID string) ([]domain.LedgerEntry, error)
	AddLedgerEntry(ctx context.Context, portfolioID string, input domain.CreateLedgerEntryInput) (domain.LedgerEntry, error)
	UpdateLedgerEntry(ctx context.Context, portfolioID, entryID string, input domain.CreateLedgerEntryInput) (domain.LedgerEntry, error)
	DeleteLedgerEntry(ctx context.Context, portfolioID, entryID string) error

	DepositCash(ctx context.Context, portfolioID string, input domain.CashOpInput) (domain.Portfolio, error)
	WithdrawCash(ctx context.Context, portfolioID string, input domain.CashOpInput) (domain.Portfolio, error)
	TransferCash(ctx context.Context, portfolioID string, input domain.CashOpInput) (domain.Portfolio, error)
}

var _ PortfolioSource = (*remote.PortfolioSource)(nil)

// PortfolioRepository caches the portfolio list, per-portfolio holdings and
// ledgers, and a side cache of individually fetched portfolios.
type PortfolioRepository struct {
	source   PortfolioSource
	inv      *invalidation.Invalidator
	logger   *zap.Logger
	validate *validator.Validate

	list     *cache.Store[string, []domain.Portfolio]
	single   *cache.Store[string, domain.Portfolio]
	holdings *cache.Store[string, []domain.Holding]
	ledger   *cache.Store[string, []domain.LedgerEntry]

	listFlight     flight.Group[[]domain.Portfolio]
	singleFlight   flight.Group[domain.Portfolio]
	holdingsFlight flight.Group[[]domain.Holding]
	ledgerFlight   flight.Group[[]domain.LedgerEntry]
}

// portfolioListTarget clears both the collection and the per-id side cache;
// they hold the same entities and must stale together.
type portfolioListTarget struct {
	r *PortfolioRepository
}

func (t portfolioListTarget) ClearAll() {
	t.r.list.Clear()
	t.r.single.Clear()
}

func (t portfolioListTarget) Remove(entityID string) {
	removeWhere(t.r.list, allKey, func(p domain.Portfolio) bool { return p.ID == entityID })
	t.r.single.Remove(entityID)
}

func (t portfolioListTarget) ClearScope(string) {
	t.ClearAll()
}

// NewPortfolioRepository wires the repository and registers its caches as
// invalidation targets.
func NewPortfolioRepository(source PortfolioSource, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *PortfolioRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inv == nil {
		inv = invalidation.NewInvalidator(logger)
	}
	r := &PortfolioRepository{
		source:   source,
		inv:      inv,
		logger:   logger.Named("portfolio"),
		validate: newValidator(),
		list:     cache.NewStore(cache.FreshPortfolioList, storeOpts[[]domain.Portfolio](logger, metrics, "portfolio_list")...),
		single:   cache.NewStore(cache.FreshPortfolioList, storeOpts[domain.Portfolio](logger, metrics, "portfolio")...),
		holdings: cache.NewStore(cache.FreshPortfolioList, storeOpts[[]domain.Holding](logger, metrics, "holdings")...),
		ledger:   cache.NewStore(cache.FreshPortfolioList, storeOpts[[]domain.LedgerEntry](logger, metrics, "ledger")...),
	}
	inv.Register(invalidation.CachePortfolioList, portfolioListTarget{r})
	inv.Register(invalidation.CacheHoldings, scopedStoreTarget[[]domain.Holding]{r.holdings})
	inv.Register(invalidation.CacheLedger, scopedStoreTarget[[]domain.LedgerEntry]{r.ledger})
	return r
}

// FetchPortfolios returns all portfolios, cache-first.
func (r *PortfolioRepository) FetchPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	return fetchThrough(ctx, r.list, &r.listFlight, allKey, r.source.ListPortfolios)
}

// FetchPortfolio returns one portfolio. A fresh cached list answers without
// any network traffic; otherwise the per-id side cache and then the server
// are consulted.
func (r *PortfolioRepository) FetchPortfolio(ctx context.Context, id string) (domain.Portfolio, error) {
	if portfolios, ok := r.list.Get(allKey); ok {
		for _, p := range portfolios {
			if p.ID == id {
				return p, nil
			}
		}
	}
	p, err := fetchThrough(ctx, r.single, &r.singleFlight, id, func(ctx context.Context) (domain.Portfolio, error) {
		return r.source.GetPortfolio(ctx, id)
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			r.single.Remove(id)
			removeWhere(r.list, allKey, func(p domain.Portfolio) bool { return p.ID == id })
		}
		return domain.Portfolio{}, err
	}
	return p, nil
}

// CreatePortfolio creates a portfolio and merges it into the cached list.
func (r *PortfolioRepository) CreatePortfolio(ctx context.Context, input domain.CreatePortfolioInput) (domain.Portfolio, error) {
	if err := checkInput(r.validate, "portfolio.create", input); err != nil {
		return domain.Portfolio{}, err
	}
	created, err := r.source.CreatePortfolio(ctx, input)
	if err != nil {
		return domain.Portfolio{}, err
	}
	upsert(r.list, allKey, created, func(p domain.Portfolio) bool { return p.ID == created.ID })
	r.single.Set(created.ID, created)
	r.inv.Apply(invalidation.OpPortfolioCreated, invalidation.Scope{EntityID: created.ID})
	return created, nil
}

// UpdatePortfolio renames a portfolio. The list is invalidated rather than
// merged; the returned portfolio reseeds the side cache.
func (r *PortfolioRepository) UpdatePortfolio(ctx context.Context, id string, input domain.UpdatePortfolioInput) (domain.Portfolio, error) {
	if err := checkInput(r.validate, "portfolio.update", input); err != nil {
		return domain.Portfolio{}, err
	}
	updated, err := r.source.UpdatePortfolio(ctx, id, input)
	if err != nil {
		return domain.Portfolio{}, err
	}
	r.inv.Apply(invalidation.OpPortfolioUpdated, invalidation.Scope{EntityID: id})
	r.single.Set(updated.ID, updated)
	return updated, nil
}

// DeletePortfolio deletes a portfolio. The default portfolio is protected
// locally: if the cached list shows the target as default the call is refused
// before any network traffic.
func (r *PortfolioRepository) DeletePortfolio(ctx context.Context, id string) error {
	if ent, ok := r.list.GetRaw(allKey); ok {
		for _, p := range ent.Value {
			if p.ID == id && p.IsDefault {
				return apperrors.DomainRule("CANNOT_DELETE_DEFAULT", "the default portfolio cannot be deleted").
					WithOperation("portfolio.delete").
					WithResource(id).
					Build()
			}
		}
	}
	if err := r.source.DeletePortfolio(ctx, id); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpPortfolioDeleted, invalidation.Scope{EntityID: id, ScopeID: id})
	return nil
}

// FetchHoldings returns one portfolio's holdings, cache-first.
func (r *PortfolioRepository) FetchHoldings(ctx context.Context, portfolioID string) ([]domain.Holding, error) {
	return fetchThrough(ctx, r.holdings, &r.holdingsFlight, portfolioID, func(ctx context.Context) ([]domain.Holding, error) {
		return r.source.ListHoldings(ctx, portfolioID)
	})
}

// AddHolding adds a position. Holdings and aggregates are recomputed
// server-side, so the mutation invalidates rather than merges.
func (r *PortfolioRepository) AddHolding(ctx context.Context, portfolioID string, input domain.CreateHoldingInput) (domain.Holding, error) {
	if err := checkInput(r.validate, "holding.add", input); err != nil {
		return domain.Holding{}, err
	}
	input.Symbol = domain.NormalizeSymbol(input.Symbol)
	created, err := r.source.AddHolding(ctx, portfolioID, input)
	if err != nil {
		return domain.Holding{}, err
	}
	r.inv.Apply(invalidation.OpHoldingAdded, invalidation.Scope{EntityID: created.ID, ScopeID: portfolioID})
	return created, nil
}

// UpdateHolding adjusts a position's quantity and cost basis.
func (r *PortfolioRepository) UpdateHolding(ctx context.Context, portfolioID, holdingID string, input domain.UpdateHoldingInput) (domain.Holding, error) {
	if err := checkInput(r.validate, "holding.update", input); err != nil {
		return domain.Holding{}, err
	}
	updated, err := r.source.UpdateHolding(ctx, portfolioID, holdingID, input)
	if err != nil {
		return domain.Holding{}, err
	}
	r.inv.Apply(invalidation.OpHoldingUpdated, invalidation.Scope{EntityID: holdingID, ScopeID: portfolioID})
	return updated, nil
}

// RemoveHolding closes a position.
func (r *PortfolioRepository) RemoveHolding(ctx context.Context, portfolioID, holdingID string) error {
	if err := r.source.RemoveHolding(ctx, portfolioID, holdingID); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpHoldingRemoved, invalidation.Scope{EntityID: holdingID, ScopeID: portfolioID})
	return nil
}

// FetchLedger returns one portfolio's transaction ledger, cache-first.
func (r *PortfolioRepository) FetchLedger(ctx context.Context, portfolioID string) ([]domain.LedgerEntry, error) {
	return fetchThrough(ctx, r.ledger, &r.ledgerFlight, portfolioID, func(ctx context.Context) ([]domain.LedgerEntry, error) {
		return r.source.ListLedger(ctx, portfolioID)
	})
}

// AddLedgerEntry records a transaction. Ledger entries move holdings and
// aggregates, so the cascade clears all three caches for the portfolio.
func (r *PortfolioRepository) AddLedgerEntry(ctx context.Context, portfolioID string, input domain.CreateLedgerEntryInput) (domain.LedgerEntry, error) {
	if err := checkInput(r.validate, "ledger.add", input); err != nil {
		return domain.LedgerEntry{}, err
	}
	created, err := r.source.AddLedgerEntry(ctx, portfolioID, input)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	r.inv.Apply(invalidation.OpLedgerEntryAdded, invalidation.Scope{EntityID: created.ID, ScopeID: portfolioID})
	return created, nil
}

// UpdateLedgerEntry corrects a recorded transaction.
func (r *PortfolioRepository) UpdateLedgerEntry(ctx context.Context, portfolioID, entryID string, input domain.CreateLedgerEntryInput) (domain.LedgerEntry, error) {
	if err := checkInput(r.validate, "ledger.update", input); err != nil {
		return domain.LedgerEntry{}, err
	}
	updated, err := r.source.UpdateLedgerEntry(ctx, portfolioID, entryID, input)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	r.inv.Apply(invalidation.OpLedgerEntryUpdated, invalidation.Scope{EntityID: entryID, ScopeID: portfolioID})
	return updated, nil
}

// DeleteLedgerEntry removes a recorded transaction.
func (r *PortfolioRepository) DeleteLedgerEntry(ctx context.Context, portfolioID, entryID string) error {
	if err := r.source.DeleteLedgerEntry(ctx, portfolioID, entryID); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpLedgerEntryDeleted, invalidation.Scope{EntityID: entryID, ScopeID: portfolioID})
	return nil
}

// DepositCash adds cash to a portfolio.
func (r *PortfolioRepository) DepositCash(ctx context.Context, portfolioID string, input domain.CashOpInput) (domain.Portfolio, error) {
	if err := r.checkCashOp("cash.deposit", input); err != nil {
		return domain.Portfolio{}, err
	}
	updated, err := r.source.DepositCash(ctx, portfolioID, input)
	if err != nil {
		return domain.Portfolio{}, err
	}
	r.inv.Apply(invalidation.OpCashDeposited, invalidation.Scope{ScopeID: portfolioID})
	r.single.Set(updated.ID, updated)
	return updated, nil
}

// WithdrawCash removes cash from a portfolio. If the cached portfolio shows
// less cash than requested, the call is refused locally.
func (r *PortfolioRepository) WithdrawCash(ctx context.Context, portfolioID string, input domain.CashOpInput) (domain.Portfolio, error) {
	if err := r.checkCashOp("cash.withdraw", input); err != nil {
		return domain.Portfolio{}, err
	}
	if cached, ok := r.cachedPortfolio(portfolioID); ok && input.Amount.GreaterThan(cached.CashBalance) {
		return domain.Portfolio{}, apperrors.DomainRule("INSUFFICIENT_CASH", "withdrawal exceeds the portfolio's cash balance").
			WithOperation("cash.withdraw").
			WithResource(portfolioID).
			Build()
	}
	updated, err := r.source.WithdrawCash(ctx, portfolioID, input)
	if err != nil {
		return domain.Portfolio{}, err
	}
	r.inv.Apply(invalidation.OpCashWithdrawn, invalidation.Scope{ScopeID: portfolioID})
	r.single.Set(updated.ID, updated)
	return updated, nil
}

// TransferCash moves cash between two portfolios. The response body is the
// source portfolio.
func (r *PortfolioRepository) TransferCash(ctx context.Context, portfolioID string, input domain.CashOpInput) (domain.Portfolio, error) {
	if err := r.checkCashOp("cash.transfer", input); err != nil {
		return domain.Portfolio{}, err
	}
	if input.ToPortfolioID == "" {
		return domain.Portfolio{}, apperrors.Validation("MISSING_DESTINATION", "transfers need a destination portfolio").
			WithOperation("cash.transfer").
			Build()
	}
	if input.ToPortfolioID == portfolioID {
		return domain.Portfolio{}, apperrors.DomainRule("SELF_TRANSFER", "cannot transfer cash to the same portfolio").
			WithOperation("cash.transfer").
			WithResource(portfolioID).
			Build()
	}
	if cached, ok := r.cachedPortfolio(portfolioID); ok && input.Amount.GreaterThan(cached.CashBalance) {
		return domain.Portfolio{}, apperrors.DomainRule("INSUFFICIENT_CASH", "transfer exceeds the portfolio's cash balance").
			WithOperation("cash.transfer").
			WithResource(portfolioID).
			Build()
	}
	updated, err := r.source.TransferCash(ctx, portfolioID, input)
	if err != nil {
		return domain.Portfolio{}, err
	}
	r.inv.Apply(invalidation.OpCashTransferred, invalidation.Scope{ScopeID: portfolioID})
	r.single.Set(updated.ID, updated)
	return updated, nil
}

// InvalidateCache clears every portfolio-domain cache.
func (r *PortfolioRepository) InvalidateCache() {
	r.list.Clear()
	r.single.Clear()
	r.holdings.Clear()
	r.ledger.Clear()
}

// Stats reports per-cache hit/miss statistics.
func (r *PortfolioRepository) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"portfolio_list": r.list.GetStats(),
		"portfolio":      r.single.GetStats(),
		"holdings":       r.holdings.GetStats(),
		"ledger":         r.ledger.GetStats(),
	}
}

func (r *PortfolioRepository) checkCashOp(op string, input domain.CashOpInput) error {
	if err := checkInput(r.validate, op, input); err != nil {
		return err
	}
	return requirePositive(op, input.Amount)
}

// cachedPortfolio returns the most recent locally known state of a portfolio,
// stale or fresh, preferring the list over the side cache.
func (r *PortfolioRepository) cachedPortfolio(id string) (domain.Portfolio, bool) {
	if ent, ok := r.list.GetRaw(allKey); ok {
		for _, p := range ent.Value {
			if p.ID == id {
				return p, true
			}
		}
	}
	if ent, ok := r.single.GetRaw(id); ok {
		return ent.Value, true
	}
	return domain.Portfolio{}, false
}
