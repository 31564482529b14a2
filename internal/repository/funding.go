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

// FundingSource is the remote surface the funding repository needs.
type FundingSource interface {
	GetBalance(ctx context.Context) (domain.FundingBalance, error)
	ListTransfers(ctx context.Context) ([]domain.Transfer, error)
	InitiateDeposit(ctx context.Context, input domain.TransferInput) (domain.Transfer, error)
	InitiateWithdrawal(ctx context.Context, input domain.TransferInput) (domain.Transfer, error)
	ConfirmTransfer(ctx context.Context, transferID string) (domain.Transfer, error)
	CancelTransfer(ctx context.Context, transferID string) (domain.Transfer, error)
}

var _ FundingSource = (*remote.FundingSource)(nil)

// FundingRepository caches the uninvested cash balance (short freshness
// window, money moves fast) and the transfer history. Initiated transfers are
// merged into the cached history; confirm and cancel clear it because the
// server may settle amounts differently.
type FundingRepository struct {
	source   FundingSource
	inv      *invalidation.Invalidator
	logger   *zap.Logger
	validate *validator.Validate

	balance   *cache.Store[string, domain.FundingBalance]
	transfers *cache.Store[string, []domain.Transfer]

	balanceFlight   flight.Group[domain.FundingBalance]
	transfersFlight flight.Group[[]domain.Transfer]
}

// NewFundingRepository wires the repository and registers the balance and
// transfers invalidation targets.
func NewFundingRepository(source FundingSource, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *FundingRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inv == nil {
		inv = invalidation.NewInvalidator(logger)
	}
	r := &FundingRepository{
		source:    source,
		inv:       inv,
		logger:    logger.Named("funding"),
		validate:  newValidator(),
		balance:   cache.NewStore(cache.FreshFundingBalance, storeOpts[domain.FundingBalance](logger, metrics, "funding_balance")...),
		transfers: cache.NewStore(cache.FreshDefault, storeOpts[[]domain.Transfer](logger, metrics, "transfers")...),
	}
	inv.Register(invalidation.CacheFundingBalance, wholeStoreTarget[domain.FundingBalance]{r.balance})
	inv.Register(invalidation.CacheTransfers, collectionTarget[domain.Transfer]{
		store: r.transfers,
		key:   allKey,
		id:    func(t domain.Transfer) string { return t.ID },
	})
	return r
}

// FetchBalance returns the uninvested cash balance, cache-first.
func (r *FundingRepository) FetchBalance(ctx context.Context) (domain.FundingBalance, error) {
	return fetchThrough(ctx, r.balance, &r.balanceFlight, singletonKey, r.source.GetBalance)
}

// FetchTransfers returns the transfer history, cache-first.
func (r *FundingRepository) FetchTransfers(ctx context.Context) ([]domain.Transfer, error) {
	return fetchThrough(ctx, r.transfers, &r.transfersFlight, allKey, r.source.ListTransfers)
}

// TransfersByStatus is a derived view over the cached history.
func (r *FundingRepository) TransfersByStatus(ctx context.Context, status domain.TransferStatus) ([]domain.Transfer, error) {
	transfers, err := r.FetchTransfers(ctx)
	if err != nil {
		return nil, err
	}
	return filterView(transfers, func(t domain.Transfer) bool { return t.Status == status }), nil
}

// InitiateDeposit starts moving money in from the user's bank. The new
// transfer is merged into the cached history and the balance is staled.
func (r *FundingRepository) InitiateDeposit(ctx context.Context, input domain.TransferInput) (domain.Transfer, error) {
	if err := r.checkTransfer("funding.deposit", input); err != nil {
		return domain.Transfer{}, err
	}
	transfer, err := r.source.InitiateDeposit(ctx, input)
	if err != nil {
		return domain.Transfer{}, err
	}
	r.mergeTransfer(transfer)
	r.inv.Apply(invalidation.OpDepositInitiated, invalidation.Scope{EntityID: transfer.ID})
	return transfer, nil
}

// InitiateWithdrawal starts moving money out. A withdrawal larger than the
// last known available balance is refused before any network call.
func (r *FundingRepository) InitiateWithdrawal(ctx context.Context, input domain.TransferInput) (domain.Transfer, error) {
	if err := r.checkTransfer("funding.withdrawal", input); err != nil {
		return domain.Transfer{}, err
	}
	if ent, ok := r.balance.GetRaw(singletonKey); ok && input.Amount.GreaterThan(ent.Value.Available) {
		return domain.Transfer{}, apperrors.DomainRule("INSUFFICIENT_FUNDS", "withdrawal exceeds the available balance").
			WithOperation("funding.withdrawal").
			Build()
	}
	transfer, err := r.source.InitiateWithdrawal(ctx, input)
	if err != nil {
		return domain.Transfer{}, err
	}
	r.mergeTransfer(transfer)
	r.inv.Apply(invalidation.OpWithdrawalInitiated, invalidation.Scope{EntityID: transfer.ID})
	return transfer, nil
}

// ConfirmTransfer finalizes a pending transfer.
func (r *FundingRepository) ConfirmTransfer(ctx context.Context, transferID string) (domain.Transfer, error) {
	transfer, err := r.source.ConfirmTransfer(ctx, transferID)
	if err != nil {
		return domain.Transfer{}, err
	}
	r.inv.Apply(invalidation.OpTransferConfirmed, invalidation.Scope{EntityID: transferID})
	return transfer, nil
}

// CancelTransfer aborts a transfer. A transfer the cache already knows to be
// settled is refused locally.
func (r *FundingRepository) CancelTransfer(ctx context.Context, transferID string) (domain.Transfer, error) {
	if cached, ok := r.cachedTransfer(transferID); ok && !cached.Cancellable() {
		return domain.Transfer{}, apperrors.DomainRule("TRANSFER_NOT_CANCELLABLE", "only pending transfers can be cancelled").
			WithOperation("funding.cancel").
			WithResource(transferID).
			Build()
	}
	transfer, err := r.source.CancelTransfer(ctx, transferID)
	if err != nil {
		return domain.Transfer{}, err
	}
	r.inv.Apply(invalidation.OpTransferCancelled, invalidation.Scope{EntityID: transferID})
	return transfer, nil
}

// InvalidateCache clears the balance and transfer caches.
func (r *FundingRepository) InvalidateCache() {
	r.balance.Clear()
	r.transfers.Clear()
}

// Stats reports per-cache hit/miss statistics.
func (r *FundingRepository) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"funding_balance": r.balance.GetStats(),
		"transfers":       r.transfers.GetStats(),
	}
}

func (r *FundingRepository) checkTransfer(op string, input domain.TransferInput) error {
	if err := checkInput(r.validate, op, input); err != nil {
		return err
	}
	return requirePositive(op, input.Amount)
}

func (r *FundingRepository) mergeTransfer(t domain.Transfer) {
	upsert(r.transfers, allKey, t, func(existing domain.Transfer) bool { return existing.ID == t.ID })
}

// cachedTransfer looks a transfer up in the last known history, stale or
// fresh.
func (r *FundingRepository) cachedTransfer(id string) (domain.Transfer, bool) {
	ent, ok := r.transfers.GetRaw(allKey)
	if !ok {
		return domain.Transfer{}, false
	}
	for _, t := range ent.Value {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Transfer{}, false
}
