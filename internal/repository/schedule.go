package repository

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"nestegg-client/internal/cache"
	"nestegg-client/internal/domain"
	"nestegg-client/internal/flight"
	"nestegg-client/internal/invalidation"
	"nestegg-client/internal/observability"
	"nestegg-client/internal/remote"
)

// ScheduleSource is the remote surface the schedule repository needs.
type ScheduleSource interface {
	ListSchedules(ctx context.Context) ([]domain.DCASchedule, error)
	CreateSchedule(ctx context.Context, input domain.CreateScheduleInput) (domain.DCASchedule, error)
	UpdateSchedule(ctx context.Context, id string, input domain.UpdateScheduleInput) (domain.DCASchedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	PauseSchedule(ctx context.Context, id string) (domain.DCASchedule, error)
	ResumeSchedule(ctx context.Context, id string) (domain.DCASchedule, error)
}

var _ ScheduleSource = (*remote.ScheduleSource)(nil)

// ScheduleRepository caches the recurring-investment schedules. Every
// mutation clears the collection: the server recomputes next-run times, so a
// local merge would show wrong dates.
type ScheduleRepository struct {
	source   ScheduleSource
	inv      *invalidation.Invalidator
	logger   *zap.Logger
	validate *validator.Validate

	schedules  *cache.Store[string, []domain.DCASchedule]
	listFlight flight.Group[[]domain.DCASchedule]
}

// NewScheduleRepository wires the repository and registers the schedules
// invalidation target.
func NewScheduleRepository(source ScheduleSource, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *ScheduleRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inv == nil {
		inv = invalidation.NewInvalidator(logger)
	}
	r := &ScheduleRepository{
		source:    source,
		inv:       inv,
		logger:    logger.Named("schedule"),
		validate:  newValidator(),
		schedules: cache.NewStore(cache.FreshDefault, storeOpts[[]domain.DCASchedule](logger, metrics, "schedules")...),
	}
	inv.Register(invalidation.CacheSchedules, collectionTarget[domain.DCASchedule]{
		store: r.schedules,
		key:   allKey,
		id:    func(s domain.DCASchedule) string { return s.ID },
	})
	return r
}

// FetchSchedules returns all DCA schedules, cache-first.
func (r *ScheduleRepository) FetchSchedules(ctx context.Context) ([]domain.DCASchedule, error) {
	return fetchThrough(ctx, r.schedules, &r.listFlight, allKey, r.source.ListSchedules)
}

// CreateSchedule creates a recurring investment.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, input domain.CreateScheduleInput) (domain.DCASchedule, error) {
	if err := checkInput(r.validate, "schedule.create", input); err != nil {
		return domain.DCASchedule{}, err
	}
	if err := requirePositive("schedule.create", input.Amount); err != nil {
		return domain.DCASchedule{}, err
	}
	input.Symbol = domain.NormalizeSymbol(input.Symbol)
	created, err := r.source.CreateSchedule(ctx, input)
	if err != nil {
		return domain.DCASchedule{}, err
	}
	r.inv.Apply(invalidation.OpScheduleCreated, invalidation.Scope{EntityID: created.ID})
	return created, nil
}

// UpdateSchedule edits amount and frequency.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, id string, input domain.UpdateScheduleInput) (domain.DCASchedule, error) {
	if err := checkInput(r.validate, "schedule.update", input); err != nil {
		return domain.DCASchedule{}, err
	}
	if err := requirePositive("schedule.update", input.Amount); err != nil {
		return domain.DCASchedule{}, err
	}
	updated, err := r.source.UpdateSchedule(ctx, id, input)
	if err != nil {
		return domain.DCASchedule{}, err
	}
	r.inv.Apply(invalidation.OpScheduleUpdated, invalidation.Scope{EntityID: id})
	return updated, nil
}

// DeleteSchedule stops and removes a schedule.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	if err := r.source.DeleteSchedule(ctx, id); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpScheduleDeleted, invalidation.Scope{EntityID: id})
	return nil
}

// PauseSchedule suspends a schedule without deleting it.
func (r *ScheduleRepository) PauseSchedule(ctx context.Context, id string) (domain.DCASchedule, error) {
	paused, err := r.source.PauseSchedule(ctx, id)
	if err != nil {
		return domain.DCASchedule{}, err
	}
	r.inv.Apply(invalidation.OpSchedulePaused, invalidation.Scope{EntityID: id})
	return paused, nil
}

// ResumeSchedule reactivates a paused schedule.
func (r *ScheduleRepository) ResumeSchedule(ctx context.Context, id string) (domain.DCASchedule, error) {
	resumed, err := r.source.ResumeSchedule(ctx, id)
	if err != nil {
		return domain.DCASchedule{}, err
	}
	r.inv.Apply(invalidation.OpScheduleResumed, invalidation.Scope{EntityID: id})
	return resumed, nil
}

// ActiveSchedules is a derived view: schedules currently running.
func (r *ScheduleRepository) ActiveSchedules(ctx context.Context) ([]domain.DCASchedule, error) {
	schedules, err := r.FetchSchedules(ctx)
	if err != nil {
		return nil, err
	}
	return filterView(schedules, func(s domain.DCASchedule) bool { return s.Active }), nil
}

// SchedulesBySymbol is a derived view over the cached collection.
func (r *ScheduleRepository) SchedulesBySymbol(ctx context.Context, symbol string) ([]domain.DCASchedule, error) {
	symbol = domain.NormalizeSymbol(symbol)
	schedules, err := r.FetchSchedules(ctx)
	if err != nil {
		return nil, err
	}
	return filterView(schedules, func(s domain.DCASchedule) bool { return s.Symbol == symbol }), nil
}

// SchedulesByPortfolio is a derived view over the cached collection.
func (r *ScheduleRepository) SchedulesByPortfolio(ctx context.Context, portfolioID string) ([]domain.DCASchedule, error) {
	schedules, err := r.FetchSchedules(ctx)
	if err != nil {
		return nil, err
	}
	return filterView(schedules, func(s domain.DCASchedule) bool { return s.PortfolioID == portfolioID }), nil
}

// InvalidateCache clears the schedule cache.
func (r *ScheduleRepository) InvalidateCache() {
	r.schedules.Clear()
}

// Stats reports per-cache hit/miss statistics.
func (r *ScheduleRepository) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"schedules": r.schedules.GetStats(),
	}
}
