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

// GoalSource is the remote surface the goal repository needs.
type GoalSource interface {
	ListGoals(ctx context.Context) ([]domain.Goal, error)
	GetGoal(ctx context.Context, id string) (domain.Goal, error)
	CreateGoal(ctx context.Context, input domain.CreateGoalInput) (domain.Goal, error)
	UpdateGoal(ctx context.Context, id string, input domain.UpdateGoalInput) (domain.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	ArchiveGoal(ctx context.Context, id string) (domain.Goal, error)
	UnarchiveGoal(ctx context.Context, id string) (domain.Goal, error)
}

var _ GoalSource = (*remote.GoalSource)(nil)

// GoalRepository caches the goal collection plus a side cache of individually
// fetched goals. Goal mutations are merged in place; only deletion goes
// through the invalidation table.
type GoalRepository struct {
	source   GoalSource
	inv      *invalidation.Invalidator
	logger   *zap.Logger
	validate *validator.Validate

	goals  *cache.Store[string, []domain.Goal]
	single *cache.Store[string, domain.Goal]

	listFlight   flight.Group[[]domain.Goal]
	singleFlight flight.Group[domain.Goal]
}

// goalsTarget keeps the collection and the side cache staling together.
type goalsTarget struct {
	r *GoalRepository
}

func (t goalsTarget) ClearAll() {
	t.r.goals.Clear()
	t.r.single.Clear()
}

func (t goalsTarget) Remove(entityID string) {
	removeWhere(t.r.goals, allKey, func(g domain.Goal) bool { return g.ID == entityID })
	t.r.single.Remove(entityID)
}

func (t goalsTarget) ClearScope(string) {
	t.ClearAll()
}

// NewGoalRepository wires the repository and registers its caches as the
// goals invalidation target.
func NewGoalRepository(source GoalSource, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *GoalRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inv == nil {
		inv = invalidation.NewInvalidator(logger)
	}
	r := &GoalRepository{
		source:   source,
		inv:      inv,
		logger:   logger.Named("goal"),
		validate: newValidator(),
		goals:    cache.NewStore(cache.FreshDefault, storeOpts[[]domain.Goal](logger, metrics, "goals")...),
		single:   cache.NewStore(cache.FreshDefault, storeOpts[domain.Goal](logger, metrics, "goal")...),
	}
	inv.Register(invalidation.CacheGoals, goalsTarget{r})
	return r
}

// FetchGoals returns all savings goals, cache-first.
func (r *GoalRepository) FetchGoals(ctx context.Context) ([]domain.Goal, error) {
	return fetchThrough(ctx, r.goals, &r.listFlight, allKey, r.source.ListGoals)
}

// FetchGoal returns one goal, answering from a fresh cached collection when
// possible.
func (r *GoalRepository) FetchGoal(ctx context.Context, id string) (domain.Goal, error) {
	if goals, ok := r.goals.Get(allKey); ok {
		for _, g := range goals {
			if g.ID == id {
				return g, nil
			}
		}
	}
	g, err := fetchThrough(ctx, r.single, &r.singleFlight, id, func(ctx context.Context) (domain.Goal, error) {
		return r.source.GetGoal(ctx, id)
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			r.single.Remove(id)
			removeWhere(r.goals, allKey, func(g domain.Goal) bool { return g.ID == id })
		}
		return domain.Goal{}, err
	}
	return g, nil
}

// CreateGoal creates a goal and merges it into the cached collection.
func (r *GoalRepository) CreateGoal(ctx context.Context, input domain.CreateGoalInput) (domain.Goal, error) {
	if err := checkInput(r.validate, "goal.create", input); err != nil {
		return domain.Goal{}, err
	}
	if err := requirePositive("goal.create", input.TargetAmount); err != nil {
		return domain.Goal{}, err
	}
	created, err := r.source.CreateGoal(ctx, input)
	if err != nil {
		return domain.Goal{}, err
	}
	r.merge(created)
	r.inv.Apply(invalidation.OpGoalCreated, invalidation.Scope{EntityID: created.ID})
	return created, nil
}

// UpdateGoal edits a goal and merges the result in place.
func (r *GoalRepository) UpdateGoal(ctx context.Context, id string, input domain.UpdateGoalInput) (domain.Goal, error) {
	if err := checkInput(r.validate, "goal.update", input); err != nil {
		return domain.Goal{}, err
	}
	if err := requirePositive("goal.update", input.TargetAmount); err != nil {
		return domain.Goal{}, err
	}
	updated, err := r.source.UpdateGoal(ctx, id, input)
	if err != nil {
		return domain.Goal{}, err
	}
	r.merge(updated)
	r.inv.Apply(invalidation.OpGoalUpdated, invalidation.Scope{EntityID: id})
	return updated, nil
}

// DeleteGoal removes a goal; the invalidation edge filters it out of the
// cached collection without staling the other goals.
func (r *GoalRepository) DeleteGoal(ctx context.Context, id string) error {
	if err := r.source.DeleteGoal(ctx, id); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpGoalDeleted, invalidation.Scope{EntityID: id})
	return nil
}

// ArchiveGoal hides a goal from active views.
func (r *GoalRepository) ArchiveGoal(ctx context.Context, id string) (domain.Goal, error) {
	archived, err := r.source.ArchiveGoal(ctx, id)
	if err != nil {
		return domain.Goal{}, err
	}
	r.merge(archived)
	r.inv.Apply(invalidation.OpGoalArchived, invalidation.Scope{EntityID: id})
	return archived, nil
}

// UnarchiveGoal restores an archived goal.
func (r *GoalRepository) UnarchiveGoal(ctx context.Context, id string) (domain.Goal, error) {
	restored, err := r.source.UnarchiveGoal(ctx, id)
	if err != nil {
		return domain.Goal{}, err
	}
	r.merge(restored)
	r.inv.Apply(invalidation.OpGoalUnarchived, invalidation.Scope{EntityID: id})
	return restored, nil
}

// ActiveGoals is a derived view over the cached collection: goals not yet
// archived.
func (r *GoalRepository) ActiveGoals(ctx context.Context) ([]domain.Goal, error) {
	goals, err := r.FetchGoals(ctx)
	if err != nil {
		return nil, err
	}
	return filterView(goals, func(g domain.Goal) bool { return !g.Archived }), nil
}

// GoalsByCategory is a derived view over the cached collection.
func (r *GoalRepository) GoalsByCategory(ctx context.Context, category domain.GoalCategory) ([]domain.Goal, error) {
	goals, err := r.FetchGoals(ctx)
	if err != nil {
		return nil, err
	}
	return filterView(goals, func(g domain.Goal) bool { return g.Category == category }), nil
}

// InvalidateCache clears every goal cache.
func (r *GoalRepository) InvalidateCache() {
	r.goals.Clear()
	r.single.Clear()
}

// Stats reports per-cache hit/miss statistics.
func (r *GoalRepository) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"goals": r.goals.GetStats(),
		"goal":  r.single.GetStats(),
	}
}

func (r *GoalRepository) merge(g domain.Goal) {
	upsert(r.goals, allKey, g, func(existing domain.Goal) bool { return existing.ID == g.ID })
	r.single.Set(g.ID, g)
}
