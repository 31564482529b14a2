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

// UserSource is the remote surface the user repository needs.
type UserSource interface {
	GetProfile(ctx context.Context) (domain.UserProfile, error)
	UpdateProfile(ctx context.Context, input domain.UpdateProfileInput) (domain.UserProfile, error)
	UpdatePreferences(ctx context.Context, input domain.UpdatePreferencesInput) (domain.UserProfile, error)
	DeleteAccount(ctx context.Context) error
}

var _ UserSource = (*remote.UserSource)(nil)

// UserRepository caches the signed-in user's profile as a singleton. Updates
// reseed the singleton with the server's response after the invalidation edge
// fires.
type UserRepository struct {
	source   UserSource
	inv      *invalidation.Invalidator
	logger   *zap.Logger
	validate *validator.Validate

	profile       *cache.Store[string, domain.UserProfile]
	profileFlight flight.Group[domain.UserProfile]
}

// NewUserRepository wires the repository and registers the user invalidation
// target.
func NewUserRepository(source UserSource, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *UserRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inv == nil {
		inv = invalidation.NewInvalidator(logger)
	}
	r := &UserRepository{
		source:   source,
		inv:      inv,
		logger:   logger.Named("user"),
		validate: newValidator(),
		profile:  cache.NewStore(cache.FreshUserProfile, storeOpts[domain.UserProfile](logger, metrics, "user")...),
	}
	inv.Register(invalidation.CacheUser, wholeStoreTarget[domain.UserProfile]{r.profile})
	return r
}

// FetchProfile returns the signed-in user's profile, cache-first.
func (r *UserRepository) FetchProfile(ctx context.Context) (domain.UserProfile, error) {
	return fetchThrough(ctx, r.profile, &r.profileFlight, singletonKey, r.source.GetProfile)
}

// UpdateProfile edits display name and avatar.
func (r *UserRepository) UpdateProfile(ctx context.Context, input domain.UpdateProfileInput) (domain.UserProfile, error) {
	if err := checkInput(r.validate, "user.update_profile", input); err != nil {
		return domain.UserProfile{}, err
	}
	updated, err := r.source.UpdateProfile(ctx, input)
	if err != nil {
		return domain.UserProfile{}, err
	}
	r.inv.Apply(invalidation.OpProfileUpdated, invalidation.Scope{})
	r.profile.Set(singletonKey, updated)
	return updated, nil
}

// UpdatePreferences replaces the preference set wholesale.
func (r *UserRepository) UpdatePreferences(ctx context.Context, input domain.UpdatePreferencesInput) (domain.UserProfile, error) {
	if err := checkInput(r.validate, "user.update_preferences", input); err != nil {
		return domain.UserProfile{}, err
	}
	updated, err := r.source.UpdatePreferences(ctx, input)
	if err != nil {
		return domain.UserProfile{}, err
	}
	r.inv.Apply(invalidation.OpPreferencesUpdated, invalidation.Scope{})
	r.profile.Set(singletonKey, updated)
	return updated, nil
}

// DeleteAccount permanently deletes the account and drops the cached profile.
func (r *UserRepository) DeleteAccount(ctx context.Context) error {
	if err := r.source.DeleteAccount(ctx); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpAccountDeleted, invalidation.Scope{})
	return nil
}

// InvalidateCache clears the profile singleton.
func (r *UserRepository) InvalidateCache() {
	r.profile.Clear()
}

// Stats reports per-cache hit/miss statistics.
func (r *UserRepository) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"user": r.profile.GetStats(),
	}
}
