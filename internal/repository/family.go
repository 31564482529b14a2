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

// FamilySource is the remote surface the family repository needs.
type FamilySource interface {
	GetFamily(ctx context.Context) (domain.Family, error)
	ListPendingInvites(ctx context.Context) ([]domain.FamilyInvite, error)
	ListReceivedInvites(ctx context.Context) ([]domain.FamilyInvite, error)

	InviteMember(ctx context.Context, input domain.InviteMemberInput) (domain.FamilyInvite, error)
	CancelInvite(ctx context.Context, inviteID string) error
	ResendInvite(ctx context.Context, inviteID string) (domain.FamilyInvite, error)
	AcceptInvite(ctx context.Context, inviteID string) error
	DeclineInvite(ctx context.Context, inviteID string) error

	UpdateMemberRole(ctx context.Context, userID string, role domain.FamilyRole) error
	UpdateMemberPrivacy(ctx context.Context, userID string, privacy domain.PrivacyMode) error
	RemoveMember(ctx context.Context, userID string) error
	LeaveFamily(ctx context.Context) error
	DeleteFamily(ctx context.Context) error
}

var _ FamilySource = (*remote.FamilySource)(nil)

// FamilyRepository caches the family singleton and the two invite lists. The
// lists are independent: accepting a received invite never stales the pending
// list and vice versa.
type FamilyRepository struct {
	source   FamilySource
	inv      *invalidation.Invalidator
	logger   *zap.Logger
	validate *validator.Validate

	family   *cache.Store[string, domain.Family]
	pending  *cache.Store[string, []domain.FamilyInvite]
	received *cache.Store[string, []domain.FamilyInvite]

	familyFlight   flight.Group[domain.Family]
	pendingFlight  flight.Group[[]domain.FamilyInvite]
	receivedFlight flight.Group[[]domain.FamilyInvite]
}

// NewFamilyRepository wires the repository and registers the family, pending
// and received invalidation targets.
func NewFamilyRepository(source FamilySource, inv *invalidation.Invalidator, logger *zap.Logger, metrics *observability.Collector) *FamilyRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if inv == nil {
		inv = invalidation.NewInvalidator(logger)
	}
	r := &FamilyRepository{
		source:   source,
		inv:      inv,
		logger:   logger.Named("family"),
		validate: newValidator(),
		family:   cache.NewStore(cache.FreshFamily, storeOpts[domain.Family](logger, metrics, "family")...),
		pending:  cache.NewStore(cache.FreshFamily, storeOpts[[]domain.FamilyInvite](logger, metrics, "pending_invites")...),
		received: cache.NewStore(cache.FreshFamily, storeOpts[[]domain.FamilyInvite](logger, metrics, "received_invites")...),
	}
	inv.Register(invalidation.CacheFamily, wholeStoreTarget[domain.Family]{r.family})
	inv.Register(invalidation.CachePendingInvites, wholeStoreTarget[[]domain.FamilyInvite]{r.pending})
	inv.Register(invalidation.CacheReceivedInvites, wholeStoreTarget[[]domain.FamilyInvite]{r.received})
	return r
}

// FetchFamily returns the user's family, cache-first.
func (r *FamilyRepository) FetchFamily(ctx context.Context) (domain.Family, error) {
	return fetchThrough(ctx, r.family, &r.familyFlight, singletonKey, r.source.GetFamily)
}

// FetchPendingInvites returns invites sent by this user's family.
func (r *FamilyRepository) FetchPendingInvites(ctx context.Context) ([]domain.FamilyInvite, error) {
	return fetchThrough(ctx, r.pending, &r.pendingFlight, allKey, r.source.ListPendingInvites)
}

// FetchReceivedInvites returns invites addressed to this user.
func (r *FamilyRepository) FetchReceivedInvites(ctx context.Context) ([]domain.FamilyInvite, error) {
	return fetchThrough(ctx, r.received, &r.receivedFlight, allKey, r.source.ListReceivedInvites)
}

// InviteMember sends an invite and stales the family and pending list.
func (r *FamilyRepository) InviteMember(ctx context.Context, input domain.InviteMemberInput) (domain.FamilyInvite, error) {
	if err := checkInput(r.validate, "family.invite", input); err != nil {
		return domain.FamilyInvite{}, err
	}
	invite, err := r.source.InviteMember(ctx, input)
	if err != nil {
		return domain.FamilyInvite{}, err
	}
	r.inv.Apply(invalidation.OpInviteSent, invalidation.Scope{EntityID: invite.ID})
	return invite, nil
}

// CancelInvite withdraws a pending invite.
func (r *FamilyRepository) CancelInvite(ctx context.Context, inviteID string) error {
	if err := r.source.CancelInvite(ctx, inviteID); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpInviteCancelled, invalidation.Scope{EntityID: inviteID})
	return nil
}

// ResendInvite re-sends a pending invite with a new expiry.
func (r *FamilyRepository) ResendInvite(ctx context.Context, inviteID string) (domain.FamilyInvite, error) {
	invite, err := r.source.ResendInvite(ctx, inviteID)
	if err != nil {
		return domain.FamilyInvite{}, err
	}
	r.inv.Apply(invalidation.OpInviteResent, invalidation.Scope{EntityID: inviteID})
	return invite, nil
}

// AcceptInvite joins the inviting family; the family singleton and received
// list are refetched on next read.
func (r *FamilyRepository) AcceptInvite(ctx context.Context, inviteID string) error {
	if err := r.source.AcceptInvite(ctx, inviteID); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpInviteAccepted, invalidation.Scope{EntityID: inviteID})
	return nil
}

// DeclineInvite rejects a received invite.
func (r *FamilyRepository) DeclineInvite(ctx context.Context, inviteID string) error {
	if err := r.source.DeclineInvite(ctx, inviteID); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpInviteDeclined, invalidation.Scope{EntityID: inviteID})
	return nil
}

// UpdateMemberRole changes a member's role. Demoting the owner is refused
// locally when the cached family identifies them.
func (r *FamilyRepository) UpdateMemberRole(ctx context.Context, userID string, role domain.FamilyRole) error {
	if member, ok := r.cachedMember(userID); ok && member.Role == domain.RoleOwner {
		return apperrors.DomainRule("CANNOT_DEMOTE_OWNER", "the family owner's role cannot be changed").
			WithOperation("family.update_role").
			WithResource(userID).
			Build()
	}
	if err := r.source.UpdateMemberRole(ctx, userID, role); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpMemberRoleUpdated, invalidation.Scope{EntityID: userID})
	return nil
}

// UpdateMemberPrivacy changes how much of a member's data the family sees.
func (r *FamilyRepository) UpdateMemberPrivacy(ctx context.Context, userID string, privacy domain.PrivacyMode) error {
	if err := r.source.UpdateMemberPrivacy(ctx, userID, privacy); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpMemberPrivacyUpdated, invalidation.Scope{EntityID: userID})
	return nil
}

// RemoveMember removes a member from the family. Removing the owner is
// refused locally when the cached family identifies them.
func (r *FamilyRepository) RemoveMember(ctx context.Context, userID string) error {
	if member, ok := r.cachedMember(userID); ok && member.Role == domain.RoleOwner {
		return apperrors.DomainRule("CANNOT_REMOVE_OWNER", "the family owner cannot be removed").
			WithOperation("family.remove_member").
			WithResource(userID).
			Build()
	}
	if err := r.source.RemoveMember(ctx, userID); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpMemberRemoved, invalidation.Scope{EntityID: userID})
	return nil
}

// LeaveFamily removes this user from their family.
func (r *FamilyRepository) LeaveFamily(ctx context.Context) error {
	if err := r.source.LeaveFamily(ctx); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpFamilyLeft, invalidation.Scope{})
	return nil
}

// DeleteFamily dissolves the family entirely.
func (r *FamilyRepository) DeleteFamily(ctx context.Context) error {
	if err := r.source.DeleteFamily(ctx); err != nil {
		return err
	}
	r.inv.Apply(invalidation.OpFamilyDeleted, invalidation.Scope{})
	return nil
}

// InvalidateCache clears the family singleton and both invite lists.
func (r *FamilyRepository) InvalidateCache() {
	r.family.Clear()
	r.pending.Clear()
	r.received.Clear()
}

// Stats reports per-cache hit/miss statistics.
func (r *FamilyRepository) Stats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"family":           r.family.GetStats(),
		"pending_invites":  r.pending.GetStats(),
		"received_invites": r.received.GetStats(),
	}
}

// cachedMember looks a member up in the last known family state, stale or
// fresh.
func (r *FamilyRepository) cachedMember(userID string) (domain.FamilyMember, bool) {
	ent, ok := r.family.GetRaw(singletonKey)
	if !ok {
		return domain.FamilyMember{}, false
	}
	for _, member := range ent.Value.Members {
		if member.UserID == userID {
			return member, true
		}
	}
	return domain.FamilyMember{}, false
}
