package remote

import (
	"context"

	"nestegg-client/internal/domain"
)

// FamilySource talks to the family-sharing endpoints. Membership mutations
// return no body; the repository refetches the family after its cache is
// invalidated.
type FamilySource struct {
	client *Client
}

func NewFamilySource(client *Client) *FamilySource {
	return &FamilySource{client: client}
}

func (s *FamilySource) GetFamily(ctx context.Context) (domain.Family, error) {
	var out domain.Family
	if err := s.client.get(ctx, "/v1/family", &out); err != nil {
		return domain.Family{}, err
	}
	return out, nil
}

func (s *FamilySource) ListPendingInvites(ctx context.Context) ([]domain.FamilyInvite, error) {
	var out []domain.FamilyInvite
	if err := s.client.get(ctx, "/v1/family/invites/pending", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FamilySource) ListReceivedInvites(ctx context.Context) ([]domain.FamilyInvite, error) {
	var out []domain.FamilyInvite
	if err := s.client.get(ctx, "/v1/family/invites/received", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FamilySource) InviteMember(ctx context.Context, input domain.InviteMemberInput) (domain.FamilyInvite, error) {
	var out domain.FamilyInvite
	if err := s.client.post(ctx, "/v1/family/invites", input, &out); err != nil {
		return domain.FamilyInvite{}, err
	}
	return out, nil
}

func (s *FamilySource) CancelInvite(ctx context.Context, inviteID string) error {
	return s.client.delete(ctx, "/v1/family/invites/"+inviteID)
}

func (s *FamilySource) ResendInvite(ctx context.Context, inviteID string) (domain.FamilyInvite, error) {
	var out domain.FamilyInvite
	if err := s.client.post(ctx, "/v1/family/invites/"+inviteID+"/resend", nil, &out); err != nil {
		return domain.FamilyInvite{}, err
	}
	return out, nil
}

func (s *FamilySource) AcceptInvite(ctx context.Context, inviteID string) error {
	return s.client.post(ctx, "/v1/family/invites/"+inviteID+"/accept", nil, nil)
}

func (s *FamilySource) DeclineInvite(ctx context.Context, inviteID string) error {
	return s.client.post(ctx, "/v1/family/invites/"+inviteID+"/decline", nil, nil)
}

func (s *FamilySource) UpdateMemberRole(ctx context.Context, userID string, role domain.FamilyRole) error {
	body := map[string]domain.FamilyRole{"role": role}
	return s.client.put(ctx, "/v1/family/members/"+userID+"/role", body, nil)
}

func (s *FamilySource) UpdateMemberPrivacy(ctx context.Context, userID string, privacy domain.PrivacyMode) error {
	body := map[string]domain.PrivacyMode{"privacy": privacy}
	return s.client.put(ctx, "/v1/family/members/"+userID+"/privacy", body, nil)
}

func (s *FamilySource) RemoveMember(ctx context.Context, userID string) error {
	return s.client.post(ctx, "/v1/family/members/"+userID+"/remove", nil, nil)
}

func (s *FamilySource) LeaveFamily(ctx context.Context) error {
	return s.client.post(ctx, "/v1/family/leave", nil, nil)
}

func (s *FamilySource) DeleteFamily(ctx context.Context) error {
	return s.client.delete(ctx, "/v1/family")
}
