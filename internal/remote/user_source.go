package remote

import (
	"context"

	"nestegg-client/internal/domain"
)

// UserSource talks to the profile and preference endpoints.
type UserSource struct {
	client *Client
}

func NewUserSource(client *Client) *UserSource {
	return &UserSource{client: client}
}

func (s *UserSource) GetProfile(ctx context.Context) (domain.UserProfile, error) {
	var out domain.UserProfile
	if err := s.client.get(ctx, "/v1/me", &out); err != nil {
		return domain.UserProfile{}, err
	}
	return out, nil
}

func (s *UserSource) UpdateProfile(ctx context.Context, input domain.UpdateProfileInput) (domain.UserProfile, error) {
	var out domain.UserProfile
	if err := s.client.put(ctx, "/v1/me", input, &out); err != nil {
		return domain.UserProfile{}, err
	}
	return out, nil
}

func (s *UserSource) UpdatePreferences(ctx context.Context, input domain.UpdatePreferencesInput) (domain.UserProfile, error) {
	var out domain.UserProfile
	if err := s.client.put(ctx, "/v1/me/preferences", input, &out); err != nil {
		return domain.UserProfile{}, err
	}
	return out, nil
}

func (s *UserSource) DeleteAccount(ctx context.Context) error {
	return s.client.delete(ctx, "/v1/me")
}
