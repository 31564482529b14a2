package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestegg-client/internal/domain"
	apperrors "nestegg-client/internal/errors"
)

func seedProfile() domain.UserProfile {
	return domain.UserProfile{
		ID:          "u1",
		Email:       "alex@example.com",
		DisplayName: "Alex",
		Preferences: domain.UserPreferences{Currency: "USD", Theme: "system"},
	}
}

func TestProfileCachedAsSingleton(t *testing.T) {
	source := &fakeUserSource{profile: seedProfile()}
	repo := NewUserRepository(source, nil, nil, nil)

	_, err := repo.FetchProfile(context.Background())
	require.NoError(t, err)
	_, err = repo.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls.count("GetProfile"))
}

func TestUpdateProfileReseedsSingleton(t *testing.T) {
	source := &fakeUserSource{profile: seedProfile()}
	repo := NewUserRepository(source, nil, nil, nil)

	_, err := repo.FetchProfile(context.Background())
	require.NoError(t, err)

	updated, err := repo.UpdateProfile(context.Background(), domain.UpdateProfileInput{DisplayName: "Alexandra"})
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", updated.DisplayName)

	// The server's response reseeded the cache; no refetch needed.
	profile, err := repo.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", profile.DisplayName)
	assert.Equal(t, 1, source.calls.count("GetProfile"))
}

func TestUpdatePreferencesValidation(t *testing.T) {
	source := &fakeUserSource{profile: seedProfile()}
	repo := NewUserRepository(source, nil, nil, nil)

	_, err := repo.UpdatePreferences(context.Background(), domain.UpdatePreferencesInput{
		Currency: "USD",
		Theme:    "neon",
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, source.calls.total())

	updated, err := repo.UpdatePreferences(context.Background(), domain.UpdatePreferencesInput{
		Currency:        "EUR",
		Theme:           "dark",
		NotificationsOn: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", updated.Preferences.Currency)
}

func TestDeleteAccountDropsProfile(t *testing.T) {
	source := &fakeUserSource{profile: seedProfile()}
	repo := NewUserRepository(source, nil, nil, nil)

	_, err := repo.FetchProfile(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAccount(context.Background()))

	_, err = repo.FetchProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls.count("GetProfile"))
}
