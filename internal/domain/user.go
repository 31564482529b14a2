package domain

import "time"

// UserProfile is the signed-in user's profile, cached as a singleton.
type UserProfile struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	AvatarURL   string          `json:"avatarUrl,omitempty"`
	Preferences UserPreferences `json:"preferences"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// UserPreferences are client-tunable settings stored server-side.
type UserPreferences struct {
	Currency           string `json:"currency"`
	Theme              string `json:"theme"`
	NotificationsOn    bool   `json:"notificationsOn"`
	RoundUpInvesting   bool   `json:"roundUpInvesting"`
	WeeklyDigestEmails bool   `json:"weeklyDigestEmails"`
}

// UpdateProfileInput edits the mutable profile fields.
type UpdateProfileInput struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=60"`
	AvatarURL   string `json:"avatarUrl" validate:"omitempty,url"`
}

// UpdatePreferencesInput replaces the preference set wholesale.
type UpdatePreferencesInput struct {
	Currency           string `json:"currency" validate:"required,iso4217"`
	Theme              string `json:"theme" validate:"required,oneof=system light dark"`
	NotificationsOn    bool   `json:"notificationsOn"`
	RoundUpInvesting   bool   `json:"roundUpInvesting"`
	WeeklyDigestEmails bool   `json:"weeklyDigestEmails"`
}
