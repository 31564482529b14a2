package domain

import "time"

// FamilyRole is a member's permission level within a shared family.
type FamilyRole string

const (
	RoleOwner FamilyRole = "owner"
	RoleAdult FamilyRole = "adult"
	RoleTeen  FamilyRole = "teen"
)

// PrivacyMode controls how much of a member's data the rest of the family
// can see.
type PrivacyMode string

const (
	PrivacyFull     PrivacyMode = "full"
	PrivacySummary  PrivacyMode = "summary"
	PrivacyBalances PrivacyMode = "balances_hidden"
)

// FamilyMember is one user's membership in a family.
type FamilyMember struct {
	UserID      string      `json:"userId"`
	DisplayName string      `json:"displayName"`
	Role        FamilyRole  `json:"role"`
	Privacy     PrivacyMode `json:"privacy"`
	JoinedAt    time.Time   `json:"joinedAt"`
}

// Family is the shared-finances group a user belongs to. At most one per
// user; cached as a singleton.
type Family struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Members   []FamilyMember `json:"members"`
	CreatedAt time.Time      `json:"createdAt"`
}

// InviteStatus tracks an invite's lifecycle.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
	InviteExpired  InviteStatus = "expired"
)

// FamilyInvite is an invitation into a family. Pending (sent by this user's
// family) and received invites are cached as independent lists.
type FamilyInvite struct {
	ID        string       `json:"id"`
	FamilyID  string       `json:"familyId"`
	Email     string       `json:"email"`
	Role      FamilyRole   `json:"role"`
	Status    InviteStatus `json:"status"`
	SentAt    time.Time    `json:"sentAt"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// InviteMemberInput is the payload for inviting someone into the family.
type InviteMemberInput struct {
	Email string     `json:"email" validate:"required,email"`
	Role  FamilyRole `json:"role" validate:"required,oneof=adult teen"`
}
