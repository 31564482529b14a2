package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalCategory groups savings goals for filtered views.
type GoalCategory string

const (
	GoalEmergency  GoalCategory = "emergency"
	GoalRetirement GoalCategory = "retirement"
	GoalEducation  GoalCategory = "education"
	GoalPurchase   GoalCategory = "purchase"
	GoalCustom     GoalCategory = "custom"
)

// Goal is a savings target with progress tracked server-side.
type Goal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      GoalCategory    `json:"category"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetDate    time.Time       `json:"targetDate"`
	Archived      bool            `json:"archived"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Progress returns completion as a fraction in [0, 1].
func (g Goal) Progress() decimal.Decimal {
	if g.TargetAmount.IsZero() {
		return decimal.Zero
	}
	ratio := g.CurrentAmount.Div(g.TargetAmount)
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return ratio
}

// CreateGoalInput is the payload for creating a goal.
type CreateGoalInput struct {
	Name         string          `json:"name" validate:"required,min=1,max=80"`
	Category     GoalCategory    `json:"category" validate:"required,oneof=emergency retirement education purchase custom"`
	TargetAmount decimal.Decimal `json:"targetAmount" validate:"required"`
	TargetDate   time.Time       `json:"targetDate" validate:"required"`
}

// UpdateGoalInput is the payload for editing a goal.
type UpdateGoalInput struct {
	Name         string          `json:"name" validate:"required,min=1,max=80"`
	Category     GoalCategory    `json:"category" validate:"required,oneof=emergency retirement education purchase custom"`
	TargetAmount decimal.Decimal `json:"targetAmount" validate:"required"`
	TargetDate   time.Time       `json:"targetDate" validate:"required"`
}
