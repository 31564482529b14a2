package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleFrequency is how often a recurring investment runs.
type ScheduleFrequency string

const (
	FrequencyDaily    ScheduleFrequency = "daily"
	FrequencyWeekly   ScheduleFrequency = "weekly"
	FrequencyBiweekly ScheduleFrequency = "biweekly"
	FrequencyMonthly  ScheduleFrequency = "monthly"
)

// DCASchedule is a recurring-investment (dollar-cost-averaging) schedule.
// NextRunAt and Active are server-owned; pausing and resuming go through the
// API so the server can recompute the next run.
type DCASchedule struct {
	ID          string            `json:"id"`
	PortfolioID string            `json:"portfolioId"`
	Symbol      string            `json:"symbol"`
	Amount      decimal.Decimal   `json:"amount"`
	Frequency   ScheduleFrequency `json:"frequency"`
	Active      bool              `json:"active"`
	NextRunAt   time.Time         `json:"nextRunAt"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// CreateScheduleInput is the payload for creating a DCA schedule.
type CreateScheduleInput struct {
	PortfolioID string            `json:"portfolioId" validate:"required"`
	Symbol      string            `json:"symbol" validate:"required,min=1,max=12"`
	Amount      decimal.Decimal   `json:"amount" validate:"required"`
	Frequency   ScheduleFrequency `json:"frequency" validate:"required,oneof=daily weekly biweekly monthly"`
}

// UpdateScheduleInput edits amount and frequency of a schedule.
type UpdateScheduleInput struct {
	Amount    decimal.Decimal   `json:"amount" validate:"required"`
	Frequency ScheduleFrequency `json:"frequency" validate:"required,oneof=daily weekly biweekly monthly"`
}
