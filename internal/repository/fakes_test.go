package repository

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"nestegg-client/internal/domain"
	apperrors "nestegg-client/internal/errors"
)

// calls counts source invocations by method name.
type calls struct {
	mu sync.Mutex
	n  map[string]int
}

func (c *calls) inc(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == nil {
		c.n = make(map[string]int)
	}
	c.n[name]++
}

func (c *calls) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n[name]
}

func (c *calls) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := 0
	for _, v := range c.n {
		sum += v
	}
	return sum
}

func serverErr() error {
	return apperrors.Server("UPSTREAM", "service exploded", 502).Build()
}

func notFoundErr() error {
	return apperrors.NotFound("MISSING", "no such resource").Build()
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// --- portfolio ---

type fakePortfolioSource struct {
	calls calls
	err   error // every call fails with this when set

	portfolios []domain.Portfolio
	holdings   map[string][]domain.Holding
	ledger     map[string][]domain.LedgerEntry
}

func (f *fakePortfolioSource) ListPortfolios(context.Context) ([]domain.Portfolio, error) {
	f.calls.inc("ListPortfolios")
	if f.err != nil {
		return nil, f.err
	}
	return f.portfolios, nil
}

func (f *fakePortfolioSource) GetPortfolio(_ context.Context, id string) (domain.Portfolio, error) {
	f.calls.inc("GetPortfolio")
	if f.err != nil {
		return domain.Portfolio{}, f.err
	}
	for _, p := range f.portfolios {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Portfolio{}, notFoundErr()
}

func (f *fakePortfolioSource) CreatePortfolio(_ context.Context, input domain.CreatePortfolioInput) (domain.Portfolio, error) {
	f.calls.inc("CreatePortfolio")
	if f.err != nil {
		return domain.Portfolio{}, f.err
	}
	return domain.Portfolio{ID: "p-new", Name: input.Name, Currency: input.Currency}, nil
}

func (f *fakePortfolioSource) UpdatePortfolio(_ context.Context, id string, input domain.UpdatePortfolioInput) (domain.Portfolio, error) {
	f.calls.inc("UpdatePortfolio")
	if f.err != nil {
		return domain.Portfolio{}, f.err
	}
	return domain.Portfolio{ID: id, Name: input.Name}, nil
}

func (f *fakePortfolioSource) DeletePortfolio(context.Context, string) error {
	f.calls.inc("DeletePortfolio")
	return f.err
}

func (f *fakePortfolioSource) ListHoldings(_ context.Context, portfolioID string) ([]domain.Holding, error) {
	f.calls.inc("ListHoldings")
	if f.err != nil {
		return nil, f.err
	}
	return f.holdings[portfolioID], nil
}

func (f *fakePortfolioSource) AddHolding(_ context.Context, portfolioID string, input domain.CreateHoldingInput) (domain.Holding, error) {
	f.calls.inc("AddHolding")
	if f.err != nil {
		return domain.Holding{}, f.err
	}
	return domain.Holding{ID: "h-new", PortfolioID: portfolioID, Symbol: input.Symbol, Quantity: input.Quantity}, nil
}

func (f *fakePortfolioSource) UpdateHolding(_ context.Context, portfolioID, holdingID string, input domain.UpdateHoldingInput) (domain.Holding, error) {
	f.calls.inc("UpdateHolding")
	if f.err != nil {
		return domain.Holding{}, f.err
	}
	return domain.Holding{ID: holdingID, PortfolioID: portfolioID, Quantity: input.Quantity}, nil
}

func (f *fakePortfolioSource) RemoveHolding(context.Context, string, string) error {
	f.calls.inc("RemoveHolding")
	return f.err
}

func (f *fakePortfolioSource) ListLedger(_ context.Context, portfolioID string) ([]domain.LedgerEntry, error) {
	f.calls.inc("ListLedger")
	if f.err != nil {
		return nil, f.err
	}
	return f.ledger[portfolioID], nil
}

func (f *fakePortfolioSource) AddLedgerEntry(_ context.Context, portfolioID string, input domain.CreateLedgerEntryInput) (domain.LedgerEntry, error) {
	f.calls.inc("AddLedgerEntry")
	if f.err != nil {
		return domain.LedgerEntry{}, f.err
	}
	return domain.LedgerEntry{ID: "le-new", PortfolioID: portfolioID, Type: input.Type, Amount: input.Amount}, nil
}

func (f *fakePortfolioSource) UpdateLedgerEntry(_ context.Context, portfolioID, entryID string, input domain.CreateLedgerEntryInput) (domain.LedgerEntry, error) {
	f.calls.inc("UpdateLedgerEntry")
	if f.err != nil {
		return domain.LedgerEntry{}, f.err
	}
	return domain.LedgerEntry{ID: entryID, PortfolioID: portfolioID, Type: input.Type, Amount: input.Amount}, nil
}

func (f *fakePortfolioSource) DeleteLedgerEntry(context.Context, string, string) error {
	f.calls.inc("DeleteLedgerEntry")
	return f.err
}

func (f *fakePortfolioSource) DepositCash(_ context.Context, portfolioID string, input domain.CashOpInput) (domain.Portfolio, error) {
	f.calls.inc("DepositCash")
	if f.err != nil {
		return domain.Portfolio{}, f.err
	}
	return domain.Portfolio{ID: portfolioID, CashBalance: input.Amount}, nil
}

func (f *fakePortfolioSource) WithdrawCash(_ context.Context, portfolioID string, _ domain.CashOpInput) (domain.Portfolio, error) {
	f.calls.inc("WithdrawCash")
	if f.err != nil {
		return domain.Portfolio{}, f.err
	}
	return domain.Portfolio{ID: portfolioID}, nil
}

func (f *fakePortfolioSource) TransferCash(_ context.Context, portfolioID string, _ domain.CashOpInput) (domain.Portfolio, error) {
	f.calls.inc("TransferCash")
	if f.err != nil {
		return domain.Portfolio{}, f.err
	}
	return domain.Portfolio{ID: portfolioID}, nil
}

// --- goal ---

type fakeGoalSource struct {
	calls calls
	err   error

	goals []domain.Goal
}

func (f *fakeGoalSource) ListGoals(context.Context) ([]domain.Goal, error) {
	f.calls.inc("ListGoals")
	if f.err != nil {
		return nil, f.err
	}
	return f.goals, nil
}

func (f *fakeGoalSource) GetGoal(_ context.Context, id string) (domain.Goal, error) {
	f.calls.inc("GetGoal")
	if f.err != nil {
		return domain.Goal{}, f.err
	}
	for _, g := range f.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return domain.Goal{}, notFoundErr()
}

func (f *fakeGoalSource) CreateGoal(_ context.Context, input domain.CreateGoalInput) (domain.Goal, error) {
	f.calls.inc("CreateGoal")
	if f.err != nil {
		return domain.Goal{}, f.err
	}
	return domain.Goal{ID: "g-new", Name: input.Name, Category: input.Category, TargetAmount: input.TargetAmount}, nil
}

func (f *fakeGoalSource) UpdateGoal(_ context.Context, id string, input domain.UpdateGoalInput) (domain.Goal, error) {
	f.calls.inc("UpdateGoal")
	if f.err != nil {
		return domain.Goal{}, f.err
	}
	return domain.Goal{ID: id, Name: input.Name, Category: input.Category, TargetAmount: input.TargetAmount}, nil
}

func (f *fakeGoalSource) DeleteGoal(context.Context, string) error {
	f.calls.inc("DeleteGoal")
	return f.err
}

func (f *fakeGoalSource) ArchiveGoal(_ context.Context, id string) (domain.Goal, error) {
	f.calls.inc("ArchiveGoal")
	if f.err != nil {
		return domain.Goal{}, f.err
	}
	return domain.Goal{ID: id, Archived: true}, nil
}

func (f *fakeGoalSource) UnarchiveGoal(_ context.Context, id string) (domain.Goal, error) {
	f.calls.inc("UnarchiveGoal")
	if f.err != nil {
		return domain.Goal{}, f.err
	}
	return domain.Goal{ID: id, Archived: false}, nil
}

// --- schedule ---

type fakeScheduleSource struct {
	calls calls
	err   error

	schedules []domain.DCASchedule
}

func (f *fakeScheduleSource) ListSchedules(context.Context) ([]domain.DCASchedule, error) {
	f.calls.inc("ListSchedules")
	if f.err != nil {
		return nil, f.err
	}
	return f.schedules, nil
}

func (f *fakeScheduleSource) CreateSchedule(_ context.Context, input domain.CreateScheduleInput) (domain.DCASchedule, error) {
	f.calls.inc("CreateSchedule")
	if f.err != nil {
		return domain.DCASchedule{}, f.err
	}
	return domain.DCASchedule{ID: "s-new", PortfolioID: input.PortfolioID, Symbol: input.Symbol, Amount: input.Amount, Frequency: input.Frequency, Active: true}, nil
}

func (f *fakeScheduleSource) UpdateSchedule(_ context.Context, id string, input domain.UpdateScheduleInput) (domain.DCASchedule, error) {
	f.calls.inc("UpdateSchedule")
	if f.err != nil {
		return domain.DCASchedule{}, f.err
	}
	return domain.DCASchedule{ID: id, Amount: input.Amount, Frequency: input.Frequency}, nil
}

func (f *fakeScheduleSource) DeleteSchedule(context.Context, string) error {
	f.calls.inc("DeleteSchedule")
	return f.err
}

func (f *fakeScheduleSource) PauseSchedule(_ context.Context, id string) (domain.DCASchedule, error) {
	f.calls.inc("PauseSchedule")
	if f.err != nil {
		return domain.DCASchedule{}, f.err
	}
	return f.setActive(id, false), nil
}

func (f *fakeScheduleSource) ResumeSchedule(_ context.Context, id string) (domain.DCASchedule, error) {
	f.calls.inc("ResumeSchedule")
	if f.err != nil {
		return domain.DCASchedule{}, f.err
	}
	return f.setActive(id, true), nil
}

// setActive flips the stored schedule, so a later list reflects the change
// the way the real server would.
func (f *fakeScheduleSource) setActive(id string, active bool) domain.DCASchedule {
	for i := range f.schedules {
		if f.schedules[i].ID == id {
			f.schedules[i].Active = active
			return f.schedules[i]
		}
	}
	return domain.DCASchedule{ID: id, Active: active}
}

// --- family ---

type fakeFamilySource struct {
	calls calls
	err   error

	family   domain.Family
	pending  []domain.FamilyInvite
	received []domain.FamilyInvite
}

func (f *fakeFamilySource) GetFamily(context.Context) (domain.Family, error) {
	f.calls.inc("GetFamily")
	if f.err != nil {
		return domain.Family{}, f.err
	}
	return f.family, nil
}

func (f *fakeFamilySource) ListPendingInvites(context.Context) ([]domain.FamilyInvite, error) {
	f.calls.inc("ListPendingInvites")
	if f.err != nil {
		return nil, f.err
	}
	return f.pending, nil
}

func (f *fakeFamilySource) ListReceivedInvites(context.Context) ([]domain.FamilyInvite, error) {
	f.calls.inc("ListReceivedInvites")
	if f.err != nil {
		return nil, f.err
	}
	return f.received, nil
}

func (f *fakeFamilySource) InviteMember(_ context.Context, input domain.InviteMemberInput) (domain.FamilyInvite, error) {
	f.calls.inc("InviteMember")
	if f.err != nil {
		return domain.FamilyInvite{}, f.err
	}
	return domain.FamilyInvite{ID: "i-new", Email: input.Email, Role: input.Role, Status: domain.InvitePending}, nil
}

func (f *fakeFamilySource) CancelInvite(context.Context, string) error {
	f.calls.inc("CancelInvite")
	return f.err
}

func (f *fakeFamilySource) ResendInvite(_ context.Context, id string) (domain.FamilyInvite, error) {
	f.calls.inc("ResendInvite")
	if f.err != nil {
		return domain.FamilyInvite{}, f.err
	}
	return domain.FamilyInvite{ID: id, Status: domain.InvitePending, ExpiresAt: time.Now().Add(72 * time.Hour)}, nil
}

func (f *fakeFamilySource) AcceptInvite(context.Context, string) error {
	f.calls.inc("AcceptInvite")
	return f.err
}

func (f *fakeFamilySource) DeclineInvite(context.Context, string) error {
	f.calls.inc("DeclineInvite")
	return f.err
}

func (f *fakeFamilySource) UpdateMemberRole(context.Context, string, domain.FamilyRole) error {
	f.calls.inc("UpdateMemberRole")
	return f.err
}

func (f *fakeFamilySource) UpdateMemberPrivacy(context.Context, string, domain.PrivacyMode) error {
	f.calls.inc("UpdateMemberPrivacy")
	return f.err
}

func (f *fakeFamilySource) RemoveMember(context.Context, string) error {
	f.calls.inc("RemoveMember")
	return f.err
}

func (f *fakeFamilySource) LeaveFamily(context.Context) error {
	f.calls.inc("LeaveFamily")
	return f.err
}

func (f *fakeFamilySource) DeleteFamily(context.Context) error {
	f.calls.inc("DeleteFamily")
	return f.err
}

// --- funding ---

type fakeFundingSource struct {
	calls calls
	err   error

	balance   domain.FundingBalance
	transfers []domain.Transfer
}

func (f *fakeFundingSource) GetBalance(context.Context) (domain.FundingBalance, error) {
	f.calls.inc("GetBalance")
	if f.err != nil {
		return domain.FundingBalance{}, f.err
	}
	return f.balance, nil
}

func (f *fakeFundingSource) ListTransfers(context.Context) ([]domain.Transfer, error) {
	f.calls.inc("ListTransfers")
	if f.err != nil {
		return nil, f.err
	}
	return f.transfers, nil
}

func (f *fakeFundingSource) InitiateDeposit(_ context.Context, input domain.TransferInput) (domain.Transfer, error) {
	f.calls.inc("InitiateDeposit")
	if f.err != nil {
		return domain.Transfer{}, f.err
	}
	return domain.Transfer{ID: "t-dep", Type: domain.TransferDeposit, Amount: input.Amount, Status: domain.TransferPending}, nil
}

func (f *fakeFundingSource) InitiateWithdrawal(_ context.Context, input domain.TransferInput) (domain.Transfer, error) {
	f.calls.inc("InitiateWithdrawal")
	if f.err != nil {
		return domain.Transfer{}, f.err
	}
	return domain.Transfer{ID: "t-wd", Type: domain.TransferWithdrawal, Amount: input.Amount, Status: domain.TransferPending}, nil
}

func (f *fakeFundingSource) ConfirmTransfer(_ context.Context, id string) (domain.Transfer, error) {
	f.calls.inc("ConfirmTransfer")
	if f.err != nil {
		return domain.Transfer{}, f.err
	}
	return domain.Transfer{ID: id, Status: domain.TransferCompleted}, nil
}

func (f *fakeFundingSource) CancelTransfer(_ context.Context, id string) (domain.Transfer, error) {
	f.calls.inc("CancelTransfer")
	if f.err != nil {
		return domain.Transfer{}, f.err
	}
	return domain.Transfer{ID: id, Status: domain.TransferCancelled}, nil
}

// --- stock ---

type fakeStockSource struct {
	calls calls
	err   error

	quotes    map[string]domain.Quote
	details   map[string]domain.StockDetails
	hours     domain.MarketHours
	watchlist []domain.WatchlistItem
}

func (f *fakeStockSource) GetQuote(_ context.Context, symbol string) (domain.Quote, error) {
	f.calls.inc("GetQuote")
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return domain.Quote{}, notFoundErr()
	}
	return q, nil
}

func (f *fakeStockSource) GetDetails(_ context.Context, symbol string) (domain.StockDetails, error) {
	f.calls.inc("GetDetails")
	if f.err != nil {
		return domain.StockDetails{}, f.err
	}
	d, ok := f.details[symbol]
	if !ok {
		return domain.StockDetails{}, notFoundErr()
	}
	return d, nil
}

func (f *fakeStockSource) GetMarketHours(context.Context) (domain.MarketHours, error) {
	f.calls.inc("GetMarketHours")
	if f.err != nil {
		return domain.MarketHours{}, f.err
	}
	return f.hours, nil
}

func (f *fakeStockSource) ListWatchlist(context.Context) ([]domain.WatchlistItem, error) {
	f.calls.inc("ListWatchlist")
	if f.err != nil {
		return nil, f.err
	}
	return f.watchlist, nil
}

func (f *fakeStockSource) AddToWatchlist(_ context.Context, symbol string) (domain.WatchlistItem, error) {
	f.calls.inc("AddToWatchlist")
	if f.err != nil {
		return domain.WatchlistItem{}, f.err
	}
	return domain.WatchlistItem{Symbol: symbol}, nil
}

func (f *fakeStockSource) RemoveFromWatchlist(context.Context, string) error {
	f.calls.inc("RemoveFromWatchlist")
	return f.err
}

// --- user ---

type fakeUserSource struct {
	calls calls
	err   error

	profile domain.UserProfile
}

func (f *fakeUserSource) GetProfile(context.Context) (domain.UserProfile, error) {
	f.calls.inc("GetProfile")
	if f.err != nil {
		return domain.UserProfile{}, f.err
	}
	return f.profile, nil
}

func (f *fakeUserSource) UpdateProfile(_ context.Context, input domain.UpdateProfileInput) (domain.UserProfile, error) {
	f.calls.inc("UpdateProfile")
	if f.err != nil {
		return domain.UserProfile{}, f.err
	}
	updated := f.profile
	updated.DisplayName = input.DisplayName
	updated.AvatarURL = input.AvatarURL
	return updated, nil
}

func (f *fakeUserSource) UpdatePreferences(_ context.Context, input domain.UpdatePreferencesInput) (domain.UserProfile, error) {
	f.calls.inc("UpdatePreferences")
	if f.err != nil {
		return domain.UserProfile{}, f.err
	}
	updated := f.profile
	updated.Preferences = domain.UserPreferences{
		Currency:           input.Currency,
		Theme:              input.Theme,
		NotificationsOn:    input.NotificationsOn,
		RoundUpInvesting:   input.RoundUpInvesting,
		WeeklyDigestEmails: input.WeeklyDigestEmails,
	}
	return updated, nil
}

func (f *fakeUserSource) DeleteAccount(context.Context) error {
	f.calls.inc("DeleteAccount")
	return f.err
}

// --- insight ---

type fakeInsightSource struct {
	calls calls
	err   error

	insights []domain.Insight
	tips     []domain.InvestingTip
}

func (f *fakeInsightSource) ListInsights(context.Context) ([]domain.Insight, error) {
	f.calls.inc("ListInsights")
	if f.err != nil {
		return nil, f.err
	}
	return f.insights, nil
}

func (f *fakeInsightSource) GetStockExplanation(_ context.Context, symbol string) (domain.StockExplanation, error) {
	f.calls.inc("GetStockExplanation")
	if f.err != nil {
		return domain.StockExplanation{}, f.err
	}
	return domain.StockExplanation{Symbol: symbol, Explanation: "a company"}, nil
}

func (f *fakeInsightSource) ListInvestingTips(context.Context) ([]domain.InvestingTip, error) {
	f.calls.inc("ListInvestingTips")
	if f.err != nil {
		return nil, f.err
	}
	return f.tips, nil
}
