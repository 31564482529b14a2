// Package invalidation holds the table of cache-invalidation cascades: which
// caches must be cleared, and how, after each kind of successful mutation.
//
// Repositories register their caches as named targets and call Apply after
// every successful create/update/delete. Cross-domain cascades (a deposit
// staling the funding balance, a family invite staling the family) are
// explicit rows in this table, never shared locks between repositories.
package invalidation

import (
	"sync"

	"go.uber.org/zap"
)

// Operation identifies a mutation kind across all domains.
type Operation string

const (
	// Funding
	OpDepositInitiated    Operation = "funding.deposit_initiated"
	OpWithdrawalInitiated Operation = "funding.withdrawal_initiated"
	OpTransferConfirmed   Operation = "funding.transfer_confirmed"
	OpTransferCancelled   Operation = "funding.transfer_cancelled"

	// DCA schedules
	OpScheduleCreated Operation = "schedule.created"
	OpScheduleUpdated Operation = "schedule.updated"
	OpScheduleDeleted Operation = "schedule.deleted"
	OpSchedulePaused  Operation = "schedule.paused"
	OpScheduleResumed Operation = "schedule.resumed"

	// Goals
	OpGoalCreated    Operation = "goal.created"
	OpGoalUpdated    Operation = "goal.updated"
	OpGoalDeleted    Operation = "goal.deleted"
	OpGoalArchived   Operation = "goal.archived"
	OpGoalUnarchived Operation = "goal.unarchived"

	// Family
	OpInviteSent           Operation = "family.invite_sent"
	OpInviteCancelled      Operation = "family.invite_cancelled"
	OpInviteResent         Operation = "family.invite_resent"
	OpInviteAccepted       Operation = "family.invite_accepted"
	OpInviteDeclined       Operation = "family.invite_declined"
	OpMemberRoleUpdated    Operation = "family.member_role_updated"
	OpMemberPrivacyUpdated Operation = "family.member_privacy_updated"
	OpMemberRemoved        Operation = "family.member_removed"
	OpFamilyLeft           Operation = "family.left"
	OpFamilyDeleted        Operation = "family.deleted"

	// User
	OpProfileUpdated     Operation = "user.profile_updated"
	OpPreferencesUpdated Operation = "user.preferences_updated"
	OpAccountDeleted     Operation = "user.account_deleted"

	// Portfolio-scoped mutations
	OpPortfolioCreated   Operation = "portfolio.created"
	OpPortfolioUpdated   Operation = "portfolio.updated"
	OpPortfolioDeleted   Operation = "portfolio.deleted"
	OpHoldingAdded       Operation = "portfolio.holding_added"
	OpHoldingUpdated     Operation = "portfolio.holding_updated"
	OpHoldingRemoved     Operation = "portfolio.holding_removed"
	OpLedgerEntryAdded   Operation = "portfolio.ledger_entry_added"
	OpLedgerEntryUpdated Operation = "portfolio.ledger_entry_updated"
	OpLedgerEntryDeleted Operation = "portfolio.ledger_entry_deleted"
	OpCashDeposited      Operation = "portfolio.cash_deposited"
	OpCashWithdrawn      Operation = "portfolio.cash_withdrawn"
	OpCashTransferred    Operation = "portfolio.cash_transferred"

	// Watchlist
	OpWatchlistAdded   Operation = "watchlist.symbol_added"
	OpWatchlistRemoved Operation = "watchlist.symbol_removed"
)

// CacheName identifies a registered invalidation target.
type CacheName string

const (
	CacheFundingBalance  CacheName = "funding_balance"
	CacheTransfers       CacheName = "transfers"
	CacheSchedules       CacheName = "schedules"
	CacheGoals           CacheName = "goals"
	CacheFamily          CacheName = "family"
	CachePendingInvites  CacheName = "pending_invites"
	CacheReceivedInvites CacheName = "received_invites"
	CacheUser            CacheName = "user"
	CachePortfolioList   CacheName = "portfolio_list"
	CacheHoldings        CacheName = "holdings"
	CacheLedger          CacheName = "ledger"
	CacheWatchlist       CacheName = "watchlist"
)

// Mode is the key-derivation strategy of an edge.
type Mode int

const (
	// ClearAll clears the whole target (singletons and collections whose
	// post-mutation shape is not locally knowable).
	ClearAll Mode = iota
	// RemoveEntity removes the single entry named by Scope.EntityID.
	RemoveEntity
	// ClearScope clears the sub-collection named by Scope.ScopeID, e.g.
	// one portfolio's holdings.
	ClearScope
)

// Edge is one static declaration: this operation stales that cache.
type Edge struct {
	Cache CacheName
	Mode  Mode
}

// Scope carries the keys an edge may need. Fields an edge does not use are
// ignored.
type Scope struct {
	EntityID string // the mutated entity, for RemoveEntity
	ScopeID  string // the parent scope (portfolio id), for ClearScope
}

// Target is a cache that can be invalidated. All methods must tolerate
// absent keys: applying an edge never fails.
type Target interface {
	ClearAll()
	Remove(entityID string)
	ClearScope(scopeID string)
}

// rules maps every mutation kind to the caches it stales. Upserts performed
// by the write-merge path (e.g. a created goal inserted into the goal
// collection) are not listed here; only clearing is.
var rules = map[Operation][]Edge{
	// Any funding movement stales the cached balance. The transfer
	// collection itself is maintained by write merges, but confirming or
	// cancelling can change amounts settled server-side, so the list is
	// cleared as well.
	OpDepositInitiated:    {{CacheFundingBalance, ClearAll}},
	OpWithdrawalInitiated: {{CacheFundingBalance, ClearAll}},
	OpTransferConfirmed:   {{CacheFundingBalance, ClearAll}, {CacheTransfers, ClearAll}},
	OpTransferCancelled:   {{CacheFundingBalance, ClearAll}, {CacheTransfers, ClearAll}},

	// Schedule mutations clear the whole collection: the "all schedules"
	// and "by symbol / by portfolio" derived views both read from it and
	// the server recomputes next-run times.
	OpScheduleCreated: {{CacheSchedules, ClearAll}},
	OpScheduleUpdated: {{CacheSchedules, ClearAll}},
	OpScheduleDeleted: {{CacheSchedules, ClearAll}},
	OpSchedulePaused:  {{CacheSchedules, ClearAll}},
	OpScheduleResumed: {{CacheSchedules, ClearAll}},

	// Goal create/update/archive are merged in place by the repository;
	// only deletion needs a removal edge.
	OpGoalDeleted: {{CacheGoals, RemoveEntity}},

	// Every family-membership mutation stales the family singleton. The
	// pending/received invite lists are independently cached and cleared
	// only by their own mutations.
	OpInviteSent:           {{CacheFamily, ClearAll}, {CachePendingInvites, ClearAll}},
	OpInviteCancelled:      {{CacheFamily, ClearAll}, {CachePendingInvites, ClearAll}},
	OpInviteResent:         {{CacheFamily, ClearAll}, {CachePendingInvites, ClearAll}},
	OpInviteAccepted:       {{CacheFamily, ClearAll}, {CacheReceivedInvites, ClearAll}},
	OpInviteDeclined:       {{CacheFamily, ClearAll}, {CacheReceivedInvites, ClearAll}},
	OpMemberRoleUpdated:    {{CacheFamily, ClearAll}},
	OpMemberPrivacyUpdated: {{CacheFamily, ClearAll}},
	OpMemberRemoved:        {{CacheFamily, ClearAll}},
	OpFamilyLeft:           {{CacheFamily, ClearAll}},
	OpFamilyDeleted:        {{CacheFamily, ClearAll}},

	OpProfileUpdated:     {{CacheUser, ClearAll}},
	OpPreferencesUpdated: {{CacheUser, ClearAll}},
	OpAccountDeleted:     {{CacheUser, ClearAll}},

	// Portfolio-scoped mutations clear that portfolio's holdings; the ones
	// that move aggregate totals also clear the portfolio list.
	OpPortfolioUpdated:   {{CachePortfolioList, ClearAll}},
	OpPortfolioDeleted:   {{CachePortfolioList, ClearAll}, {CacheHoldings, ClearScope}, {CacheLedger, ClearScope}},
	OpHoldingAdded:       {{CacheHoldings, ClearScope}, {CachePortfolioList, ClearAll}},
	OpHoldingUpdated:     {{CacheHoldings, ClearScope}, {CachePortfolioList, ClearAll}},
	OpHoldingRemoved:     {{CacheHoldings, ClearScope}, {CachePortfolioList, ClearAll}},
	OpLedgerEntryAdded:   {{CacheLedger, ClearScope}, {CacheHoldings, ClearScope}, {CachePortfolioList, ClearAll}},
	OpLedgerEntryUpdated: {{CacheLedger, ClearScope}, {CacheHoldings, ClearScope}, {CachePortfolioList, ClearAll}},
	OpLedgerEntryDeleted: {{CacheLedger, ClearScope}, {CacheHoldings, ClearScope}, {CachePortfolioList, ClearAll}},
	OpCashDeposited:      {{CacheHoldings, ClearScope}, {CachePortfolioList, ClearAll}},
	OpCashWithdrawn:      {{CacheHoldings, ClearScope}, {CachePortfolioList, ClearAll}},
	OpCashTransferred:    {{CacheHoldings, ClearScope}, {CachePortfolioList, ClearAll}},

	// The watchlist payload is quotes-with-metadata assembled server-side,
	// so membership changes force a refetch.
	OpWatchlistAdded:   {{CacheWatchlist, ClearAll}},
	OpWatchlistRemoved: {{CacheWatchlist, ClearAll}},
}

// Rules returns the edges for an operation. Exposed for tests.
func Rules(op Operation) []Edge {
	return rules[op]
}

// Invalidator applies the rules table to registered targets.
type Invalidator struct {
	mu      sync.RWMutex
	targets map[CacheName]Target
	logger  *zap.Logger
}

// NewInvalidator creates an Invalidator with no targets registered.
func NewInvalidator(logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{
		targets: make(map[CacheName]Target),
		logger:  logger,
	}
}

// Register binds a cache to its name. Registering the same name again
// replaces the binding (tests do this).
func (inv *Invalidator) Register(name CacheName, target Target) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.targets[name] = target
}

// Apply executes every edge declared for op. Unregistered targets and absent
// keys are no-ops, and applying the same operation twice leaves the caches in
// the same state as applying it once.
func (inv *Invalidator) Apply(op Operation, scope Scope) {
	edges, ok := rules[op]
	if !ok {
		return
	}

	inv.mu.RLock()
	defer inv.mu.RUnlock()

	for _, edge := range edges {
		target, ok := inv.targets[edge.Cache]
		if !ok {
			continue
		}
		switch edge.Mode {
		case ClearAll:
			target.ClearAll()
		case RemoveEntity:
			if scope.EntityID != "" {
				target.Remove(scope.EntityID)
			}
		case ClearScope:
			if scope.ScopeID != "" {
				target.ClearScope(scope.ScopeID)
			}
		}
		inv.logger.Debug("applied invalidation edge",
			zap.String("operation", string(op)),
			zap.String("cache", string(edge.Cache)),
		)
	}
}
