package cache

import "time"

// Freshness windows per data domain. Fixed at construction time; callers
// cannot override them per call.
const (
	// Live quotes move constantly.
	FreshQuote = 5 * time.Second

	// Funding balance changes on deposits and withdrawals.
	FreshFundingBalance = 30 * time.Second

	// Portfolio list and watchlist quotes-with-metadata.
	FreshPortfolioList = time.Minute
	FreshWatchlist     = time.Minute

	// Family membership changes rarely within a session.
	FreshFamily = 2 * time.Minute

	// Slow-moving profile and reference data.
	FreshUserProfile      = 5 * time.Minute
	FreshStockDetails     = 5 * time.Minute
	FreshInsights         = 5 * time.Minute
	FreshStockExplanation = 5 * time.Minute

	// Investing tips are near-static editorial content.
	FreshInvestingTips = time.Hour

	// Collections without a tighter observed policy (goals, schedules,
	// holdings, transfers, invites) share the portfolio-list window.
	FreshDefault = time.Minute
)
