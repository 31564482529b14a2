package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestegg-client/internal/domain"
	apperrors "nestegg-client/internal/errors"
)

func newPortfolioRepo(t *testing.T, source *fakePortfolioSource) *PortfolioRepository {
	t.Helper()
	return NewPortfolioRepository(source, nil, nil, nil)
}

func TestPortfolioFetchCachesAcrossCalls(t *testing.T) {
	source := &fakePortfolioSource{portfolios: []domain.Portfolio{
		{ID: "p1", Name: "Core", IsDefault: true},
		{ID: "p2", Name: "Play money"},
	}}
	repo := newPortfolioRepo(t, source)

	first, err := repo.FetchPortfolios(context.Background())
	require.NoError(t, err)
	second, err := repo.FetchPortfolios(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.calls.count("ListPortfolios"))
}

func TestPortfolioFetchOneAnswersFromFreshList(t *testing.T) {
	source := &fakePortfolioSource{portfolios: []domain.Portfolio{
		{ID: "p1", Name: "Core"},
		{ID: "p2", Name: "Play money"},
	}}
	repo := newPortfolioRepo(t, source)

	_, err := repo.FetchPortfolios(context.Background())
	require.NoError(t, err)

	p, err := repo.FetchPortfolio(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "Play money", p.Name)
	assert.Equal(t, 0, source.calls.count("GetPortfolio"))
}

func TestPortfolioFetchOneFallsBackToNetwork(t *testing.T) {
	source := &fakePortfolioSource{portfolios: []domain.Portfolio{{ID: "p1", Name: "Core"}}}
	repo := newPortfolioRepo(t, source)

	p, err := repo.FetchPortfolio(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Core", p.Name)
	assert.Equal(t, 1, source.calls.count("GetPortfolio"))

	// Second read hits the side cache.
	_, err = repo.FetchPortfolio(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls.count("GetPortfolio"))
}

func TestPortfolioFetchOneUnknownIsNotFound(t *testing.T) {
	source := &fakePortfolioSource{}
	repo := newPortfolioRepo(t, source)

	_, err := repo.FetchPortfolio(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPortfolioCreateMergesIntoCachedList(t *testing.T) {
	source := &fakePortfolioSource{portfolios: []domain.Portfolio{{ID: "p1", Name: "Core"}}}
	repo := newPortfolioRepo(t, source)

	_, err := repo.FetchPortfolios(context.Background())
	require.NoError(t, err)

	created, err := repo.CreatePortfolio(context.Background(), domain.CreatePortfolioInput{Name: "Vacation", Currency: "USD"})
	require.NoError(t, err)

	list, err := repo.FetchPortfolios(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, created.ID, list[1].ID)
	assert.Equal(t, 1, source.calls.count("ListPortfolios"), "merge must not trigger a refetch")
}

func TestPortfolioCreateRejectsInvalidInput(t *testing.T) {
	source := &fakePortfolioSource{}
	repo := newPortfolioRepo(t, source)

	_, err := repo.CreatePortfolio(context.Background(), domain.CreatePortfolioInput{Name: "", Currency: "USD"})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, source.calls.total())
}

func TestPortfolioDeleteRefusesDefaultLocally(t *testing.T) {
	source := &fakePortfolioSource{portfolios: []domain.Portfolio{{ID: "p1", IsDefault: true}}}
	repo := newPortfolioRepo(t, source)

	_, err := repo.FetchPortfolios(context.Background())
	require.NoError(t, err)

	err = repo.DeletePortfolio(context.Background(), "p1")
	assert.True(t, apperrors.IsDomainRule(err))
	assert.Equal(t, 0, source.calls.count("DeletePortfolio"))
}

func TestPortfolioDeleteClearsCaches(t *testing.T) {
	source := &fakePortfolioSource{portfolios: []domain.Portfolio{
		{ID: "p1", IsDefault: true},
		{ID: "p2"},
	}}
	repo := newPortfolioRepo(t, source)

	_, err := repo.FetchPortfolios(context.Background())
	require.NoError(t, err)
	_, err = repo.FetchHoldings(context.Background(), "p2")
	require.NoError(t, err)

	require.NoError(t, repo.DeletePortfolio(context.Background(), "p2"))

	_, err = repo.FetchPortfolios(context.Background())
	require.NoError(t, err)
	_, err = repo.FetchHoldings(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls.count("ListPortfolios"))
	assert.Equal(t, 2, source.calls.count("ListHoldings"))
}

func TestHoldingMutationClearsOnlyItsPortfolio(t *testing.T) {
	source := &fakePortfolioSource{
		holdings: map[string][]domain.Holding{
			"p1": {{ID: "h1", PortfolioID: "p1", Symbol: "VTI"}},
			"p2": {{ID: "h2", PortfolioID: "p2", Symbol: "BND"}},
		},
	}
	repo := newPortfolioRepo(t, source)

	_, err := repo.FetchHoldings(context.Background(), "p1")
	require.NoError(t, err)
	_, err = repo.FetchHoldings(context.Background(), "p2")
	require.NoError(t, err)
	require.Equal(t, 2, source.calls.count("ListHoldings"))

	_, err = repo.AddHolding(context.Background(), "p1", domain.CreateHoldingInput{
		Symbol:    "voo",
		Quantity:  money("2"),
		CostBasis: money("800"),
	})
	require.NoError(t, err)

	_, err = repo.FetchHoldings(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls.count("ListHoldings"), "other portfolio's holdings stay cached")

	_, err = repo.FetchHoldings(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, source.calls.count("ListHoldings"), "mutated portfolio's holdings refetch")
}

func TestLedgerMutationCascadesToHoldingsAndList(t *testing.T) {
	source := &fakePortfolioSource{
		portfolios: []domain.Portfolio{{ID: "p1"}},
		holdings:   map[string][]domain.Holding{"p1": {}},
		ledger:     map[string][]domain.LedgerEntry{"p1": {}},
	}
	repo := newPortfolioRepo(t, source)

	_, err := repo.FetchPortfolios(context.Background())
	require.NoError(t, err)
	_, err = repo.FetchHoldings(context.Background(), "p1")
	require.NoError(t, err)
	_, err = repo.FetchLedger(context.Background(), "p1")
	require.NoError(t, err)

	_, err = repo.AddLedgerEntry(context.Background(), "p1", domain.CreateLedgerEntryInput{
		Type:       domain.LedgerBuy,
		Symbol:     "VTI",
		Quantity:   money("1"),
		Amount:     money("250"),
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	_, _ = repo.FetchPortfolios(context.Background())
	_, _ = repo.FetchHoldings(context.Background(), "p1")
	_, _ = repo.FetchLedger(context.Background(), "p1")
	assert.Equal(t, 2, source.calls.count("ListPortfolios"))
	assert.Equal(t, 2, source.calls.count("ListHoldings"))
	assert.Equal(t, 2, source.calls.count("ListLedger"))
}

func TestWithdrawCashRefusedWhenCachedBalanceTooLow(t *testing.T) {
	source := &fakePortfolioSource{portfolios: []domain.Portfolio{
		{ID: "p1", CashBalance: money("50")},
	}}
	repo := newPortfolioRepo(t, source)

	_, err := repo.FetchPortfolios(context.Background())
	require.NoError(t, err)

	_, err = repo.WithdrawCash(context.Background(), "p1", domain.CashOpInput{Amount: money("100")})
	assert.True(t, apperrors.IsDomainRule(err))
	assert.Equal(t, 0, source.calls.count("WithdrawCash"))
}

func TestTransferCashGuards(t *testing.T) {
	source := &fakePortfolioSource{}
	repo := newPortfolioRepo(t, source)

	_, err := repo.TransferCash(context.Background(), "p1", domain.CashOpInput{Amount: money("10")})
	assert.True(t, apperrors.IsValidation(err), "missing destination")

	_, err = repo.TransferCash(context.Background(), "p1", domain.CashOpInput{Amount: money("10"), ToPortfolioID: "p1"})
	assert.True(t, apperrors.IsDomainRule(err), "self transfer")

	_, err = repo.TransferCash(context.Background(), "p1", domain.CashOpInput{Amount: money("0"), ToPortfolioID: "p2"})
	assert.True(t, apperrors.IsValidation(err), "non-positive amount")

	assert.Equal(t, 0, source.calls.total())
}

func TestCashDepositReseedsSideCache(t *testing.T) {
	source := &fakePortfolioSource{}
	repo := newPortfolioRepo(t, source)

	updated, err := repo.DepositCash(context.Background(), "p1", domain.CashOpInput{Amount: money("25")})
	require.NoError(t, err)
	assert.True(t, updated.CashBalance.Equal(money("25")))

	p, err := repo.FetchPortfolio(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, p.CashBalance.Equal(money("25")))
	assert.Equal(t, 0, source.calls.count("GetPortfolio"))
}
