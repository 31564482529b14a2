package remote

import (
	"context"

	"nestegg-client/internal/domain"
)

// PortfolioSource talks to the portfolio endpoints, including holdings,
// ledger entries and portfolio cash operations.
type PortfolioSource struct {
	client *Client
}

func NewPortfolioSource(client *Client) *PortfolioSource {
	return &PortfolioSource{client: client}
}

func (s *PortfolioSource) ListPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	var out []domain.Portfolio
	if err := s.client.get(ctx, "/v1/portfolios", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PortfolioSource) GetPortfolio(ctx context.Context, id string) (domain.Portfolio, error) {
	var out domain.Portfolio
	if err := s.client.get(ctx, "/v1/portfolios/"+id, &out); err != nil {
		return domain.Portfolio{}, err
	}
	return out, nil
}

func (s *PortfolioSource) CreatePortfolio(ctx context.Context, input domain.CreatePortfolioInput) (domain.Portfolio, error) {
	var out domain.Portfolio
	if err := s.client.post(ctx, "/v1/portfolios", input, &out); err != nil {
		return domain.Portfolio{}, err
	}
	return out, nil
}

func (s *PortfolioSource) UpdatePortfolio(ctx context.Context, id string, input domain.UpdatePortfolioInput) (domain.Portfolio, error) {
	var out domain.Portfolio
	if err := s.client.put(ctx, "/v1/portfolios/"+id, input, &out); err != nil {
		return domain.Portfolio{}, err
	}
	return out, nil
}

func (s *PortfolioSource) DeletePortfolio(ctx context.Context, id string) error {
	return s.client.delete(ctx, "/v1/portfolios/"+id)
}

func (s *PortfolioSource) ListHoldings(ctx context.Context, portfolioID string) ([]domain.Holding, error) {
	var out []domain.Holding
	if err := s.client.get(ctx, "/v1/portfolios/"+portfolioID+"/holdings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PortfolioSource) AddHolding(ctx context.Context, portfolioID string, input domain.CreateHoldingInput) (domain.Holding, error) {
	var out domain.Holding
	if err := s.client.post(ctx, "/v1/portfolios/"+portfolioID+"/holdings", input, &out); err != nil {
		return domain.Holding{}, err
	}
	return out, nil
}

func (s *PortfolioSource) UpdateHolding(ctx context.Context, portfolioID, holdingID string, input domain.UpdateHoldingInput) (domain.Holding, error) {
	var out domain.Holding
	if err := s.client.put(ctx, "/v1/portfolios/"+portfolioID+"/holdings/"+holdingID, input, &out); err != nil {
		return domain.Holding{}, err
	}
	return out, nil
}

func (s *PortfolioSource) RemoveHolding(ctx context.Context, portfolioID, holdingID string) error {
	return s.client.delete(ctx, "/v1/portfolios/"+portfolioID+"/holdings/"+holdingID)
}

func (s *PortfolioSource) ListLedger(ctx context.Context, portfolioID string) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	if err := s.client.get(ctx, "/v1/portfolios/"+portfolioID+"/ledger", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PortfolioSource) AddLedgerEntry(ctx context.Context, portfolioID string, input domain.CreateLedgerEntryInput) (domain.LedgerEntry, error) {
	var out domain.LedgerEntry
	if err := s.client.post(ctx, "/v1/portfolios/"+portfolioID+"/ledger", input, &out); err != nil {
		return domain.LedgerEntry{}, err
	}
	return out, nil
}

func (s *PortfolioSource) UpdateLedgerEntry(ctx context.Context, portfolioID, entryID string, input domain.CreateLedgerEntryInput) (domain.LedgerEntry, error) {
	var out domain.LedgerEntry
	if err := s.client.put(ctx, "/v1/portfolios/"+portfolioID+"/ledger/"+entryID, input, &out); err != nil {
		return domain.LedgerEntry{}, err
	}
	return out, nil
}

func (s *PortfolioSource) DeleteLedgerEntry(ctx context.Context, portfolioID, entryID string) error {
	return s.client.delete(ctx, "/v1/portfolios/"+portfolioID+"/ledger/"+entryID)
}

func (s *PortfolioSource) DepositCash(ctx context.Context, portfolioID string, input domain.CashOpInput) (domain.Portfolio, error) {
	var out domain.Portfolio
	if err := s.client.post(ctx, "/v1/portfolios/"+portfolioID+"/cash/deposit", input, &out, withIdempotencyKey()); err != nil {
		return domain.Portfolio{}, err
	}
	return out, nil
}

func (s *PortfolioSource) WithdrawCash(ctx context.Context, portfolioID string, input domain.CashOpInput) (domain.Portfolio, error) {
	var out domain.Portfolio
	if err := s.client.post(ctx, "/v1/portfolios/"+portfolioID+"/cash/withdraw", input, &out, withIdempotencyKey()); err != nil {
		return domain.Portfolio{}, err
	}
	return out, nil
}

func (s *PortfolioSource) TransferCash(ctx context.Context, portfolioID string, input domain.CashOpInput) (domain.Portfolio, error) {
	var out domain.Portfolio
	if err := s.client.post(ctx, "/v1/portfolios/"+portfolioID+"/cash/transfer", input, &out, withIdempotencyKey()); err != nil {
		return domain.Portfolio{}, err
	}
	return out, nil
}
