package remote

import (
	"context"

	"nestegg-client/internal/domain"
)

// FundingSource talks to the funding endpoints. Deposits and withdrawals
// carry idempotency keys so a retried initiation cannot move money twice.
type FundingSource struct {
	client *Client
}

func NewFundingSource(client *Client) *FundingSource {
	return &FundingSource{client: client}
}

func (s *FundingSource) GetBalance(ctx context.Context) (domain.FundingBalance, error) {
	var out domain.FundingBalance
	if err := s.client.get(ctx, "/v1/funding/balance", &out); err != nil {
		return domain.FundingBalance{}, err
	}
	return out, nil
}

func (s *FundingSource) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	var out []domain.Transfer
	if err := s.client.get(ctx, "/v1/funding/transfers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FundingSource) InitiateDeposit(ctx context.Context, input domain.TransferInput) (domain.Transfer, error) {
	var out domain.Transfer
	if err := s.client.post(ctx, "/v1/funding/deposits", input, &out, withIdempotencyKey()); err != nil {
		return domain.Transfer{}, err
	}
	return out, nil
}

func (s *FundingSource) InitiateWithdrawal(ctx context.Context, input domain.TransferInput) (domain.Transfer, error) {
	var out domain.Transfer
	if err := s.client.post(ctx, "/v1/funding/withdrawals", input, &out, withIdempotencyKey()); err != nil {
		return domain.Transfer{}, err
	}
	return out, nil
}

func (s *FundingSource) ConfirmTransfer(ctx context.Context, transferID string) (domain.Transfer, error) {
	var out domain.Transfer
	if err := s.client.post(ctx, "/v1/funding/transfers/"+transferID+"/confirm", nil, &out); err != nil {
		return domain.Transfer{}, err
	}
	return out, nil
}

func (s *FundingSource) CancelTransfer(ctx context.Context, transferID string) (domain.Transfer, error) {
	var out domain.Transfer
	if err := s.client.post(ctx, "/v1/funding/transfers/"+transferID+"/cancel", nil, &out); err != nil {
		return domain.Transfer{}, err
	}
	return out, nil
}
