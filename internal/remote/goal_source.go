package remote

import (
	"context"

	"nestegg-client/internal/domain"
)

// GoalSource talks to the savings-goal endpoints.
type GoalSource struct {
	client *Client
}

func NewGoalSource(client *Client) *GoalSource {
	return &GoalSource{client: client}
}

func (s *GoalSource) ListGoals(ctx context.Context) ([]domain.Goal, error) {
	var out []domain.Goal
	if err := s.client.get(ctx, "/v1/goals", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GoalSource) GetGoal(ctx context.Context, id string) (domain.Goal, error) {
	var out domain.Goal
	if err := s.client.get(ctx, "/v1/goals/"+id, &out); err != nil {
		return domain.Goal{}, err
	}
	return out, nil
}

func (s *GoalSource) CreateGoal(ctx context.Context, input domain.CreateGoalInput) (domain.Goal, error) {
	var out domain.Goal
	if err := s.client.post(ctx, "/v1/goals", input, &out); err != nil {
		return domain.Goal{}, err
	}
	return out, nil
}

func (s *GoalSource) UpdateGoal(ctx context.Context, id string, input domain.UpdateGoalInput) (domain.Goal, error) {
	var out domain.Goal
	if err := s.client.put(ctx, "/v1/goals/"+id, input, &out); err != nil {
		return domain.Goal{}, err
	}
	return out, nil
}

func (s *GoalSource) DeleteGoal(ctx context.Context, id string) error {
	return s.client.delete(ctx, "/v1/goals/"+id)
}

func (s *GoalSource) ArchiveGoal(ctx context.Context, id string) (domain.Goal, error) {
	var out domain.Goal
	if err := s.client.post(ctx, "/v1/goals/"+id+"/archive", nil, &out); err != nil {
		return domain.Goal{}, err
	}
	return out, nil
}

func (s *GoalSource) UnarchiveGoal(ctx context.Context, id string) (domain.Goal, error) {
	var out domain.Goal
	if err := s.client.post(ctx, "/v1/goals/"+id+"/unarchive", nil, &out); err != nil {
		return domain.Goal{}, err
	}
	return out, nil
}
