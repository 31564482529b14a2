package remote

import (
	"context"

	"nestegg-client/internal/domain"
)

// ScheduleSource talks to the recurring-investment endpoints.
type ScheduleSource struct {
	client *Client
}

func NewScheduleSource(client *Client) *ScheduleSource {
	return &ScheduleSource{client: client}
}

func (s *ScheduleSource) ListSchedules(ctx context.Context) ([]domain.DCASchedule, error) {
	var out []domain.DCASchedule
	if err := s.client.get(ctx, "/v1/schedules", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ScheduleSource) CreateSchedule(ctx context.Context, input domain.CreateScheduleInput) (domain.DCASchedule, error) {
	var out domain.DCASchedule
	if err := s.client.post(ctx, "/v1/schedules", input, &out); err != nil {
		return domain.DCASchedule{}, err
	}
	return out, nil
}

func (s *ScheduleSource) UpdateSchedule(ctx context.Context, id string, input domain.UpdateScheduleInput) (domain.DCASchedule, error) {
	var out domain.DCASchedule
	if err := s.client.put(ctx, "/v1/schedules/"+id, input, &out); err != nil {
		return domain.DCASchedule{}, err
	}
	return out, nil
}

func (s *ScheduleSource) DeleteSchedule(ctx context.Context, id string) error {
	return s.client.delete(ctx, "/v1/schedules/"+id)
}

func (s *ScheduleSource) PauseSchedule(ctx context.Context, id string) (domain.DCASchedule, error) {
	var out domain.DCASchedule
	if err := s.client.post(ctx, "/v1/schedules/"+id+"/pause", nil, &out); err != nil {
		return domain.DCASchedule{}, err
	}
	return out, nil
}

func (s *ScheduleSource) ResumeSchedule(ctx context.Context, id string) (domain.DCASchedule, error) {
	var out domain.DCASchedule
	if err := s.client.post(ctx, "/v1/schedules/"+id+"/resume", nil, &out); err != nil {
		return domain.DCASchedule{}, err
	}
	return out, nil
}
