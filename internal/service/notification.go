package service

import (
	"context"

	"shared-wallet-backend/internal/domain"
	"shared-wallet-backend/internal/repository"
)

const maxActivityPageSize = 100

type notificationService struct {
	activityRepo repository.ActivityRepository
}

func NewNotificationService(activityRepo repository.ActivityRepository) NotificationService {
	return &notificationService{activityRepo: activityRepo}
}

func (s *notificationService) ListActivities(ctx context.Context, walletID string, types []domain.ActivityType, page, pageSize int32) ([]domain.Activity, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > maxActivityPageSize {
		pageSize = maxActivityPageSize
	}
	offset := (page - 1) * pageSize
	return s.activityRepo.ListByWallet(ctx, walletID, types, pageSize, offset)
}

// ActivityRepositorySink stores every activity in the feed.
type ActivityRepositorySink struct {
	repo repository.ActivityRepository
}

func NewActivityRepositorySink(repo repository.ActivityRepository) *ActivityRepositorySink {
	return &ActivityRepositorySink{repo: repo}
}

func (s *ActivityRepositorySink) Deliver(ctx context.Context, a domain.Activity) error {
	return s.repo.Create(ctx, &a)
}
