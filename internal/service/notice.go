package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository"
)

// NoticeService serves storefront banners.
type NoticeService struct {
	repo repository.NoticeRepository
	now  func() time.Time
}

// NewNoticeService creates a notice service.
func NewNoticeService(repo repository.NoticeRepository) *NoticeService {
	return &NoticeService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Active returns the notices visible now, highest priority first.
func (s *NoticeService) Active(ctx context.Context) ([]domain.Notice, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	now := s.now()
	out := make([]domain.Notice, 0, len(all))
	for i := range all {
		if all[i].VisibleAt(now) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// List returns every notice.
func (s *NoticeService) List(ctx context.Context) ([]domain.Notice, error) {
	return s.repo.List(ctx)
}
