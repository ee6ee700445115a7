package services

import (
	"context"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/ports"
)

type FeedService struct {
	repo      ports.PostRepository
	cooldowns ports.CooldownRepository
}

func NewFeedService(repo ports.PostRepository, cooldowns ports.CooldownRepository) *FeedService {
	return &FeedService{
		repo:      repo,
		cooldowns: cooldowns,
	}
}

func (s *FeedService) ListFeed(ctx context.Context, req domain.FeedRequest) ([]*domain.Post, error) {
	return s.repo.ListFeed(ctx, req.Normalize())
}

func (s *FeedService) FeedPage(ctx context.Context, req domain.FeedRequest, username string) (*domain.FeedPage, error) {
	posts, err := s.ListFeed(ctx, req)
	if err != nil {
		return nil, err
	}

	page := &domain.FeedPage{Posts: posts}
	if username != "" {
		page.Cooldown, err = s.cooldowns.IsOnCooldown(ctx, username)
		if err != nil {
			return nil, err
		}
	}
	return page, nil
}
