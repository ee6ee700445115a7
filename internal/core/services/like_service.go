package services

import (
	"context"
	"log/slog"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/ports"
)

type LikeService struct {
	repo ports.LikeRepository
}

func NewLikeService(repo ports.LikeRepository) *LikeService {
	return &LikeService{repo: repo}
}

// GetLikeState : SelfLiked reste false pour un appelant anonyme
func (s *LikeService) GetLikeState(ctx context.Context, postID, username string) (domain.LikeState, error) {
	var state domain.LikeState

	if username != "" {
		liked, err := s.repo.IsMember(ctx, postID, username)
		if err != nil {
			return state, err
		}
		state.SelfLiked = liked
	}

	count, err := s.repo.Count(ctx, postID)
	if err != nil {
		return state, err
	}
	state.Count = count
	return state, nil
}

// ToggleLike retourne l'id du post ; l'appelant relit l'état pour le compteur
func (s *LikeService) ToggleLike(ctx context.Context, postID, username string) (string, error) {
	if username == "" {
		return "", domain.ErrUnauthenticated
	}

	liked, err := s.repo.Toggle(ctx, postID, username)
	if err != nil {
		return "", err
	}
	slog.Debug("Like toggled", "post_id", postID, "username", username, "liked", liked)
	return postID, nil
}
