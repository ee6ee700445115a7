package ports

import (
	"context"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
)

// --- DRIVING (Ce que le service expose) ---

// CreatePostCmd regroupe les entrées de la création d'un post.
type CreatePostCmd struct {
	Text         string
	EncodedImage string // data URI, vide si pas d'image
	Username     string
}

type PostService interface {
	CreatePost(ctx context.Context, cmd CreatePostCmd) (string, error)
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
	IsOnCooldown(ctx context.Context, username string) (bool, error)

	// PurgeAll est l'unique opération privilégiée (credential admin requis)
	PurgeAll(ctx context.Context, credential string) error
}

type FeedService interface {
	ListFeed(ctx context.Context, req domain.FeedRequest) ([]*domain.Post, error)

	// FeedPage compose le feed et l'état de cooldown de l'appelant
	FeedPage(ctx context.Context, req domain.FeedRequest, username string) (*domain.FeedPage, error)
}

type LikeService interface {
	GetLikeState(ctx context.Context, postID, username string) (domain.LikeState, error)
	ToggleLike(ctx context.Context, postID, username string) (string, error)
}

type PendingService interface {
	// ProcessPending vide la file pending et retourne le nombre de posts publiés
	ProcessPending(ctx context.Context) (int, error)
}
