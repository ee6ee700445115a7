package ports

import (
	"context"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
)

// --- DRIVEN (Ce dont le service a besoin) ---

type PostRepository interface {
	// Save écrit le record, l'ajoute à la séquence du feed (ordre d'insertion)
	// et à la file pending.
	Save(ctx context.Context, post *domain.Post) error

	// FindByID retourne nil, nil si le post n'existe pas
	FindByID(ctx context.Context, postID string) (*domain.Post, error)

	// ListFeed lit une fenêtre de la séquence et hydrate les records (manquants filtrés)
	ListFeed(ctx context.Context, req domain.FeedRequest) ([]*domain.Post, error)

	// PurgeAll supprime séquence, file pending, posts, cooldowns et likes
	PurgeAll(ctx context.Context) error
}

type PendingQueue interface {
	// PopPending retire jusqu'à max clés de la file (FIFO)
	PopPending(ctx context.Context, max int) ([]string, error)
	FindByKey(ctx context.Context, key string) (*domain.Post, error)
}

type CooldownRepository interface {
	IsOnCooldown(ctx context.Context, username string) (bool, error)
	// StartCooldown pose le marqueur s'il est absent; false si déjà posé
	StartCooldown(ctx context.Context, username string) (bool, error)
	ReleaseCooldown(ctx context.Context, username string) error
}

type LikeRepository interface {
	IsMember(ctx context.Context, postID, username string) (bool, error)
	Count(ctx context.Context, postID string) (int64, error)
	// Toggle retire le user s'il est membre, l'ajoute sinon (atomique)
	Toggle(ctx context.Context, postID, username string) (bool, error)
}

// ImageNormalizer décode, borne et ré-encode une image fournie en data URI
type ImageNormalizer interface {
	Normalize(ctx context.Context, dataURI string) ([]byte, error)
}

// BlobStore persiste des octets et retourne une URL publique
type BlobStore interface {
	PutBlob(ctx context.Context, data []byte, contentType string) (string, error)
}

type EventPublisher interface {
	PublishPostCreated(ctx context.Context, post *domain.Post) error
}

// AdminVerifier compare un credential au secret configuré (deny par défaut)
type AdminVerifier interface {
	Verify(credential string) error
}

// TokenVerifier résout un bearer token en username
type TokenVerifier interface {
	Validate(token string) (username string, err error)
}
