package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/ports"
)

// CanonicalImageType est le format unique de stockage des images.
const CanonicalImageType = "image/jpeg"

// Borne de la libération du cooldown après un échec d'écriture
const releaseTimeout = 2 * time.Second

// PostService implémente ports.PostService (Primary Port)
type PostService struct {
	repo       ports.PostRepository
	cooldowns  ports.CooldownRepository
	normalizer ports.ImageNormalizer
	blobs      ports.BlobStore
	admin      ports.AdminVerifier

	now   func() time.Time
	newID func() string
}

// NewPostService est le constructeur avec injection de dépendances.
// admin peut être nil : la purge est alors toujours refusée.
func NewPostService(
	repo ports.PostRepository,
	cooldowns ports.CooldownRepository,
	normalizer ports.ImageNormalizer,
	blobs ports.BlobStore,
	admin ports.AdminVerifier,
) *PostService {
	return &PostService{
		repo:       repo,
		cooldowns:  cooldowns,
		normalizer: normalizer,
		blobs:      blobs,
		admin:      admin,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *PostService) CreatePost(ctx context.Context, cmd ports.CreatePostCmd) (string, error) {
	if cmd.Username == "" {
		return "", domain.ErrUnauthenticated
	}

	// 1. Cooldown (avant tout travail coûteux)
	onCooldown, err := s.cooldowns.IsOnCooldown(ctx, cmd.Username)
	if err != nil {
		return "", fmt.Errorf("cooldown check: %w", err)
	}
	if onCooldown {
		return "", domain.ErrCooldownActive
	}

	// 2. Validation : texte ou image, vérifié avant l'upload
	if cmd.Text == "" && cmd.EncodedImage == "" {
		return "", domain.ErrValidation
	}

	// 3. Pipeline image : normalisation puis upload
	imgURL := ""
	if cmd.EncodedImage != "" {
		data, err := s.normalizer.Normalize(ctx, cmd.EncodedImage)
		if err != nil {
			return "", err
		}
		imgURL, err = s.blobs.PutBlob(ctx, data, CanonicalImageType)
		if err != nil {
			return "", fmt.Errorf("put blob: %w", err)
		}
	}

	post, err := domain.NewPost(s.newID(), cmd.Text, imgURL, cmd.Username, s.now())
	if err != nil {
		return "", err
	}

	// 4. Claim atomique du cooldown : si deux créations concurrentes passent
	// le check, une seule obtient le marqueur.
	claimed, err := s.cooldowns.StartCooldown(ctx, cmd.Username)
	if err != nil {
		return "", fmt.Errorf("start cooldown: %w", err)
	}
	if !claimed {
		return "", domain.ErrCooldownActive
	}

	// 5. Persistance (record + séquence + pending)
	if err := s.repo.Save(ctx, post); err != nil {
		// Le ctx de la requête peut être annulé : la libération doit passer quand même
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if rerr := s.cooldowns.ReleaseCooldown(releaseCtx, cmd.Username); rerr != nil {
			slog.Warn("Failed to release cooldown", "username", cmd.Username, "error", rerr)
		}
		return "", fmt.Errorf("save post: %w", err)
	}

	slog.Info("📝 Post created", "post_id", post.ID, "username", post.Username, "has_image", post.HasImage())
	return post.ID, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	if postID == "" {
		return nil, nil
	}
	return s.repo.FindByID(ctx, postID)
}

func (s *PostService) IsOnCooldown(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	return s.cooldowns.IsOnCooldown(ctx, username)
}

func (s *PostService) PurgeAll(ctx context.Context, credential string) error {
	if s.admin == nil {
		return domain.ErrForbidden
	}
	if err := s.admin.Verify(credential); err != nil {
		slog.Warn("Rejected purge attempt", "error", err)
		return domain.ErrForbidden
	}

	slog.Warn("🧹 Purging all posts")
	if err := s.repo.PurgeAll(ctx); err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	slog.Info("✅ Purge complete")
	return nil
}
