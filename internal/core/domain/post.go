package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// --- ERREURS DU DOMAINE ---
var (
	ErrInvalidMediaType = errors.New("not an image")
	ErrValidation       = errors.New("text or image required")
	ErrCooldownActive   = errors.New("cooldown in effect")
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrForbidden        = errors.New("invalid admin credential")
)

// CooldownWindow est la durée pendant laquelle un user ne peut pas reposter.
const CooldownWindow = 30 * time.Second

// Post est un message immuable du mur.
type Post struct {
	ID        string
	Text      string
	ImgURL    string
	CreatedAt int64 // millisecondes epoch
	Username  string
}

// NewPost construit un post valide. L'ID est généré par l'appelant (service).
func NewPost(id, text, imgURL, username string, now time.Time) (*Post, error) {
	if text == "" && imgURL == "" {
		return nil, ErrValidation
	}
	if strings.TrimSpace(username) == "" {
		return nil, ErrUnauthenticated
	}
	return &Post{
		ID:        id,
		Text:      text,
		ImgURL:    imgURL,
		CreatedAt: now.UnixMilli(),
		Username:  username,
	}, nil
}

// CreatedTime retourne createdAt en time.Time (UTC).
func (p *Post) CreatedTime() time.Time {
	return time.UnixMilli(p.CreatedAt).UTC()
}

// HasImage indique si une image est attachée.
func (p *Post) HasImage() bool {
	return p.ImgURL != ""
}

// Fields aplatit le post pour le stockage clé/valeur (schéma fixe).
func (p *Post) Fields() map[string]any {
	return map[string]any{
		"id":        p.ID,
		"text":      p.Text,
		"img_url":   p.ImgURL,
		"createdAt": strconv.FormatInt(p.CreatedAt, 10),
		"username":  p.Username,
	}
}

// PostFromFields reconstruit un post depuis un hash.
// Les champs inconnus sont ignorés; un hash sans id ou createdAt exploitable
// est considéré comme absent (nil).
func PostFromFields(fields map[string]string) *Post {
	id := fields["id"]
	if id == "" {
		return nil
	}
	createdAt, err := strconv.ParseInt(fields["createdAt"], 10, 64)
	if err != nil {
		return nil
	}
	return &Post{
		ID:        id,
		Text:      fields["text"],
		ImgURL:    fields["img_url"],
		CreatedAt: createdAt,
		Username:  fields["username"],
	}
}
