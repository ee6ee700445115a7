package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/ports"
)

const (
	AdminHeader  = "X-Admin-Password"
	maxBodyBytes = 12 << 20 // data URI base64 d'une image de quelques Mo
)

type Server struct {
	posts ports.PostService
	feed  ports.FeedService
	likes ports.LikeService
}

func NewServer(posts ports.PostService, feed ports.FeedService, likes ports.LikeService) *Server {
	return &Server{posts: posts, feed: feed, likes: likes}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/posts", s.listFeed)
	mux.HandleFunc("POST /api/posts", s.createPost)
	mux.HandleFunc("DELETE /api/posts", s.purgeAll)
	mux.HandleFunc("GET /api/posts/{id}", s.getPost)
	mux.HandleFunc("GET /api/posts/{id}/likes", s.getLikes)
	mux.HandleFunc("POST /api/posts/{id}/likes", s.toggleLike)
}

// --- DTOs ---

type postDTO struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ImgURL    string `json:"img_url"`
	CreatedAt int64  `json:"createdAt"`
	Username  string `json:"username"`
}

type feedResponse struct {
	Posts    []postDTO `json:"posts"`
	Cooldown bool      `json:"cooldown"`
}

type createPostRequest struct {
	Text       string `json:"text"`
	EncodedImg string `json:"encoded_img"`
}

type idResponse struct {
	ID string `json:"id"`
}

type likesResponse struct {
	SelfLiked bool  `json:"self_liked"`
	NumLikes  int64 `json:"num_likes"`
}

// --- QUERIES (Read) ---

func (s *Server) listFeed(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}
	limit, err := queryInt(r, "limit", domain.DefaultFeedLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}

	page, err := s.feed.FeedPage(r.Context(), domain.FeedRequest{Offset: offset, Limit: limit}, UsernameFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := feedResponse{Posts: make([]postDTO, len(page.Posts)), Cooldown: page.Cooldown}
	for i, p := range page.Posts {
		resp.Posts[i] = mapPost(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if post == nil {
		// Absence, pas une erreur
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, mapPost(post))
}

func (s *Server) getLikes(w http.ResponseWriter, r *http.Request) {
	state, err := s.likes.GetLikeState(r.Context(), r.PathValue("id"), UsernameFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likesResponse{SelfLiked: state.SelfLiked, NumLikes: state.Count})
}

// --- COMMANDS (Write) ---

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	username := UsernameFromContext(r.Context())
	if username == "" {
		writeDomainError(w, domain.ErrUnauthenticated)
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.posts.CreatePost(r.Context(), ports.CreatePostCmd{
		Text:         req.Text,
		EncodedImage: req.EncodedImg,
		Username:     username,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := s.likes.ToggleLike(r.Context(), r.PathValue("id"), UsernameFromContext(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idResponse{ID: id})
}

func (s *Server) purgeAll(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.PurgeAll(r.Context(), r.Header.Get(AdminHeader)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// --- HELPERS ---

func mapPost(p *domain.Post) postDTO {
	return postDTO{
		ID:        p.ID,
		Text:      p.Text,
		ImgURL:    p.ImgURL,
		CreatedAt: p.CreatedAt,
		Username:  p.Username,
	}
}

func queryInt(r *http.Request, key string, fallback int64) (int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// writeDomainError traduit les erreurs métier en statuts HTTP
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidMediaType),
		errors.Is(err, domain.ErrCooldownActive):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusUnauthorized, "not authenticated")
	default:
		// Erreur interne (Redis down, etc.) -> ne pas fuiter les détails techniques
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}
