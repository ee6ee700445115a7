package domain

const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 100
)

// FeedRequest encapsule la fenêtre demandée sur la séquence du feed
type FeedRequest struct {
	Offset int64
	Limit  int64
}

// Normalize borne offset/limit.
func (r FeedRequest) Normalize() FeedRequest {
	if r.Offset < 0 {
		r.Offset = 0
	}
	if r.Limit <= 0 {
		r.Limit = DefaultFeedLimit
	}
	if r.Limit > MaxFeedLimit {
		r.Limit = MaxFeedLimit
	}
	return r
}

// FeedPage est la réponse composite de la page d'accueil.
type FeedPage struct {
	Posts    []*Post
	Cooldown bool
}

// LikeState est l'état des likes d'un post vu par un user.
type LikeState struct {
	SelfLiked bool
	Count     int64
}
