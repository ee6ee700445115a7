package repository

// Layout des clés Redis
const (
	FeedKey    = "posts"     // Sorted Set : id -> rang d'insertion
	FeedSeqKey = "posts:seq" // Compteur des scores du feed
	PendingKey = "pending"   // List : clés post:{id} à traiter

	postPrefix     = "post:"
	cooldownPrefix = "cooldown:"
	likesPrefix    = "likes:"
)

func PostKey(id string) string { return postPrefix + id }

func cooldownKey(username string) string { return cooldownPrefix + username }

func likesKey(postID string) string { return likesPrefix + postID }
