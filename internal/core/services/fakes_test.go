package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
)

// memStore implémente les ports de stockage en mémoire pour les tests
type memStore struct {
	mu        sync.Mutex
	posts     map[string]*domain.Post
	pending   []string
	cooldowns map[string]bool
	likes     map[string]map[string]bool

	saveErr  error
	saveHook func(ctx context.Context) error
	calls    []string
}

func newMemStore() *memStore {
	return &memStore{
		posts:     map[string]*domain.Post{},
		cooldowns: map[string]bool{},
		likes:     map[string]map[string]bool{},
	}
}

func (m *memStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *memStore) Save(ctx context.Context, post *domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("save")
	if m.saveHook != nil {
		if err := m.saveHook(ctx); err != nil {
			return err
		}
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *post
	m.posts[post.ID] = &cp
	m.pending = append(m.pending, "post:"+post.ID)
	return nil
}

func (m *memStore) FindByID(_ context.Context, postID string) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[postID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListFeed(_ context.Context, req domain.FeedRequest) ([]*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*domain.Post, 0, len(m.posts))
	for _, p := range m.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })

	if req.Offset >= int64(len(all)) {
		return []*domain.Post{}, nil
	}
	end := req.Offset + req.Limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[req.Offset:end], nil
}

func (m *memStore) PurgeAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("purge")
	m.posts = map[string]*domain.Post{}
	m.pending = nil
	m.cooldowns = map[string]bool{}
	m.likes = map[string]map[string]bool{}
	return nil
}

func (m *memStore) PopPending(_ context.Context, max int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := min(max, len(m.pending))
	keys := m.pending[:n]
	m.pending = m.pending[n:]
	return keys, nil
}

func (m *memStore) FindByKey(ctx context.Context, key string) (*domain.Post, error) {
	if len(key) <= len("post:") {
		return nil, errors.New("bad key")
	}
	return m.FindByID(ctx, key[len("post:"):])
}

func (m *memStore) IsOnCooldown(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("cooldown?")
	return m.cooldowns[username], nil
}

func (m *memStore) StartCooldown(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("cooldown!")
	if m.cooldowns[username] {
		return false, nil
	}
	m.cooldowns[username] = true
	return true, nil
}

// ReleaseCooldown échoue sur un ctx terminé, comme un vrai client Redis
func (m *memStore) ReleaseCooldown(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("release")
	if err := ctx.Err(); err != nil {
		return err
	}
	delete(m.cooldowns, username)
	return nil
}

func (m *memStore) IsMember(_ context.Context, postID, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.likes[postID][username], nil
}

func (m *memStore) Count(_ context.Context, postID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.likes[postID])), nil
}

func (m *memStore) Toggle(_ context.Context, postID, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.likes[postID]
	if set == nil {
		set = map[string]bool{}
		m.likes[postID] = set
	}
	if set[username] {
		delete(set, username)
		return false, nil
	}
	set[username] = true
	return true, nil
}

type fakeNormalizer struct {
	out   []byte
	err   error
	calls int
}

func (f *fakeNormalizer) Normalize(context.Context, string) ([]byte, error) {
	f.calls++
	return f.out, f.err
}

type fakeBlobs struct {
	url   string
	err   error
	calls int
}

func (f *fakeBlobs) PutBlob(context.Context, []byte, string) (string, error) {
	f.calls++
	return f.url, f.err
}

type fakeAdmin struct{ secret string }

func (f fakeAdmin) Verify(credential string) error {
	if credential != f.secret {
		return errors.New("mismatch")
	}
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	failFor   string
}

func (f *fakePublisher) PublishPostCreated(_ context.Context, post *domain.Post) error {
	if post.ID == f.failFor {
		return errors.New("broker down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, post.ID)
	return nil
}
