package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewPost_RequiresTextOrImage(t *testing.T) {
	_, err := NewPost("id1", "", "", "alice", time.Now())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err=%v want ErrValidation", err)
	}

	p, err := NewPost("id2", "", "https://cdn/x.jpeg", "alice", time.Now())
	if err != nil {
		t.Fatalf("image only post: %v", err)
	}
	if !p.HasImage() {
		t.Fatalf("expected HasImage=true")
	}
}

func TestNewPost_RequiresUsername(t *testing.T) {
	_, err := NewPost("id1", "hello", "", "  ", time.Now())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err=%v want ErrUnauthenticated", err)
	}
}

func TestPostFields_RoundTrip(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	p, err := NewPost("abc", "hello", "", "alice", now)
	if err != nil {
		t.Fatalf("new post: %v", err)
	}

	raw := map[string]string{}
	for k, v := range p.Fields() {
		raw[k] = v.(string)
	}
	raw["unknown"] = "ignored"

	got := PostFromFields(raw)
	if got == nil {
		t.Fatalf("expected post, got nil")
	}
	if *got != *p {
		t.Fatalf("got=%+v want %+v", *got, *p)
	}
	if got.CreatedAt != 1700000000123 {
		t.Fatalf("createdAt=%d", got.CreatedAt)
	}
}

func TestPostFromFields_Absent(t *testing.T) {
	if p := PostFromFields(map[string]string{}); p != nil {
		t.Fatalf("empty hash should be absent, got %+v", p)
	}
	if p := PostFromFields(map[string]string{"id": "x", "createdAt": "nope"}); p != nil {
		t.Fatalf("bad createdAt should be absent, got %+v", p)
	}
}

func TestFeedRequest_Normalize(t *testing.T) {
	cases := []struct {
		in   FeedRequest
		want FeedRequest
	}{
		{FeedRequest{Offset: -5, Limit: 0}, FeedRequest{Offset: 0, Limit: DefaultFeedLimit}},
		{FeedRequest{Offset: 3, Limit: 1000}, FeedRequest{Offset: 3, Limit: MaxFeedLimit}},
		{FeedRequest{Offset: 2, Limit: 7}, FeedRequest{Offset: 2, Limit: 7}},
	}
	for _, c := range cases {
		if got := c.in.Normalize(); got != c.want {
			t.Fatalf("Normalize(%+v)=%+v want %+v", c.in, got, c.want)
		}
	}
}

func TestNewPostCreatedEvent(t *testing.T) {
	p := &Post{ID: "x", ImgURL: "u", CreatedAt: 1000, Username: "bob"}
	ev := NewPostCreatedEvent(p)
	if ev.ID != "x" || ev.Username != "bob" || !ev.HasImage {
		t.Fatalf("unexpected event %+v", ev)
	}
	if !ev.CreatedAt.Equal(time.UnixMilli(1000)) {
		t.Fatalf("created_at=%v", ev.CreatedAt)
	}
}
