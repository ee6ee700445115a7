package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
)

// Record est la forme exportée d'un post : le username n'est jamais exporté.
type Record struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ImgURL    string `json:"img_url"`
	CreatedAt int64  `json:"createdAt"`
}

// PostWalker parcourt tous les posts du feed
type PostWalker interface {
	Walk(ctx context.Context, pageSize int64, fn func(*domain.Post) error) error
}

// JSONLZstdWriter écrit une ligne JSON par valeur dans un flux zstd
type JSONLZstdWriter struct {
	enc *zstd.Encoder
	w   *bufio.Writer
}

func NewJSONLZstdWriter(out io.Writer) (*JSONLZstdWriter, error) {
	enc, err := zstd.NewWriter(out)
	if err != nil {
		return nil, err
	}
	return &JSONLZstdWriter{
		enc: enc,
		w:   bufio.NewWriterSize(enc, 256*1024),
	}, nil
}

func (w *JSONLZstdWriter) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flush le buffer puis termine la frame zstd
func (w *JSONLZstdWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		_ = w.enc.Close()
		return err
	}
	return w.enc.Close()
}

// Dump exporte tout le feed dans out et retourne le nombre de posts écrits
func Dump(ctx context.Context, posts PostWalker, out io.Writer) (int, error) {
	w, err := NewJSONLZstdWriter(out)
	if err != nil {
		return 0, fmt.Errorf("zstd writer: %w", err)
	}

	n := 0
	walkErr := posts.Walk(ctx, domain.MaxFeedLimit, func(p *domain.Post) error {
		n++
		return w.Write(Record{
			ID:        p.ID,
			Text:      p.Text,
			ImgURL:    p.ImgURL,
			CreatedAt: p.CreatedAt,
		})
	})
	if err := w.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	return n, walkErr
}
