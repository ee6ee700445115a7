package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	// Décodeurs enregistrés auprès de image.Decode
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/vincent-petithory/dataurl"
	"golang.org/x/image/draw"
	"golang.org/x/sync/semaphore"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
)

const (
	DefaultMaxDimension = 1024
	DefaultQuality      = 85
	DefaultWorkers      = 4

	// Garde-fou contre les bombes de décompression (~50 MP)
	maxSourcePixels = 50_000_000
)

type Options struct {
	MaxDimension int
	Quality      int
	Workers      int64 // décodages simultanés max
}

// Normalizer borne les images à MaxDimension (ratio conservé, jamais
// d'agrandissement) puis ré-encode en JPEG.
type Normalizer struct {
	maxDim  int
	quality int
	sem     *semaphore.Weighted
}

func NewNormalizer(opts Options) *Normalizer {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Normalizer{
		maxDim:  opts.MaxDimension,
		quality: opts.Quality,
		sem:     semaphore.NewWeighted(opts.Workers),
	}
}

func (n *Normalizer) Normalize(ctx context.Context, dataURI string) ([]byte, error) {
	// 1. Parsing du data URI et contrôle du type déclaré
	du, err := dataurl.DecodeString(dataURI)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed data uri", domain.ErrInvalidMediaType)
	}
	if du.MediaType.Type != "image" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidMediaType, du.MediaType.ContentType())
	}

	// 2. Travail CPU borné
	if err := n.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer n.sem.Release(1)

	return n.normalizeBytes(du.Data)
}

func (n *Normalizer) normalizeBytes(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMediaType, err)
	}
	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, fmt.Errorf("%w: image too large (%dx%d)", domain.ErrInvalidMediaType, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMediaType, err)
	}

	b := src.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), n.maxDim)

	// Fond blanc : JPEG n'a pas de canal alpha
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// FitWithin calcule la taille bornée à limit x limit, ratio conservé.
// Jamais d'agrandissement ; chaque côté vaut au moins 1.
func FitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	scale := math.Min(float64(limit)/float64(w), float64(limit)/float64(h))
	nw := clamp(int(math.Round(float64(w)*scale)), 1, limit)
	nh := clamp(int(math.Round(float64(h)*scale)), 1, limit)
	return nw, nh
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
