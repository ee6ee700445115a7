package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/domain"
)

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 7 {
		for x := 0; x < w; x += 7 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a jpeg: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestNormalize_Dimensions(t *testing.T) {
	n := NewNormalizer(Options{})
	cases := []struct {
		w, h         int
		wantW, wantH int
	}{
		{2000, 500, 1024, 256},
		{500, 2000, 256, 1024},
		{100, 100, 100, 100},
		{1024, 1024, 1024, 1024},
		{3000, 3000, 1024, 1024},
	}
	for _, c := range cases {
		out, err := n.Normalize(context.Background(), pngDataURI(t, c.w, c.h))
		if err != nil {
			t.Fatalf("normalize %dx%d: %v", c.w, c.h, err)
		}
		gotW, gotH := decodedSize(t, out)
		if gotW != c.wantW || gotH != c.wantH {
			t.Fatalf("%dx%d -> %dx%d want %dx%d", c.w, c.h, gotW, gotH, c.wantW, c.wantH)
		}
	}
}

func TestNormalize_RejectsNonImage(t *testing.T) {
	n := NewNormalizer(Options{})

	_, err := n.Normalize(context.Background(), "data:text/plain;base64,aGVsbG8=")
	if !errors.Is(err, domain.ErrInvalidMediaType) {
		t.Fatalf("text payload: err=%v want ErrInvalidMediaType", err)
	}

	_, err = n.Normalize(context.Background(), "not a data uri")
	if !errors.Is(err, domain.ErrInvalidMediaType) {
		t.Fatalf("garbage: err=%v want ErrInvalidMediaType", err)
	}

	// Type déclaré image mais octets illisibles
	_, err = n.Normalize(context.Background(), "data:image/png;base64,aGVsbG8=")
	if !errors.Is(err, domain.ErrInvalidMediaType) {
		t.Fatalf("corrupt image: err=%v want ErrInvalidMediaType", err)
	}
}

func TestNormalize_CancelledWhileWaiting(t *testing.T) {
	n := NewNormalizer(Options{Workers: 1})
	if err := n.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer n.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := n.Normalize(ctx, pngDataURI(t, 10, 10)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

func TestFitWithin(t *testing.T) {
	cases := []struct{ w, h, limit, wantW, wantH int }{
		{2000, 500, 1024, 1024, 256},
		{500, 2000, 1024, 256, 1024},
		{100, 100, 1024, 100, 100},
		{5000, 1, 1024, 1024, 1},
		{1025, 1024, 1024, 1024, 1023},
	}
	for _, c := range cases {
		w, h := FitWithin(c.w, c.h, c.limit)
		if w != c.wantW || h != c.wantH {
			t.Fatalf("FitWithin(%d,%d,%d)=%dx%d want %dx%d", c.w, c.h, c.limit, w, h, c.wantW, c.wantH)
		}
	}
}
