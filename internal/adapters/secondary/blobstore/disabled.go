package blobstore

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("blob storage not configured")

// Disabled est utilisé en local sans bucket : les posts texte restent possibles.
type Disabled struct{}

func (Disabled) PutBlob(context.Context, []byte, string) (string, error) {
	return "", ErrNotConfigured
}
