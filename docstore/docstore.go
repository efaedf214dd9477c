// Package docstore
package docstore

import (
	"context"
)

// PutResult identifies stored content and its integrity digest.
type PutResult struct {
	ContentID     string `json:"contentId"`
	IntegrityHash string `json:"integrityHash"`
}

// Store is the content-addressed document collaborator. Implementations keep
// the integrity hash alongside the object so Get can verify on read.
type Store interface {
	Put(ctx context.Context, data []byte, name string, tags map[string]string) (*PutResult, error)
	Get(ctx context.Context, contentID string) ([]byte, bool, error)
}
