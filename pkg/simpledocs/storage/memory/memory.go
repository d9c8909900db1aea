// Package memory provides an in-process signed-URL broker for tests and
// development. URLs are well-formed but point nowhere.
package memory

import (
	"context"
	"fmt"
	"time"
)

// Broker fabricates upload/download URLs without any backing store.
type Broker struct {
	baseURL string
	expiry  time.Duration
}

// New creates a new in-memory broker.
func New() *Broker {
	return &Broker{
		baseURL: "memory://bucket",
		expiry:  15 * time.Minute,
	}
}

func (b *Broker) UploadURL(ctx context.Context, storageKey, mediaType string) (string, error) {
	return fmt.Sprintf("%s/%s?method=PUT&expires=%d", b.baseURL, storageKey, int(b.expiry.Seconds())), nil
}

func (b *Broker) DownloadURL(ctx context.Context, storageKey string) (string, error) {
	return fmt.Sprintf("%s/%s?method=GET&expires=%d", b.baseURL, storageKey, int(b.expiry.Seconds())), nil
}
