package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSFetcher opens gs://bucket/object sources from Google Cloud Storage.
// The storage client is created on first use so commands that never touch
// GCS do not need credentials.
type GCSFetcher struct {
	opts []option.ClientOption

	once    sync.Once
	client  *storage.Client
	initErr error
}

// NewGCSFetcher returns a fetcher using the given client options.
// An empty credentialsFile falls back to application default credentials.
func NewGCSFetcher(credentialsFile string) *GCSFetcher {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return &GCSFetcher{opts: opts}
}

// Scheme implements RemoteFetcher.
func (g *GCSFetcher) Scheme() string {
	return "gs"
}

// Open implements RemoteFetcher.
func (g *GCSFetcher) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, object, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}

	g.once.Do(func() {
		g.client, g.initErr = storage.NewClient(ctx, g.opts...)
	})
	if g.initErr != nil {
		return nil, fmt.Errorf("failed to create storage client; %w", g.initErr)
	}

	r, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, uri)
		}
		return nil, fmt.Errorf("failed to read %s; %w", uri, err)
	}
	return r, nil
}

// Close releases the storage client if one was created.
func (g *GCSFetcher) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// ParseGCSURI splits gs://bucket/path/to/object into bucket and object name.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// uri: %q", uri)
	}
	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs uri must name a bucket and an object: %q", uri)
	}
	return bucket, object, nil
}
