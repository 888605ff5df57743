// Package staging copies user-supplied import files into the directory the
// platform import engine reads from.
package staging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/designcoil/catalog-import/internal/pathutil"
	"github.com/designcoil/catalog-import/internal/pipeline"
)

// DefaultExtension is used when the source file has no extension.
const DefaultExtension = "csv"

var (
	// ErrFileNotFound is returned when the source file does not exist.
	ErrFileNotFound = errors.New("import file not found")

	// ErrInvalidEntity is returned for entity codes that would place the staged
	// file outside the staging directory.
	ErrInvalidEntity = errors.New("invalid entity code")
)

// Request describes one file to stage.
type Request struct {
	SourcePath string
	EntityCode string
	Delimiter  string
	Enclosure  string
}

// StagedSource is the staged copy of a user file.
type StagedSource struct {
	SourcePath  string
	StagingPath string
	Checksum    string // hex SHA-256 of the staged bytes
	Delimiter   string
	Enclosure   string
}

// Source returns the pipeline source adapter bound to the staged copy.
func (s StagedSource) Source() pipeline.Source {
	return pipeline.Source{
		Path:      s.StagingPath,
		Delimiter: s.Delimiter,
		Enclosure: s.Enclosure,
	}
}

// RemoteFetcher opens source files addressed by URI rather than by path.
type RemoteFetcher interface {
	// Scheme is the URI scheme handled, without "://".
	Scheme() string

	// Open returns the object contents. Missing objects yield ErrFileNotFound.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Stager copies source files into a fixed staging directory.
type Stager struct {
	root     string
	dir      string
	fetchers map[string]RemoteFetcher
	logger   *slog.Logger
}

// NewStager returns a Stager that resolves relative source paths against root
// and writes into stagingDir. A relative root is made absolute against the
// working directory, and a relative stagingDir is resolved against root, so
// every staged path handed to the platform is absolute.
func NewStager(root, stagingDir string, logger *slog.Logger, fetchers ...RemoteFetcher) (*Stager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve platform root %s; %w", root, err)
	}

	s := &Stager{
		root:     absRoot,
		dir:      pathutil.Resolve(stagingDir, absRoot),
		fetchers: make(map[string]RemoteFetcher, len(fetchers)),
		logger:   logger,
	}
	for _, f := range fetchers {
		s.fetchers[f.Scheme()] = f
	}
	return s, nil
}

// Root returns the absolute platform root.
func (s *Stager) Root() string {
	return s.root
}

// Dir returns the absolute staging directory.
func (s *Stager) Dir() string {
	return s.dir
}

// Stage copies req.SourcePath to <staging dir>/<entity>.<ext>, replacing any
// file staged earlier for the same entity. Nothing is written when the source
// does not exist. The copy is not atomic.
func (s *Stager) Stage(ctx context.Context, req Request) (StagedSource, error) {
	if err := validateEntity(req.EntityCode); err != nil {
		return StagedSource{}, err
	}

	src, resolved, err := s.open(ctx, req.SourcePath)
	if err != nil {
		return StagedSource{}, err
	}
	defer src.Close()

	ext := strings.TrimPrefix(filepath.Ext(resolved), ".")
	if ext == "" {
		ext = DefaultExtension
	}
	dest := filepath.Join(s.dir, req.EntityCode+"."+ext)

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return StagedSource{}, fmt.Errorf("failed to create staging directory %s; %w", s.dir, err)
	}

	sum, err := copyTo(dest, src)
	if err != nil {
		return StagedSource{}, err
	}

	s.logger.Debug("staged import file", "source", resolved, "destination", dest, "sha256", sum)

	return StagedSource{
		SourcePath:  resolved,
		StagingPath: dest,
		Checksum:    sum,
		Delimiter:   req.Delimiter,
		Enclosure:   req.Enclosure,
	}, nil
}

// open returns a reader for the source and the resolved location it came from.
func (s *Stager) open(ctx context.Context, sourcePath string) (io.ReadCloser, string, error) {
	if scheme, _, ok := strings.Cut(sourcePath, "://"); ok {
		fetcher, found := s.fetchers[scheme]
		if !found {
			return nil, "", fmt.Errorf("unsupported source scheme %q", scheme)
		}
		rc, err := fetcher.Open(ctx, sourcePath)
		if err != nil {
			return nil, "", err
		}
		return rc, sourcePath, nil
	}

	resolved := pathutil.Resolve(sourcePath, s.root)
	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", ErrFileNotFound, resolved)
		}
		return nil, "", fmt.Errorf("failed to access import file %s; %w", resolved, err)
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("%w: %s is a directory", ErrFileNotFound, resolved)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open import file %s; %w", resolved, err)
	}
	return f, resolved, nil
}

// copyTo truncates dest, copies src into it and returns the SHA-256 of the
// bytes written.
func copyTo(dest string, src io.Reader) (string, error) {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file %s; %w", dest, err)
	}

	hash := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hash), src); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to copy import file to %s; %w", dest, err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close staged file %s; %w", dest, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func validateEntity(code string) error {
	if code == "" || code == "." || code == ".." || strings.ContainsAny(code, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidEntity, code)
	}
	return nil
}
