// Package gateway provides access to recap documents, abstracting away whether
// they live on the local filesystem or behind an HTTP endpoint.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-recap/internal/domain"
)

// DefaultRecapFile is loaded when no data file is requested explicitly.
const DefaultRecapFile = "recap_2025.json"

var (
	// ErrRecapNotFound is returned when the requested recap does not exist.
	ErrRecapNotFound = errors.New("recap not found")
	// ErrForbiddenPath is returned when a path normalizes outside its root.
	ErrForbiddenPath = errors.New("path escapes root")
)

// Source defines the behavior of a gateway for loading recap documents.
type Source interface {
	FetchRecap(ctx context.Context, name string) (*domain.Recap, error)
}

// SafeJoin resolves name against root and refuses anything that normalizes
// outside of it.
func SafeJoin(root, name string) (string, error) {
	p := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", fmt.Errorf("%q: %w", name, ErrForbiddenPath)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", name, ErrForbiddenPath)
	}
	return p, nil
}

// FileSource reads recap documents from a directory.
type FileSource struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
}

// NewFileSource creates a FileSource rooted at root.
func NewFileSource(fs afero.Fs, root string, logger *zap.Logger) *FileSource {
	return &FileSource{fs: fs, root: root, logger: logger}
}

// FetchRecap loads and decodes name from the source root.
func (s *FileSource) FetchRecap(ctx context.Context, name string) (*domain.Recap, error) {
	if name == "" {
		name = DefaultRecapFile
	}
	p, err := SafeJoin(s.root, name)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loading recap", zap.String("path", p))

	f, err := s.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", name, ErrRecapNotFound)
		}
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	return decode(ctx, name, f)
}

func decode(ctx context.Context, name string, r io.Reader) (*domain.Recap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var recap domain.Recap
	if err := json.NewDecoder(r).Decode(&recap); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return &recap, nil
}
