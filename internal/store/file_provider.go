package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// Data file formats understood by the file provider.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const lockRetryDelay = 25 * time.Millisecond

// FileProvider persists the workspace blob in a single JSON or YAML file.
// An advisory lock keeps concurrent CLI invocations from interleaving
// writes; the lock lives in a sidecar file because the data file itself is
// swapped by an atomic rename on every save.
type FileProvider struct {
	path   string
	format string
	flk    *flock.Flock
	logger *log.Logger
}

func NewFileProvider(path, format string, logger *log.Logger) (*FileProvider, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: data file path is required", ErrInvalid)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = FormatJSON
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("%w: unsupported data format %q (json or yaml)", ErrInvalid, format)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileProvider{
		path:   path,
		format: format,
		flk:    flock.New(path + ".lock"),
		logger: logger,
	}, nil
}

// Path returns the data file location.
func (p *FileProvider) Path() string { return p.path }

func (p *FileProvider) Load(ctx context.Context) (map[string]any, error) {
	if _, err := p.flk.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return nil, fmt.Errorf("lock %s: %w", p.path, err)
	}
	defer func() { _ = p.flk.Unlock() }()

	b, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// A missing file is an empty workspace, not an error.
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}

	blob := map[string]any{}
	if len(bytes.TrimSpace(b)) == 0 {
		return blob, nil
	}
	switch p.format {
	case FormatYAML:
		if err := yaml.Unmarshal(b, &blob); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, p.path, err)
		}
	default:
		if err := json.Unmarshal(b, &blob); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, p.path, err)
		}
	}

	for _, problem := range validateBlob(blob) {
		p.logger.Warn("state file violates schema", "path", p.path, "problem", problem)
	}
	return blob, nil
}

func (p *FileProvider) Save(ctx context.Context, blob map[string]any) error {
	if _, err := p.flk.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("lock %s: %w", p.path, err)
	}
	defer func() { _ = p.flk.Unlock() }()

	var b []byte
	var err error
	switch p.format {
	case FormatYAML:
		b, err = yaml.Marshal(blob)
	default:
		b, err = json.MarshalIndent(blob, "", "  ")
		if err == nil {
			b = append(b, '\n')
		}
	}
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return atomicWriteFile(p.path, b, 0o644)
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%d", timeNow().UnixNano()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
