package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs as files in Dir; references are bare file names served
// under BaseURL.
type DiskStore struct {
	Dir     string
	BaseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *DiskStore) Put(_ context.Context, name string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

func (s *DiskStore) Resolve(_ context.Context, ref string) (string, error) {
	if IsExternal(ref) {
		return ref, nil
	}
	if err := ValidateName(ref); err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(s.Dir, ref)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return "", fmt.Errorf("stat %s: %w", ref, err)
	}
	return s.BaseURL + "/" + ref, nil
}

func (s *DiskStore) Remove(_ context.Context, ref string) error {
	if IsExternal(ref) {
		return nil
	}
	if err := ValidateName(ref); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.Dir, ref)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return fmt.Errorf("remove %s: %w", ref, err)
	}
	return nil
}
