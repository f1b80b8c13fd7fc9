package avatars

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrInvalidName    = errors.New("invalid avatar name")
	ErrAvatarNotFound = errors.New("avatar not found")
)

// DiskApi stores avatars on disk: preset images live in the root dir,
// custom uploads under root/custom keyed by character id.
type DiskApi struct {
	root string
}

func NewDiskApi(root string) (*DiskApi, error) {
	if err := os.MkdirAll(filepath.Join(root, "custom"), 0o755); err != nil {
		return nil, fmt.Errorf("create avatars root: %w", err)
	}
	return &DiskApi{root: root}, nil
}

// List returns the preset avatar file names.
func (d *DiskApi) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Path resolves a preset avatar name to its file path. Names with path
// separators are rejected.
func (d *DiskApi) Path(name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", ErrInvalidName
	}
	path := filepath.Join(d.root, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrAvatarNotFound
	}
	return path, nil
}

// SaveCustom stores an uploaded avatar for the character, replacing any
// previous one.
func (d *DiskApi) SaveCustom(characterID string, data []byte) error {
	return os.WriteFile(d.customPath(characterID), data, 0o644)
}

// CustomPath resolves the character's uploaded avatar.
func (d *DiskApi) CustomPath(characterID string) (string, error) {
	path := d.customPath(characterID)
	if _, err := os.Stat(path); err != nil {
		return "", ErrAvatarNotFound
	}
	return path, nil
}

func (d *DiskApi) customPath(characterID string) string {
	return filepath.Join(d.root, "custom", characterID+".png")
}
