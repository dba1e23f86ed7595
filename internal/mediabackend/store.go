package mediabackend

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/heimdex/heimdex-editor/internal/export"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMediaNotFound    = errors.New("media not found")
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
}

// IsVideoFile reports whether filename has a supported video extension.
func IsVideoFile(filename string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Store keeps uploaded media and their thumbnails under one directory:
//
//	<root>/<filename>
//	<root>/thumbs/<filename>/thumb_0001.jpg
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "thumbs"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string {
	return s.root
}

// Save writes an upload under a fresh stored name and returns that name.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	if !IsVideoFile(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, filepath.Ext(name))
	}

	stored := uuid.NewString()[:8] + "_" + storedName(name)

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.root, stored)); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return stored, nil
}

// Path returns the on-disk path of a stored media file.
func (s *Store) Path(filename string) (string, error) {
	if !validName(filename) {
		return "", fmt.Errorf("%w: %s", ErrMediaNotFound, filename)
	}
	path := filepath.Join(s.root, filename)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrMediaNotFound, filename)
	}
	return path, nil
}

// ThumbnailDir is where the thumbnails of filename live.
func (s *Store) ThumbnailDir(filename string) string {
	return filepath.Join(s.root, "thumbs", filename)
}

// Thumbnails lists the extracted thumbnails of filename in time order, as
// names relative to the store root.
func (s *Store) Thumbnails(filename string) ([]string, error) {
	entries, err := os.ReadDir(s.ThumbnailDir(filename))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jpg") {
			names = append(names, "thumbs/"+filename+"/"+e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// storedName reduces an upload name to characters that need no escaping in
// a URL path.
func storedName(name string) string {
	base := export.SanitizeName(filepath.Base(name), 100)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}

func validName(name string) bool {
	return name != "" && name != "." && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
