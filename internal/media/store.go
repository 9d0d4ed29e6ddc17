// Package media places uploaded images and videos on local disk and hands
// back the public URL they are served under.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Kind int

const (
	Image Kind = iota
	Video
)

var ErrUnsupportedType = errors.New("unsupported file type")

var allowed = map[Kind]map[string]bool{
	Image: {".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true},
	Video: {".mp4": true, ".webm": true},
}

// Saver persists one multipart part at dst. gin.Context.SaveUploadedFile
// satisfies it.
type Saver func(fh *multipart.FileHeader, dst string) error

type Store struct {
	Dir       string
	URLPrefix string
}

func NewStore(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Target validates the upload's extension and picks a fresh file name.
// It returns the disk path to write and the URL to persist.
func (s *Store) Target(fh *multipart.FileHeader, kind Kind) (dst, url string, err error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowed[kind][ext] {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, fh.Filename)
	}
	name := uuid.NewString() + ext
	return filepath.Join(s.Dir, name), path.Join(s.URLPrefix, name), nil
}

func (s *Store) Save(save Saver, fh *multipart.FileHeader, kind Kind) (string, error) {
	dst, url, err := s.Target(fh, kind)
	if err != nil {
		return "", err
	}
	if err := save(fh, dst); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return url, nil
}

// Discard deletes files stored by Save, given their public URLs. URLs that
// do not point into the store are ignored.
func (s *Store) Discard(urls ...string) {
	for _, u := range urls {
		name, ok := strings.CutPrefix(u, s.URLPrefix+"/")
		if !ok || name == "" || strings.ContainsAny(name, `/\`) {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[media] discard %s: %v", u, err)
		}
	}
}
