package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Storage struct {
	dir    string
	prefix string
	now    func() time.Time
}

// New stores files under dir and reports them below the /uploads/ URL path.
func New(dir string) *Storage {
	return &Storage{dir: dir, prefix: "/uploads/", now: time.Now}
}

func (s *Storage) Dir() string { return s.dir }

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeName.ReplaceAllString(strings.ReplaceAll(name, " ", "-"), "")
	name = strings.TrimLeft(name, ".")
	if len(name) > 80 {
		name = name[len(name)-80:]
	}
	if name == "" {
		name = "plik"
	}
	return name
}

// Save writes data under a unique name. Two uploads of the same file never collide.
func (s *Storage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	unique := fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), uuid.NewString()[:8], sanitizeFileName(filename))
	if err := os.WriteFile(filepath.Join(s.dir, unique), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.prefix + unique, nil
}
