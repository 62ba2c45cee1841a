package drawio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/ioschema/pkg/errors"
)

// MaxTemplateSize bounds template uploads.
const MaxTemplateSize = 32 << 20

// Info describes the current template file.
type Info struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"modified"`
	Size    int64     `json:"size"`
	Pages   []string  `json:"pages"`
}

// Repository owns the canonical template document.
//
// Load returns a deep copy the caller may edit freely. Update validates and
// stores a replacement template.
type Repository interface {
	Load(ctx context.Context) (*Document, error)
	Info(ctx context.Context) (Info, error)
	Update(ctx context.Context, r io.Reader) (Info, error)
}

// FileRepository serves a template from a file. The parsed document is kept
// in memory and reloaded when the file's modification time changes.
type FileRepository struct {
	path string

	mu        sync.RWMutex
	canonical *Document
	modTime   time.Time
	size      int64
}

// NewFileRepository creates a repository for the template at path. The file
// is read on first use.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Path returns the template path.
func (r *FileRepository) Path() string { return r.path }

// Load returns a fresh copy of the template.
func (r *FileRepository) Load(ctx context.Context) (*Document, error) {
	doc, _, err := r.current()
	if err != nil {
		return nil, err
	}
	return doc.Copy(), nil
}

// Info reports the template name, modification time, size and page names.
func (r *FileRepository) Info(ctx context.Context) (Info, error) {
	doc, st, err := r.current()
	if err != nil {
		return Info{}, err
	}
	return Info{
		Name:    filepath.Base(r.path),
		Path:    r.path,
		ModTime: st.ModTime(),
		Size:    st.Size(),
		Pages:   doc.PageNames(),
	}, nil
}

// Update replaces the template with the content of src. The upload must
// parse as a draw.io document with at least one page; it is written to a
// temporary file and renamed over the template.
func (r *FileRepository) Update(ctx context.Context, src io.Reader) (Info, error) {
	data, err := io.ReadAll(io.LimitReader(src, MaxTemplateSize+1))
	if err != nil {
		return Info{}, fmt.Errorf("read template upload: %w", err)
	}
	if len(data) > MaxTemplateSize {
		return Info{}, errors.New(errors.ErrCodeInvalidTemplate, "template exceeds %d bytes", MaxTemplateSize)
	}
	doc, err := Parse(data)
	if err != nil {
		return Info{}, err
	}
	if len(doc.Pages()) == 0 {
		return Info{}, errors.New(errors.ErrCodeInvalidTemplate, "template has no diagram pages")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeAtomic(r.path, data); err != nil {
		return Info{}, err
	}
	st, err := os.Stat(r.path)
	if err != nil {
		return Info{}, fmt.Errorf("stat template: %w", err)
	}
	r.canonical, r.modTime, r.size = doc, st.ModTime(), st.Size()

	return Info{
		Name:    filepath.Base(r.path),
		Path:    r.path,
		ModTime: st.ModTime(),
		Size:    st.Size(),
		Pages:   doc.PageNames(),
	}, nil
}

// current returns the canonical document, reloading it when the file changed.
func (r *FileRepository) current() (*Document, os.FileInfo, error) {
	st, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.New(errors.ErrCodeTemplateNotFound, "template not found: %s", r.path)
		}
		return nil, nil, fmt.Errorf("stat template: %w", err)
	}

	r.mu.RLock()
	doc := r.canonical
	fresh := doc != nil && r.modTime.Equal(st.ModTime()) && r.size == st.Size()
	r.mu.RUnlock()
	if fresh {
		return doc, st, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.canonical != nil && r.modTime.Equal(st.ModTime()) && r.size == st.Size() {
		return r.canonical, st, nil
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, nil, fmt.Errorf("read template: %w", err)
	}
	doc, err = Parse(data)
	if err != nil {
		return nil, nil, err
	}
	r.canonical, r.modTime, r.size = doc, st.ModTime(), st.Size()
	return doc, st, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create template dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".template-*.drawio")
	if err != nil {
		return fmt.Errorf("create temp template: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write temp template: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace template: %w", err)
	}
	return nil
}

var _ Repository = (*FileRepository)(nil)
