// Package attachments stores one image file per record under the uploads
// directory and derives the URL the record's image cell links to.
package attachments

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meyvali/backoffice/internal/fsutil"
)

var (
	// ErrInvalidImagePayload indicates the uploaded bytes are not a decodable image.
	ErrInvalidImagePayload = errors.New("invalid image payload")
	// ErrAttachmentNotFound indicates the requested upload does not exist.
	ErrAttachmentNotFound = errors.New("attachment not found")
	// ErrInvalidFileName indicates a name that is not a plain file in the uploads directory.
	ErrInvalidFileName = errors.New("invalid attachment file name")
)

// AttachmentIOWarning reports a filesystem failure that must not abort the
// record write it belongs to.
type AttachmentIOWarning struct {
	Op   string
	Path string
	Err  error
}

func (w *AttachmentIOWarning) Error() string {
	return fmt.Sprintf("attachment %s %s: %v", w.Op, w.Path, w.Err)
}

func (w *AttachmentIOWarning) Unwrap() error {
	return w.Err
}

// Kind names the record family an attachment belongs to.
type Kind string

const (
	KindProduct  Kind = "product"
	KindPayment  Kind = "payment"
	KindEndOfDay Kind = "endofday"
)

const fileExt = ".jpg"

var galleryExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Options configures a Manager.
type Options struct {
	Dir       string
	BaseURL   string
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// Attachment is a stored image file. StaleRemoval is set when the new file
// was stored but the previous file could not be removed.
type Attachment struct {
	FileName     string
	Path         string
	URL          string
	StaleRemoval *AttachmentIOWarning
}

// ImageFile is one entry of the uploads gallery.
type ImageFile struct {
	Name    string    `json:"name"`
	URL     string    `json:"url"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Manager owns the uploads directory.
type Manager struct {
	opts   Options
	logger *zap.Logger
}

// NewManager builds a Manager. Quality defaults to 60 when out of range.
func NewManager(opts Options, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		opts.Quality = 60
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Manager{opts: opts, logger: logger}
}

// Dir returns the uploads directory.
func (m *Manager) Dir() string {
	return m.opts.Dir
}

// FileName derives the deterministic file name for a record's attachment.
func FileName(date, id string, kind Kind) string {
	parts := []string{sanitize(date)}
	if id = sanitize(id); id != "" {
		parts = append(parts, id)
	}
	parts = append(parts, string(kind))
	return strings.Join(parts, "-") + fileExt
}

// URL returns the public URL of an uploaded file.
func (m *Manager) URL(name string) string {
	return m.opts.BaseURL + "/uploads/" + url.PathEscape(name)
}

// Attach normalizes raw and stores it as the attachment of (date, id, kind).
// previousLink is the record's current image link; once the new file is in
// place, the previous file is removed when its name differs; a failed removal
// is reported in Attachment.StaleRemoval. Invalid payloads fail with
// ErrInvalidImagePayload before anything on disk changes. A failed write is
// reported as *AttachmentIOWarning.
func (m *Manager) Attach(date, id string, kind Kind, raw []byte, mimeHint, previousLink string) (Attachment, error) {
	data, err := normalize(raw, mimeHint, m.opts.MaxWidth, m.opts.MaxHeight, m.opts.Quality)
	if err != nil {
		return Attachment{}, err
	}

	name := FileName(date, id, kind)
	target := filepath.Join(m.opts.Dir, name)

	if err := fsutil.WriteFile(target, data); err != nil {
		return Attachment{}, &AttachmentIOWarning{Op: "write", Path: target, Err: err}
	}

	att := Attachment{FileName: name, Path: target, URL: m.URL(name)}
	if prev, ok := m.FileFromLink(previousLink); ok && prev != name {
		var warning *AttachmentIOWarning
		if err := m.removeFile(prev); errors.As(err, &warning) {
			att.StaleRemoval = warning
		}
	}

	m.logger.Info("attachment stored",
		zap.String("file", name),
		zap.Int("bytes", len(data)),
	)

	return att, nil
}

// Remove deletes the attachment of (date, id, kind). The file named by
// currentLink is preferred over the derived name, so files written under an
// older naming scheme are removed too. A missing file is not an error.
func (m *Manager) Remove(date, id string, kind Kind, currentLink string) error {
	name, ok := m.FileFromLink(currentLink)
	if !ok {
		name = FileName(date, id, kind)
	}
	return m.removeFile(name)
}

// FileFromLink extracts the uploads file name from an image link.
func (m *Manager) FileFromLink(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}

	p := link
	if u, err := url.Parse(link); err == nil {
		p = u.Path
	}
	idx := strings.LastIndex(p, "/uploads/")
	if idx < 0 {
		return "", false
	}

	name := path.Base(p[idx+len("/uploads/"):])
	if validName(name) != nil {
		return "", false
	}
	return name, true
}

// List returns the image files in the uploads directory ordered by name.
func (m *Manager) List() ([]ImageFile, error) {
	entries, err := os.ReadDir(m.opts.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []ImageFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	files := make([]ImageFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !slices.Contains(galleryExts, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, ImageFile{
			Name:    entry.Name(),
			URL:     m.URL(entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// DeleteFiles removes the named uploads, reporting failures per file.
func (m *Manager) DeleteFiles(names []string) (deleted []string, failed map[string]string) {
	failed = make(map[string]string)
	for _, name := range names {
		if err := validName(name); err != nil {
			failed[name] = err.Error()
			continue
		}
		err := os.Remove(filepath.Join(m.opts.Dir, name))
		switch {
		case err == nil:
			deleted = append(deleted, name)
		case errors.Is(err, fs.ErrNotExist):
			failed[name] = ErrAttachmentNotFound.Error()
		default:
			failed[name] = err.Error()
			m.logger.Warn("failed to delete upload", zap.String("file", name), zap.Error(err))
		}
	}
	return deleted, failed
}

// Resolve returns the on-disk path of an existing upload.
func (m *Manager) Resolve(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	p := filepath.Join(m.opts.Dir, name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%s: %w", name, ErrAttachmentNotFound)
	}
	return p, nil
}

func (m *Manager) removeFile(name string) error {
	p := filepath.Join(m.opts.Dir, name)
	err := os.Remove(p)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	warning := &AttachmentIOWarning{Op: "remove", Path: p, Err: err}
	m.logger.Warn("failed to remove stale attachment", zap.Error(warning))
	return warning
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return nil
}

func sanitize(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
