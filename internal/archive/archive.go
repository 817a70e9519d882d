package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// DefaultFilename is the attachment name used for mailed archives.
const DefaultFilename = "images.zip"

var (
	ErrFinalized = errors.New("archive already finalized")
	ErrEmptyName = errors.New("entry name is required")
)

// Entry is one named payload inside an archive.
type Entry struct {
	Name string
	Data []byte
}

// Builder assembles a zip archive in memory. Entries are stored in the order
// they are added. The zero value is not usable; call NewBuilder.
type Builder struct {
	buf       bytes.Buffer
	zw        *zip.Writer
	names     map[string]struct{}
	count     int
	finalized bool
	now       func() time.Time
}

func NewBuilder() *Builder {
	b := &Builder{
		names: map[string]struct{}{},
		now:   time.Now,
	}
	b.zw = zip.NewWriter(&b.buf)
	return b
}

// Add compresses data into a new entry. The caller may drop data as soon as
// Add returns.
func (b *Builder) Add(name string, data []byte) error {
	if b.finalized {
		return ErrFinalized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if _, ok := b.names[name]; ok {
		return fmt.Errorf("duplicate entry %q", name)
	}

	w, err := b.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: b.now(),
	})
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}

	b.names[name] = struct{}{}
	b.count++
	return nil
}

// Len reports how many entries were added.
func (b *Builder) Len() int {
	return b.count
}

// Finalize writes the central directory and returns the archive bytes.
// It can be called once.
func (b *Builder) Finalize() ([]byte, error) {
	if b.finalized {
		return nil, ErrFinalized
	}
	b.finalized = true
	if err := b.zw.Close(); err != nil {
		return nil, err
	}
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	b.buf.Reset()
	return out, nil
}

// Read decompresses every entry of data.
func Read(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, file := range zr.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file.Name, err)
		}
		entries = append(entries, Entry{Name: file.Name, Data: content})
	}
	return entries, nil
}

// EntryName builds the "<query>_<index>.<ext>" name of the index-th result.
// Path separators in the query are replaced so entries stay at the root.
func EntryName(query string, index int, ext string) string {
	query = strings.TrimSpace(query)
	query = strings.NewReplacer("/", "_", "\\", "_").Replace(query)
	if query == "" {
		query = "image"
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s_%d.%s", query, index, ext)
}
