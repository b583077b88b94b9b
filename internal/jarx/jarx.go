// Package jarx provides zip container access for jar processing: ordered
// read-only entry walking on the input side, and a writer that recreates
// the same entry shape on the output side.
package jarx

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrNoEntry = errors.New("jarx: entry not found")
)

// ClassSuffix marks entries holding a compiled class.
const ClassSuffix = ".class"

// Jar wraps an opened zip with name-indexed access. Entries keep the
// archive's original order.
type Jar struct {
	zr     *zip.ReadCloser
	byName map[string]*zip.File
}

// Open opens a jar/zip for reading.
func Open(path string) (*Jar, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("jarx: open %s: %w", path, err)
	}
	j := &Jar{zr: zr, byName: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		j.byName[f.Name] = f
	}
	return j, nil
}

// Close releases the underlying file.
func (j *Jar) Close() error { return j.zr.Close() }

// Entries returns the archive entries in stored order.
func (j *Jar) Entries() []*zip.File { return j.zr.File }

// ReadEntry returns the decompressed payload of a named entry.
func (j *Jar) ReadEntry(name string) ([]byte, error) {
	f, ok := j.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEntry, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("jarx: open entry %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("jarx: read entry %s: %w", name, err)
	}
	return data, nil
}

// ReadClass returns the bytes of the class with the given internal name,
// or found=false when the archive has no such entry. Satisfies
// resolve.Source.
func (j *Jar) ReadClass(name string) ([]byte, bool, error) {
	entry := name + ClassSuffix
	if _, ok := j.byName[entry]; !ok {
		return nil, false, nil
	}
	data, err := j.ReadEntry(entry)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// IsDir reports whether an entry name denotes a directory marker.
func IsDir(name string) bool { return strings.HasSuffix(name, "/") }

// IsClass reports whether an entry name denotes a compiled class.
func IsClass(name string) bool { return strings.HasSuffix(name, ClassSuffix) }

// ClassName strips the class suffix from an entry name.
func ClassName(entryName string) string {
	return strings.TrimSuffix(entryName, ClassSuffix)
}

// Writer produces a fresh output archive, each entry written exactly once.
type Writer struct {
	f  *os.File
	zw *zip.Writer
}

// NewWriter creates (or truncates) the output archive.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("jarx: create %s: %w", path, err)
	}
	return &Writer{f: f, zw: zip.NewWriter(f)}, nil
}

// WriteDir recreates a directory marker.
func (w *Writer) WriteDir(name string) error {
	if !IsDir(name) {
		name += "/"
	}
	if _, err := w.zw.Create(name); err != nil {
		return fmt.Errorf("jarx: write dir %s: %w", name, err)
	}
	return nil
}

// WriteFile writes one file entry with the given payload.
func (w *Writer) WriteFile(name string, data []byte) error {
	fw, err := w.zw.Create(name)
	if err != nil {
		return fmt.Errorf("jarx: write %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("jarx: write %s: %w", name, err)
	}
	return nil
}

// Close flushes the central directory and closes the file. Safe to call
// after a failed run; the archive is simply left incomplete.
func (w *Writer) Close() error {
	zerr := w.zw.Close()
	ferr := w.f.Close()
	if zerr != nil {
		return fmt.Errorf("jarx: close: %w", zerr)
	}
	if ferr != nil {
		return fmt.Errorf("jarx: close: %w", ferr)
	}
	return nil
}
