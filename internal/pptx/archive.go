package pptx

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// slideEntryPattern matches slide parts and captures the slide number.
var slideEntryPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// requiredEntries must all be present for bytes to be accepted as a
// presentation package.
var requiredEntries = []string{
	"[Content_Types].xml",
	"ppt/presentation.xml",
}

// Archive is an in-memory presentation package: an ordered collection of
// named entries, each independently readable and replaceable. Untouched
// entries survive serialisation byte-for-byte.
type Archive struct {
	names   []string
	entries map[string][]byte
}

// Open parses bytes as a presentation package.
// Returns domain.ErrCorruptArchive when the bytes are not a ZIP archive.
func Open(data []byte) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
	}

	a := &Archive{entries: make(map[string][]byte, len(r.File))}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open entry %s: %v", domain.ErrCorruptArchive, f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read entry %s: %v", domain.ErrCorruptArchive, f.Name, err)
		}
		if _, dup := a.entries[f.Name]; !dup {
			a.names = append(a.names, f.Name)
		}
		a.entries[f.Name] = content
	}

	return a, nil
}

// ValidateStructure reports whether bytes look like a presentation
// package: parseable as ZIP, the fixed required entries present, and at
// least one slide part. Used to reject non-deck uploads before any
// mutation is attempted.
func ValidateStructure(data []byte) bool {
	a, err := Open(data)
	if err != nil {
		return false
	}
	for _, name := range requiredEntries {
		if _, ok := a.entries[name]; !ok {
			return false
		}
	}
	return len(a.SlideEntries()) > 0
}

// EntryText returns the text content of a named entry.
// Returns domain.ErrEntryNotFound when the entry is absent.
func (a *Archive) EntryText(name string) (string, error) {
	content, ok := a.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrEntryNotFound, name)
	}
	return string(content), nil
}

// SetEntryText replaces an entry's content in place. Later Serialize
// calls reflect the change. Setting an unknown name adds a new entry.
func (a *Archive) SetEntryText(name, content string) {
	if _, ok := a.entries[name]; !ok {
		a.names = append(a.names, name)
	}
	a.entries[name] = []byte(content)
}

// HasEntry reports whether a named entry exists.
func (a *Archive) HasEntry(name string) bool {
	_, ok := a.entries[name]
	return ok
}

// SlideEntries returns all slide part names sorted by slide number.
// Numeric sort, so slide10 follows slide9 rather than slide1.
func (a *Archive) SlideEntries() []string {
	return a.ListEntries(slideEntryPattern)
}

// ListEntries returns entry names matching pattern, in archive order.
// When the pattern captures a number, entries sort by that number
// instead of lexically.
func (a *Archive) ListEntries(pattern *regexp.Regexp) []string {
	type numbered struct {
		name string
		num  int
		hasN bool
	}
	var matched []numbered
	for _, name := range a.names {
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		e := numbered{name: name}
		if len(m) > 1 {
			if n, err := strconv.Atoi(m[1]); err == nil {
				e.num, e.hasN = n, true
			}
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].hasN && matched[j].hasN {
			return matched[i].num < matched[j].num
		}
		return matched[i].name < matched[j].name
	})
	names := make([]string, len(matched))
	for i, e := range matched {
		names[i] = e.name
	}
	return names
}

// SlideCount returns the number of slide parts in the package.
func (a *Archive) SlideCount() int {
	return len(a.SlideEntries())
}

// SlideName returns the entry name for a 1-based slide number.
func SlideName(n int) string {
	return fmt.Sprintf("ppt/slides/slide%d.xml", n)
}

// SlideTexts extracts every slide's plain text in slide order.
// Index 0 holds slide 1.
func (a *Archive) SlideTexts() []string {
	entries := a.SlideEntries()
	texts := make([]string, len(entries))
	for i, name := range entries {
		content := a.entries[name]
		texts[i] = PlainText(string(content))
	}
	return texts
}

// Serialize writes the package back to bytes. Compression level is
// fixed so output is deterministic given the same entry contents.
func (a *Archive) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	for _, name := range a.names {
		fw, err := w.Create(name)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("create entry %s: %w", name, err)
		}
		if _, err := fw.Write(a.entries[name]); err != nil {
			w.Close()
			return nil, fmt.Errorf("write entry %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
