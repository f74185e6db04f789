package versions

import (
	_ "embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

//go:embed sample_versions.xml
var sampleCatalog []byte

// extendedFrom is the first client version whose sprite archive uses 32-bit
// sprite counts.
const extendedFrom = 960

// Version describes one supported client build.
type Version struct {
	Value        uint16
	Description  string
	DatSignature uint32
	SprSignature uint32
	OTBVersion   uint32
}

// Extended reports whether the client uses extended (32-bit) sprite ids.
func (v Version) Extended() bool {
	return v.Value >= extendedFrom
}

func (v Version) String() string {
	if v.Description != "" {
		return v.Description
	}
	return strconv.Itoa(int(v.Value))
}

// Catalog is the ordered list of supported versions. The first entry is the
// default selection.
type Catalog struct {
	path     string
	versions []Version
}

// ErrEmptyCatalog is returned when a catalog file holds no versions.
var ErrEmptyCatalog = errors.New("version catalog is empty")

type catalogDocument struct {
	XMLName  xml.Name         `xml:"versions"`
	Versions []versionElement `xml:"version"`
}

type versionElement struct {
	Value       string `xml:"value,attr"`
	Description string `xml:"description,attr"`
	Dat         string `xml:"dat,attr"`
	Spr         string `xml:"spr,attr"`
	OTB         string `xml:"otb,attr"`
}

// Load reads a catalog file from disk.
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open version catalog: %w", err)
	}
	defer file.Close()

	catalog, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("version catalog %s: %w", path, err)
	}
	catalog.path = path
	return catalog, nil
}

// Parse decodes a catalog document. Entries keep file order; duplicate
// version values are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	var doc catalogDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(doc.Versions) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[uint16]struct{}, len(doc.Versions))
	out := make([]Version, 0, len(doc.Versions))
	for i, element := range doc.Versions {
		v, err := element.version()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if _, dup := seen[v.Value]; dup {
			return nil, fmt.Errorf("entry %d: duplicate version %d", i+1, v.Value)
		}
		seen[v.Value] = struct{}{}
		out = append(out, v)
	}
	return &Catalog{versions: out}, nil
}

func (e versionElement) version() (Version, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(e.Value), 10, 16)
	if err != nil {
		return Version{}, fmt.Errorf("value %q: %w", e.Value, err)
	}
	dat, err := parseHex(e.Dat)
	if err != nil {
		return Version{}, fmt.Errorf("dat signature %q: %w", e.Dat, err)
	}
	spr, err := parseHex(e.Spr)
	if err != nil {
		return Version{}, fmt.Errorf("spr signature %q: %w", e.Spr, err)
	}
	var otb uint64
	if text := strings.TrimSpace(e.OTB); text != "" {
		if otb, err = strconv.ParseUint(text, 10, 32); err != nil {
			return Version{}, fmt.Errorf("otb %q: %w", e.OTB, err)
		}
	}
	return Version{
		Value:        uint16(value),
		Description:  strings.TrimSpace(e.Description),
		DatSignature: dat,
		SprSignature: spr,
		OTBVersion:   uint32(otb),
	}, nil
}

func parseHex(text string) (uint32, error) {
	text = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(text), "0x"), "0X")
	n, err := strconv.ParseUint(text, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

// Path returns the file the catalog was loaded from, if any.
func (c *Catalog) Path() string {
	return c.path
}

// Len returns the number of versions.
func (c *Catalog) Len() int {
	return len(c.versions)
}

// All returns the versions in catalog order.
func (c *Catalog) All() []Version {
	out := make([]Version, len(c.versions))
	copy(out, c.versions)
	return out
}

// Default returns the first version in the catalog.
func (c *Catalog) Default() Version {
	return c.versions[0]
}

// Find returns the version with the given value.
func (c *Catalog) Find(value uint16) (Version, bool) {
	for _, v := range c.versions {
		if v.Value == value {
			return v, true
		}
	}
	return Version{}, false
}

// Resolve returns the version with the given value, or the default when value
// is zero.
func (c *Catalog) Resolve(value uint16) (Version, error) {
	if value == 0 {
		return c.Default(), nil
	}
	v, ok := c.Find(value)
	if !ok {
		return Version{}, fmt.Errorf("client version %d not in catalog", value)
	}
	return v, nil
}

// CreateSample writes the bundled catalog to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create catalog directory: %w", err)
		}
	}
	if err := os.WriteFile(path, sampleCatalog, 0o644); err != nil {
		return fmt.Errorf("write sample catalog: %w", err)
	}
	return nil
}
