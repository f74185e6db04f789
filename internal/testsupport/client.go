package testsupport

import (
	"testing"

	"obdexporter/internal/assets/datfile"
	"obdexporter/internal/config"
	"obdexporter/internal/versions"
)

// Client1098 mirrors the first entry of the bundled version catalog.
var Client1098 = versions.Version{
	Value:        1098,
	Description:  "Client 10.98",
	DatSignature: 0x42A3,
	SprSignature: 0x57BBD603,
	OTBVersion:   56,
}

// Client860 is a non-extended catalog entry.
var Client860 = versions.Version{
	Value:        860,
	Description:  "Client 8.60",
	DatSignature: 0x4C2C7993,
	SprSignature: 0x4C220594,
	OTBVersion:   20,
}

// ArchiveSpec describes a synthetic client archive. Counts are the last id
// of each category; items start at 100 and the rest at 1.
type ArchiveSpec struct {
	Version  versions.Version
	Items    uint16
	Outfits  uint16
	Effects  uint16
	Missiles uint16
	Sprites  uint32
}

// DefaultArchive is a small archive matching Client1098.
func DefaultArchive() ArchiveSpec {
	return ArchiveSpec{
		Version:  Client1098,
		Items:    120,
		Outfits:  10,
		Effects:  5,
		Missiles: 3,
		Sprites:  64,
	}
}

// WriteClientArchive writes Tibia.dat and Tibia.spr headers for layout into the
// config's client directory.
func WriteClientArchive(t testing.TB, cfg *config.Config, layout ArchiveSpec) {
	t.Helper()

	dat, err := datfile.DatHeader{
		Signature: layout.Version.DatSignature,
		Items:     layout.Items,
		Outfits:   layout.Outfits,
		Effects:   layout.Effects,
		Missiles:  layout.Missiles,
	}.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal dat header: %v", err)
	}
	spr, err := datfile.SprHeader{
		Signature: layout.Version.SprSignature,
		Count:     layout.Sprites,
		Extended:  layout.Version.Extended(),
	}.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal spr header: %v", err)
	}
	WriteFile(t, cfg.DatPath(), dat)
	WriteFile(t, cfg.SprPath(), spr)
}

// WriteCatalog writes the bundled version catalog to the configured path.
func WriteCatalog(t testing.TB, cfg *config.Config) *versions.Catalog {
	t.Helper()

	if err := versions.CreateSample(cfg.Paths.VersionsFile); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	catalog, err := versions.Load(cfg.Paths.VersionsFile)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return catalog
}
