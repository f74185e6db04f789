package versions_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"obdexporter/internal/versions"
)

const catalogXML = `<?xml version="1.0"?>
<versions>
  <version value="1098" description="Client 10.98" dat="42A3" spr="57BBD603" otb="56"/>
  <version value="860" description="Client 8.60" dat="0x4C2C7993" spr="4C220594"/>
</versions>`

func TestParsePreservesOrderAndDefault(t *testing.T) {
	catalog, err := versions.Parse(strings.NewReader(catalogXML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 versions, got %d", catalog.Len())
	}
	def := catalog.Default()
	if def.Value != 1098 || def.Description != "Client 10.98" {
		t.Fatalf("unexpected default %+v", def)
	}
	if def.DatSignature != 0x42A3 || def.SprSignature != 0x57BBD603 || def.OTBVersion != 56 {
		t.Fatalf("unexpected signatures %+v", def)
	}
	if !def.Extended() {
		t.Fatal("expected 10.98 to use extended sprites")
	}

	all := catalog.All()
	if all[1].Value != 860 || all[1].DatSignature != 0x4C2C7993 {
		t.Fatalf("unexpected second entry %+v", all[1])
	}
	if all[1].Extended() {
		t.Fatal("expected 8.60 to use classic sprites")
	}
}

func TestFindAndResolve(t *testing.T) {
	catalog, err := versions.Parse(strings.NewReader(catalogXML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := catalog.Find(860); !ok {
		t.Fatal("expected to find 860")
	}
	if _, ok := catalog.Find(1100); ok {
		t.Fatal("did not expect 1100")
	}
	v, err := catalog.Resolve(0)
	if err != nil || v.Value != 1098 {
		t.Fatalf("Resolve(0) = %+v, %v", v, err)
	}
	if _, err := catalog.Resolve(1100); err == nil {
		t.Fatal("expected error for unknown version")
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"empty":         `<versions></versions>`,
		"bad value":     `<versions><version value="x" dat="1" spr="1"/></versions>`,
		"bad signature": `<versions><version value="860" dat="zz" spr="1"/></versions>`,
		"duplicate":     `<versions><version value="860" dat="1" spr="1"/><version value="860" dat="2" spr="2"/></versions>`,
		"not xml":       `nope`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := versions.Parse(strings.NewReader(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := versions.Parse(strings.NewReader(`<versions></versions>`)); !errors.Is(err, versions.ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestCreateSampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "versions.xml")
	if err := versions.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	catalog, err := versions.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if catalog.Path() != path {
		t.Fatalf("Path() = %q, want %q", catalog.Path(), path)
	}
	if catalog.Default().Value != 1098 {
		t.Fatalf("unexpected sample default %+v", catalog.Default())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := versions.Load(filepath.Join(t.TempDir(), "missing.xml"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
