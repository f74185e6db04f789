package datfile

import (
	"context"
	"fmt"
	"os"

	"obdexporter/internal/assets"
	"obdexporter/internal/thing"
	"obdexporter/internal/versions"
)

// SignatureError reports an archive whose signature does not belong to the
// requested client version.
type SignatureError struct {
	File     string
	Got      uint32
	Expected uint32
	Version  uint16
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s signature %08X does not match client %d (expected %08X)", e.File, e.Got, e.Version, e.Expected)
}

// Decoder reads dat/spr headers, checks them against the version catalog and
// exposes the identities they declare.
type Decoder struct{}

var _ assets.Decoder = Decoder{}

// Decode implements assets.Decoder.
func (Decoder) Decode(ctx context.Context, req assets.DecodeRequest) (assets.Archive, error) {
	dat, err := readDat(req.DatPath)
	if err != nil {
		return nil, err
	}
	if dat.Signature != req.Version.DatSignature {
		return nil, &SignatureError{File: "dat", Got: dat.Signature, Expected: req.Version.DatSignature, Version: req.Version.Value}
	}
	if req.Progress != nil {
		req.Progress(50)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spr, err := readSpr(req.SprPath, req.Version.Extended())
	if err != nil {
		return nil, err
	}
	if spr.Signature != req.Version.SprSignature {
		return nil, &SignatureError{File: "spr", Got: spr.Signature, Expected: req.Version.SprSignature, Version: req.Version.Value}
	}

	return &Archive{version: req.Version, dat: dat, spr: spr}, nil
}

func readDat(path string) (DatHeader, error) {
	file, err := os.Open(path)
	if err != nil {
		return DatHeader{}, fmt.Errorf("open dat: %w", err)
	}
	defer file.Close()
	return ReadDatHeader(file)
}

func readSpr(path string, extended bool) (SprHeader, error) {
	file, err := os.Open(path)
	if err != nil {
		return SprHeader{}, fmt.Errorf("open spr: %w", err)
	}
	defer file.Close()
	return ReadSprHeader(file, extended)
}

// Archive is the header-level view of a client archive.
type Archive struct {
	version versions.Version
	dat     DatHeader
	spr     SprHeader
}

// SpriteCount returns the number of sprites declared by the spr header.
func (a *Archive) SpriteCount() uint32 {
	return a.spr.Count
}

// Things implements assets.Archive.
func (a *Archive) Things(category thing.Category) []thing.Identity {
	first, last, ok := a.bounds(category)
	if !ok {
		return []thing.Identity{}
	}
	out := make([]thing.Identity, 0, last-first+1)
	for id := first; id <= last; id++ {
		out = append(out, thing.New(category, id))
	}
	return out
}

// Describe implements assets.Archive.
func (a *Archive) Describe(id thing.Identity, extended bool) (*thing.Descriptor, bool) {
	first, last, ok := a.bounds(id.Category)
	if !ok || id.ID < first || id.ID > last {
		return nil, false
	}
	desc := &thing.Descriptor{
		Identity:      id,
		ClientVersion: a.version.Value,
		DatSignature:  a.dat.Signature,
		SprSignature:  a.spr.Signature,
	}
	if extended {
		desc.Sprites = [][]byte{}
	}
	return desc, true
}

func (a *Archive) bounds(category thing.Category) (uint32, uint32, bool) {
	var first, last uint32
	switch category {
	case thing.Item:
		first, last = FirstItemID, uint32(a.dat.Items)
	case thing.Outfit:
		first, last = FirstCreatureID, uint32(a.dat.Outfits)
	case thing.Effect:
		first, last = FirstCreatureID, uint32(a.dat.Effects)
	case thing.Missile:
		first, last = FirstCreatureID, uint32(a.dat.Missiles)
	default:
		return 0, 0, false
	}
	if last < first {
		return 0, 0, false
	}
	return first, last, true
}
