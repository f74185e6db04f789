package obd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"obdexporter/internal/faults"
	"obdexporter/internal/thing"
)

var magic = [4]byte{'O', 'B', 'D', 'X'}

// Encoder serializes thing descriptors into single-thing containers.
//
// Layout (little endian):
//
//	magic[4] format u16 client u16 category u8 id u32 dat u32 spr u32
//	attrLen u32 attr[attrLen]
//	v2+: spriteCount u32 { len u32 data[len] }*
//	v3+: crc32 u32 over all preceding bytes
type Encoder struct{}

// Encode implements export.Encoder.
func (Encoder) Encode(desc *thing.Descriptor, version Version) ([]byte, error) {
	if desc == nil {
		return nil, faults.Wrap(faults.ErrEncode, "obd", "encode", "nil descriptor", nil)
	}
	if !version.Valid() {
		return nil, faults.Wrap(faults.ErrEncode, "obd", "encode", fmt.Sprintf("unsupported format version %d", version), nil)
	}
	if !desc.Category.Valid() {
		return nil, faults.Wrap(faults.ErrEncode, "obd", "encode", fmt.Sprintf("%s has invalid category", desc.Identity), nil)
	}

	var buf bytes.Buffer
	buf.Grow(32 + len(desc.Attributes))
	buf.Write(magic[:])
	le := binary.LittleEndian
	write := func(v any) { _ = binary.Write(&buf, le, v) }
	write(uint16(version))
	write(desc.ClientVersion)
	write(uint8(desc.Category))
	write(desc.ID)
	write(desc.DatSignature)
	write(desc.SprSignature)
	write(uint32(len(desc.Attributes)))
	buf.Write(desc.Attributes)

	if version.hasSprites() {
		write(uint32(len(desc.Sprites)))
		for _, sprite := range desc.Sprites {
			write(uint32(len(sprite)))
			buf.Write(sprite)
		}
	}
	if version.hasChecksum() {
		write(crc32.ChecksumIEEE(buf.Bytes()))
	}
	return buf.Bytes(), nil
}

// Record is a decoded container.
type Record struct {
	Version    Version
	Descriptor thing.Descriptor
}

// ErrCorrupt reports a container that does not parse or fails its checksum.
var ErrCorrupt = errors.New("obd: corrupt container")

// Decode parses a container produced by Encode.
func Decode(data []byte) (*Record, error) {
	r := bytes.NewReader(data)
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil || head != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}

	le := binary.LittleEndian
	var (
		format   uint16
		category uint8
		rec      Record
	)
	for _, dst := range []any{&format, &rec.Descriptor.ClientVersion, &category, &rec.Descriptor.ID, &rec.Descriptor.DatSignature, &rec.Descriptor.SprSignature} {
		if err := binary.Read(r, le, dst); err != nil {
			return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
		}
	}
	rec.Version = Version(format)
	if !rec.Version.Valid() {
		return nil, fmt.Errorf("%w: unknown format %d", ErrCorrupt, format)
	}
	rec.Descriptor.Category = thing.Category(category)

	attrs, err := readBlock(r)
	if err != nil {
		return nil, fmt.Errorf("%w: attributes: %v", ErrCorrupt, err)
	}
	rec.Descriptor.Attributes = attrs

	if rec.Version.hasSprites() {
		var count uint32
		if err := binary.Read(r, le, &count); err != nil {
			return nil, fmt.Errorf("%w: sprite count: %v", ErrCorrupt, err)
		}
		if int64(count) > int64(r.Len()/4) {
			return nil, fmt.Errorf("%w: sprite count %d exceeds payload", ErrCorrupt, count)
		}
		rec.Descriptor.Sprites = make([][]byte, 0, count)
		for i := uint32(0); i < count; i++ {
			sprite, err := readBlock(r)
			if err != nil {
				return nil, fmt.Errorf("%w: sprite %d: %v", ErrCorrupt, i, err)
			}
			rec.Descriptor.Sprites = append(rec.Descriptor.Sprites, sprite)
		}
	}

	if rec.Version.hasChecksum() {
		body := len(data) - r.Len()
		var sum uint32
		if err := binary.Read(r, le, &sum); err != nil {
			return nil, fmt.Errorf("%w: checksum: %v", ErrCorrupt, err)
		}
		if sum != crc32.ChecksumIEEE(data[:body]) {
			return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, r.Len())
	}
	return &rec, nil
}

func readBlock(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if int64(n) > int64(r.Len()) {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
