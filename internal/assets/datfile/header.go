package datfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// FirstItemID is the lowest item id stored in a dat file; ids below it
	// are reserved by the client.
	FirstItemID = 100
	// FirstCreatureID is the lowest id for outfits, effects and missiles.
	FirstCreatureID = 1

	datHeaderSize = 12
)

// DatHeader is the fixed header at the start of a dat file. Items holds the
// highest item id; the other fields hold entry counts.
type DatHeader struct {
	Signature uint32
	Items     uint16
	Outfits   uint16
	Effects   uint16
	Missiles  uint16
}

// SprHeader is the fixed header at the start of a spr file.
type SprHeader struct {
	Signature uint32
	Count     uint32
	// Extended selects a 32-bit sprite count; classic archives use 16 bits.
	Extended bool
}

// ReadDatHeader decodes a dat header from r.
func ReadDatHeader(r io.Reader) (DatHeader, error) {
	var buf [datHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return DatHeader{}, fmt.Errorf("read dat header: %w", truncated(err))
	}
	return DatHeader{
		Signature: binary.LittleEndian.Uint32(buf[0:4]),
		Items:     binary.LittleEndian.Uint16(buf[4:6]),
		Outfits:   binary.LittleEndian.Uint16(buf[6:8]),
		Effects:   binary.LittleEndian.Uint16(buf[8:10]),
		Missiles:  binary.LittleEndian.Uint16(buf[10:12]),
	}, nil
}

// MarshalBinary encodes the header in file order.
func (h DatHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, datHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Signature)
	binary.LittleEndian.PutUint16(buf[4:6], h.Items)
	binary.LittleEndian.PutUint16(buf[6:8], h.Outfits)
	binary.LittleEndian.PutUint16(buf[8:10], h.Effects)
	binary.LittleEndian.PutUint16(buf[10:12], h.Missiles)
	return buf, nil
}

// ReadSprHeader decodes a spr header from r.
func ReadSprHeader(r io.Reader, extended bool) (SprHeader, error) {
	size := 6
	if extended {
		size = 8
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return SprHeader{}, fmt.Errorf("read spr header: %w", truncated(err))
	}
	h := SprHeader{Signature: binary.LittleEndian.Uint32(buf[0:4]), Extended: extended}
	if extended {
		h.Count = binary.LittleEndian.Uint32(buf[4:8])
	} else {
		h.Count = uint32(binary.LittleEndian.Uint16(buf[4:6]))
	}
	return h, nil
}

// MarshalBinary encodes the header in file order.
func (h SprHeader) MarshalBinary() ([]byte, error) {
	if h.Extended {
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint32(buf[0:4], h.Signature)
		binary.LittleEndian.PutUint32(buf[4:8], h.Count)
		return buf, nil
	}
	if h.Count > 0xFFFF {
		return nil, fmt.Errorf("sprite count %d exceeds classic archive limit", h.Count)
	}
	buf := make([]byte, 6)
	binary.LittleEndian.PutUint32(buf[0:4], h.Signature)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(h.Count))
	return buf, nil
}

var errTruncated = errors.New("file truncated")

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errTruncated
	}
	return err
}
