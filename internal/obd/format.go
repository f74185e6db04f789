package obd

import (
	"fmt"
	"strconv"
)

// Version is the container format written by Encode.
type Version uint16

const (
	Version1 Version = 100
	Version2 Version = 200
	Version3 Version = 300
)

// ParseVersion accepts the short form (1, 2, 3) or the wire form (100, 200, 300).
func ParseVersion(n int) (Version, error) {
	switch n {
	case 1, 100:
		return Version1, nil
	case 2, 200:
		return Version2, nil
	case 3, 300:
		return Version3, nil
	default:
		return 0, fmt.Errorf("obd: unsupported format version %d", n)
	}
}

// Valid reports whether v is a known format.
func (v Version) Valid() bool {
	return v == Version1 || v == Version2 || v == Version3
}

// Short returns the 1-based format number.
func (v Version) Short() int {
	return int(v) / 100
}

func (v Version) String() string {
	if !v.Valid() {
		return "Version(" + strconv.Itoa(int(v)) + ")"
	}
	return "v" + strconv.Itoa(v.Short())
}

// hasSprites reports whether the format carries the sprite section.
func (v Version) hasSprites() bool {
	return v >= Version2
}

// hasChecksum reports whether the format ends with a CRC-32 trailer.
func (v Version) hasChecksum() bool {
	return v >= Version3
}
