package assets

import (
	"context"

	"obdexporter/internal/thing"
	"obdexporter/internal/versions"
)

// Archive is a decoded client archive. Implementations must be safe for
// concurrent reads once returned from a Decoder.
type Archive interface {
	// Things lists the identities of one category in ascending id order.
	Things(category thing.Category) []thing.Identity
	// Describe returns the descriptor for id, or false when id is absent.
	Describe(id thing.Identity, extended bool) (*thing.Descriptor, bool)
}

// DecodeRequest names the archive files and the version they must match.
type DecodeRequest struct {
	DatPath  string
	SprPath  string
	Version  versions.Version
	Progress func(percent int)
}

// Decoder turns archive files into an Archive.
type Decoder interface {
	Decode(ctx context.Context, req DecodeRequest) (Archive, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, req DecodeRequest) (Archive, error)

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, req DecodeRequest) (Archive, error) {
	return f(ctx, req)
}
