package thing

// Descriptor is the decoded data for one thing as handed to the container
// encoder. Payload fields are opaque to the pipeline.
type Descriptor struct {
	Identity
	ClientVersion uint16
	DatSignature  uint32
	SprSignature  uint32
	Attributes    []byte
	// Sprites is only populated when extended attributes were requested.
	Sprites [][]byte
}
