// Package datfile is the bundled archive decoder. It reads the fixed headers
// of a client's dat and spr files, rejects archives whose signatures do not
// match the selected version, and derives the thing identities each category
// declares. Thing bodies are not parsed.
package datfile
