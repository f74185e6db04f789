// Package versions loads the catalog of supported client versions.
//
// The catalog is an XML document listing one <version> element per client
// build with its dat/spr signatures in hexadecimal. Order is significant: the
// first entry is the default the front end preselects.
package versions
