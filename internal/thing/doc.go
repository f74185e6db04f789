// Package thing defines the value types that name assets inside a client
// archive: categories, identities, selectors and decoded descriptors.
package thing
