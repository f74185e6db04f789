// Package testsupport provides fixtures shared by package tests: temp-dir
// configs, synthetic client archives and an opened history journal.
package testsupport
