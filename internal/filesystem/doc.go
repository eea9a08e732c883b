// Package filesystem provides the operating system backed implementation of
// the read-only filesystem abstraction consumed by gitrepo.
package filesystem
