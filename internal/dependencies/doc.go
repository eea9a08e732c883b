// Package dependencies supplies default collaborators for command builders that were
// not given explicit implementations.
package dependencies
