// Package stampgen renders repository snapshots into Go source files with build
// metadata constants and records the git files those constants depend on.
package stampgen
