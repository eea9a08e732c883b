// Package inspect provides the read-only commands that print the repository root and
// the current repository snapshot.
package inspect
