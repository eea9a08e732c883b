// Package gitfixture builds throwaway git repositories for tests using go-git.
package gitfixture
