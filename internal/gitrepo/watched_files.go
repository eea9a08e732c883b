package gitrepo

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
	headFileNameConstant             = "HEAD"
	indexFileNameConstant            = "index"
	packedRefsFileNameConstant       = "packed-refs"
	symbolicReferencePrefixConstant  = "ref: "
	lineBreakConstant                = "\n"
)

// FileSystem exposes the read-only filesystem operations used to discover watched files.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

type watchedFileResolver struct {
	fileSystem FileSystem
}

// resolve lists the metadata files under root/.git that determine the snapshot, in the fixed
// order [resolved ref or detached HEAD], [index], [packed-refs]. A missing HEAD yields no files.
func (resolver watchedFileResolver) resolve(root string) ([]string, error) {
	gitDirectory := filepath.Join(root, gitMetadataDirectoryNameConstant)
	headPath := filepath.Join(gitDirectory, headFileNameConstant)

	headContent, readError := resolver.fileSystem.ReadFile(headPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, CouldNotReadFileError{Path: headPath, Err: readError}
	}

	watchedFiles := make([]string, 0, 3)

	headText := string(headContent)
	if strings.HasPrefix(headText, symbolicReferencePrefixConstant) {
		referencePath := filepath.Join(gitDirectory, filepath.FromSlash(parseSymbolicReference(headText)))
		if resolver.exists(referencePath) {
			watchedFiles = append(watchedFiles, referencePath)
		}
	} else {
		watchedFiles = append(watchedFiles, headPath)
	}

	indexPath := filepath.Join(gitDirectory, indexFileNameConstant)
	if resolver.exists(indexPath) {
		watchedFiles = append(watchedFiles, indexPath)
	}

	packedRefsPath := filepath.Join(gitDirectory, packedRefsFileNameConstant)
	if resolver.exists(packedRefsPath) {
		watchedFiles = append(watchedFiles, packedRefsPath)
	}

	return watchedFiles, nil
}

// exists treats any stat failure as absence.
func (resolver watchedFileResolver) exists(path string) bool {
	_, statError := resolver.fileSystem.Stat(path)
	return statError == nil
}

func parseSymbolicReference(headText string) string {
	reference := strings.TrimPrefix(headText, symbolicReferencePrefixConstant)
	reference, _, _ = strings.Cut(reference, lineBreakConstant)
	return strings.TrimSpace(reference)
}
