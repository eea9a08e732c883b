package stampgen

import (
	"bytes"
	"context"
	"fmt"
	"go/token"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/natefinch/atomic"
	"golang.org/x/tools/imports"

	"github.com/temirov/gitstamp/internal/gitrepo"
)

const (
	// DefaultPackageName is used when Options.PackageName is empty.
	DefaultPackageName = "stamp"
	// DefaultOutputFileName is the file name suggested for generated stamps.
	DefaultOutputFileName = "gitstamp_gen.go"

	stampTemplateNameConstant        = "stamp"
	identifierProbeSuffixConstant    = "CommitHash"
	wrapRenderErrorTemplateConstant  = "render stamp: %w"
	wrapFormatErrorTemplateConstant  = "format stamp: %w"
	wrapWriteErrorTemplateConstant   = "write %s: %w"
	wrapResolveErrorTemplateConstant = "resolve %s: %w"
	dependencySeparatorConstant      = " "
	dependencyTargetSuffixConstant   = ":"
	dependencyLineEndingConstant     = "\n"
	spaceConstant                    = " "
	escapedSpaceConstant             = `\ `
	dollarConstant                   = "$"
	escapedDollarConstant            = "$$"
	hashConstant                     = "#"
	escapedHashConstant              = `\#`
)

const stampTemplateConstant = `// Code generated by gitstamp. DO NOT EDIT.

package {{ .PackageName }}

const (
	{{ .Prefix }}CommitHash = {{ quote .Snapshot.CommitHash }}
	{{ .Prefix }}Branch = {{ quote .Snapshot.Branch }}
	{{ .Prefix }}Dirty = {{ .Snapshot.IsDirty }}
	{{ .Prefix }}CommitDate = {{ quote .Snapshot.CommitDate }}
	{{ .Prefix }}CommitCount = {{ .Snapshot.CommitCount }}
)
`

var stampTemplate = template.Must(template.New(stampTemplateNameConstant).
	Funcs(template.FuncMap{"quote": strconv.Quote}).
	Parse(stampTemplateConstant))

// SnapshotCollector gathers repository snapshots.
type SnapshotCollector interface {
	CollectFromPath(executionContext context.Context, path string) (gitrepo.Snapshot, error)
}

// Options configures rendering and output.
type Options struct {
	PackageName        string
	Prefix             string
	OutputPath         string
	DependencyFilePath string
}

// Result describes a completed Write.
type Result struct {
	Snapshot           gitrepo.Snapshot
	OutputPath         string
	DependencyFilePath string
}

// Generator renders snapshots to Go source.
type Generator struct {
	collector SnapshotCollector
}

// NewGenerator constructs a Generator around the provided collector.
func NewGenerator(collector SnapshotCollector) (*Generator, error) {
	if collector == nil {
		return nil, ErrCollectorNotConfigured
	}
	return &Generator{collector: collector}, nil
}

type stampTemplateData struct {
	PackageName string
	Prefix      string
	Snapshot    gitrepo.Snapshot
}

// Render produces gofmt-formatted Go source declaring the snapshot as constants.
func (generator *Generator) Render(snapshot gitrepo.Snapshot, options Options) ([]byte, error) {
	packageName := options.PackageName
	if len(packageName) == 0 {
		packageName = DefaultPackageName
	}
	if !token.IsIdentifier(packageName) {
		return nil, InvalidPackageNameError{PackageName: packageName}
	}
	if len(options.Prefix) > 0 && !token.IsIdentifier(options.Prefix+identifierProbeSuffixConstant) {
		return nil, InvalidPrefixError{Prefix: options.Prefix}
	}

	var rendered bytes.Buffer
	if executeError := stampTemplate.Execute(&rendered, stampTemplateData{PackageName: packageName, Prefix: options.Prefix, Snapshot: snapshot}); executeError != nil {
		return nil, fmt.Errorf(wrapRenderErrorTemplateConstant, executeError)
	}

	formatted, formatError := imports.Process(options.OutputPath, rendered.Bytes(), nil)
	if formatError != nil {
		return nil, fmt.Errorf(wrapFormatErrorTemplateConstant, formatError)
	}
	return formatted, nil
}

// Write collects the repository enclosing repositoryPath, renders it, and atomically
// replaces the output file. When a dependency file is requested, it lists the watched
// git files as prerequisites of the output.
func (generator *Generator) Write(executionContext context.Context, repositoryPath string, options Options) (Result, error) {
	if len(strings.TrimSpace(options.OutputPath)) == 0 {
		return Result{}, ErrOutputPathRequired
	}

	outputPath, resolveError := filepath.Abs(options.OutputPath)
	if resolveError != nil {
		return Result{}, fmt.Errorf(wrapResolveErrorTemplateConstant, options.OutputPath, resolveError)
	}

	snapshot, collectError := generator.collector.CollectFromPath(executionContext, repositoryPath)
	if collectError != nil {
		return Result{}, collectError
	}

	source, renderError := generator.Render(snapshot, options)
	if renderError != nil {
		return Result{}, renderError
	}

	if writeError := atomic.WriteFile(outputPath, bytes.NewReader(source)); writeError != nil {
		return Result{}, fmt.Errorf(wrapWriteErrorTemplateConstant, outputPath, writeError)
	}

	result := Result{Snapshot: snapshot, OutputPath: outputPath}
	if len(options.DependencyFilePath) == 0 {
		return result, nil
	}

	dependencyFilePath, dependencyResolveError := filepath.Abs(options.DependencyFilePath)
	if dependencyResolveError != nil {
		return Result{}, fmt.Errorf(wrapResolveErrorTemplateConstant, options.DependencyFilePath, dependencyResolveError)
	}
	dependencyContent := RenderDependencyFile(outputPath, snapshot.WatchedFiles())
	if writeError := atomic.WriteFile(dependencyFilePath, strings.NewReader(dependencyContent)); writeError != nil {
		return Result{}, fmt.Errorf(wrapWriteErrorTemplateConstant, dependencyFilePath, writeError)
	}
	result.DependencyFilePath = dependencyFilePath
	return result, nil
}

// RenderDependencyFile formats a make-style rule naming the watched files as prerequisites of target.
func RenderDependencyFile(target string, watchedFiles []string) string {
	var builder strings.Builder
	builder.WriteString(escapeDependencyPath(target))
	builder.WriteString(dependencyTargetSuffixConstant)
	for _, watchedFile := range watchedFiles {
		builder.WriteString(dependencySeparatorConstant)
		builder.WriteString(escapeDependencyPath(watchedFile))
	}
	builder.WriteString(dependencyLineEndingConstant)
	return builder.String()
}

// dependencyPathEscaper quotes the characters make treats specially inside a prerequisite list.
var dependencyPathEscaper = strings.NewReplacer(
	spaceConstant, escapedSpaceConstant,
	dollarConstant, escapedDollarConstant,
	hashConstant, escapedHashConstant,
)

func escapeDependencyPath(path string) string {
	return dependencyPathEscaper.Replace(filepath.ToSlash(path))
}
