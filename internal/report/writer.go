package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/gitstamp/internal/gitrepo"
)

// Format selects the snapshot rendering.
type Format string

const (
	// FormatText prints one "key: value" line per field.
	FormatText Format = "text"
	// FormatJSON prints an indented JSON object.
	FormatJSON Format = "json"
	// FormatYAML prints a YAML mapping.
	FormatYAML Format = "yaml"
)

const (
	unsupportedFormatErrorTemplateConstant = "unsupported output format %q (supported: %s)"
	textLineTemplateConstant               = "%s: %v\n"
	supportedFormatSeparatorConstant       = ", "
	jsonIndentConstant                     = "  "
	yamlIndentConstant                     = 2
	textCommitHashLabelConstant            = "commit"
	textBranchLabelConstant                = "branch"
	textDirtyLabelConstant                 = "dirty"
	textCommitDateLabelConstant            = "date"
	textCommitCountLabelConstant           = "count"
	textWatchedFileLabelConstant           = "watched"
)

var supportedFormats = []Format{FormatText, FormatJSON, FormatYAML}

// UnsupportedFormatError reports an unknown output format.
type UnsupportedFormatError struct {
	Format string
}

// Error lists the supported formats.
func (failure UnsupportedFormatError) Error() string {
	return fmt.Sprintf(unsupportedFormatErrorTemplateConstant, failure.Format, strings.Join(SupportedFormatNames(), supportedFormatSeparatorConstant))
}

// SupportedFormatNames lists the accepted format names in display order.
func SupportedFormatNames() []string {
	names := make([]string, 0, len(supportedFormats))
	for _, format := range supportedFormats {
		names = append(names, string(format))
	}
	return names
}

// ParseFormat converts a user supplied name into a Format.
func ParseFormat(name string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, format := range supportedFormats {
		if normalized == format {
			return format, nil
		}
	}
	return "", UnsupportedFormatError{Format: name}
}

type snapshotDocument struct {
	CommitHash   string   `json:"commit_hash" yaml:"commit_hash"`
	Branch       string   `json:"branch" yaml:"branch"`
	Dirty        bool     `json:"dirty" yaml:"dirty"`
	CommitDate   string   `json:"commit_date" yaml:"commit_date"`
	CommitCount  uint64   `json:"commit_count" yaml:"commit_count"`
	WatchedFiles []string `json:"watched_files" yaml:"watched_files"`
}

func newSnapshotDocument(snapshot gitrepo.Snapshot) snapshotDocument {
	return snapshotDocument{
		CommitHash:   snapshot.CommitHash(),
		Branch:       snapshot.Branch(),
		Dirty:        snapshot.IsDirty(),
		CommitDate:   snapshot.CommitDate(),
		CommitCount:  snapshot.CommitCount(),
		WatchedFiles: snapshot.WatchedFiles(),
	}
}

// Writer renders snapshots.
type Writer struct{}

// NewWriter constructs a Writer.
func NewWriter() Writer {
	return Writer{}
}

// Write renders snapshot to output in the requested format.
func (Writer) Write(output io.Writer, snapshot gitrepo.Snapshot, format Format) error {
	document := newSnapshotDocument(snapshot)
	switch format {
	case FormatText:
		return writeText(output, document)
	case FormatJSON:
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", jsonIndentConstant)
		return encoder.Encode(document)
	case FormatYAML:
		encoder := yaml.NewEncoder(output)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(document); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	default:
		return UnsupportedFormatError{Format: string(format)}
	}
}

func writeText(output io.Writer, document snapshotDocument) error {
	lines := []struct {
		label string
		value any
	}{
		{label: textCommitHashLabelConstant, value: document.CommitHash},
		{label: textBranchLabelConstant, value: document.Branch},
		{label: textDirtyLabelConstant, value: document.Dirty},
		{label: textCommitDateLabelConstant, value: document.CommitDate},
		{label: textCommitCountLabelConstant, value: document.CommitCount},
	}
	for _, watchedFile := range document.WatchedFiles {
		lines = append(lines, struct {
			label string
			value any
		}{label: textWatchedFileLabelConstant, value: watchedFile})
	}

	for _, line := range lines {
		if _, writeError := fmt.Fprintf(output, textLineTemplateConstant, line.label, line.value); writeError != nil {
			return writeError
		}
	}
	return nil
}
