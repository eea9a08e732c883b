package stampgen

import (
	"errors"
	"fmt"
)

const (
	invalidPackageNameErrorTemplateConstant = "invalid Go package name %q"
	invalidPrefixErrorTemplateConstant      = "invalid constant prefix %q"
	collectorMissingMessageConstant         = "snapshot collector not configured"
	outputPathMissingMessageConstant        = "output path is required"
)

// ErrCollectorNotConfigured indicates the generator was created without a collector.
var ErrCollectorNotConfigured = errors.New(collectorMissingMessageConstant)

// ErrOutputPathRequired indicates Write was called without an output path.
var ErrOutputPathRequired = errors.New(outputPathMissingMessageConstant)

// InvalidPackageNameError reports a package name that is not a Go identifier.
type InvalidPackageNameError struct {
	PackageName string
}

// Error describes the rejected package name.
func (failure InvalidPackageNameError) Error() string {
	return fmt.Sprintf(invalidPackageNameErrorTemplateConstant, failure.PackageName)
}

// InvalidPrefixError reports a constant prefix that cannot start a Go identifier.
type InvalidPrefixError struct {
	Prefix string
}

// Error describes the rejected prefix.
func (failure InvalidPrefixError) Error() string {
	return fmt.Sprintf(invalidPrefixErrorTemplateConstant, failure.Prefix)
}
