// Package report prints repository snapshots as text, JSON, or YAML.
package report
