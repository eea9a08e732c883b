// Package flags provides Cobra flag helpers shared by gitstamp commands.
package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix     = "<"
	choicePlaceholderSuffix     = ">"
	choiceSeparatorLiteral      = "|"
	choiceUsageEmptyTemplate    = "`%s`"
	choiceUsageFullTemplate     = "`%s` %s"
	choiceInvalidValueTemplate  = "must be one of %s"
	choiceListSeparatorLiteral  = ", "
	choiceValueTypeNameConstant = "choice"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// ChoiceValue is a pflag.Value restricted to a fixed, case-insensitive set of choices.
type ChoiceValue struct {
	target  *string
	choices []string
}

// NewChoiceValue stores defaultChoice in target and returns a value accepting only choices.
func NewChoiceValue(target *string, defaultChoice string, choices []string) *ChoiceValue {
	*target = strings.ToLower(strings.TrimSpace(defaultChoice))
	return &ChoiceValue{target: target, choices: normalizeChoices(choices)}
}

// String returns the selected choice.
func (value *ChoiceValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

// Set validates and stores a choice.
func (value *ChoiceValue) Set(candidate string) error {
	normalized := strings.ToLower(strings.TrimSpace(candidate))
	for _, choice := range value.choices {
		if choice == normalized {
			*value.target = normalized
			return nil
		}
	}
	return fmt.Errorf(choiceInvalidValueTemplate, strings.Join(value.choices, choiceListSeparatorLiteral))
}

// Type names the flag value type in help output.
func (value *ChoiceValue) Type() string {
	return choiceValueTypeNameConstant
}

// BindChoiceFlag registers a choice flag whose usage highlights the default.
func BindChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, defaultChoice string, choices []string, description string) {
	if flagSet == nil || target == nil {
		return
	}
	flagSet.Var(NewChoiceValue(target, defaultChoice, choices), name, FormatChoiceUsage(defaultChoice, choices, description))
}

func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		candidate := strings.ToLower(strings.TrimSpace(choice))
		if len(candidate) == 0 {
			continue
		}
		if _, exists := seen[candidate]; exists {
			continue
		}
		seen[candidate] = struct{}{}
		normalized = append(normalized, candidate)
	}
	return normalized
}

func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	highlightedChoices := highlightDefaultChoice(defaultChoice, choices)
	return choicePlaceholderPrefix + strings.Join(highlightedChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	for _, choice := range normalizeChoices(choices) {
		displayValue := choice
		if choice == normalizedDefault {
			displayValue = strings.ToUpper(choice)
		}
		highlighted = append(highlighted, displayValue)
	}
	return highlighted
}
