package security

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Category identifies a class of abusive query patterns.
type Category string

const (
	// CategoryInjection covers prompt injection and role hijack attempts
	CategoryInjection Category = "injection"
	// CategorySQL covers SQL injection patterns
	CategorySQL Category = "sql"
	// CategoryCodeExec covers code execution attempts
	CategoryCodeExec Category = "code_exec"
	// CategorySensitive covers requests for credentials and system internals
	CategorySensitive Category = "sensitive"
	// CategoryDataTheft covers whole-dataset export phrasing
	CategoryDataTheft Category = "data_theft"
	// CategoryEnumeration covers systematic enumeration phrasing
	CategoryEnumeration Category = "enumeration"
)

// Pattern is a single compiled detection pattern.
type Pattern struct {
	Name  string
	Regex *regexp.Regexp
}

// PatternTable maps each category to its detection patterns. Tables are
// static configuration data: control flow never depends on their contents,
// so they can be swapped wholesale (see LoadPatternFile).
type PatternTable map[Category][]Pattern

func mustPatterns(name string, exprs ...string) []Pattern {
	patterns := make([]Pattern, 0, len(exprs))
	for i, expr := range exprs {
		patterns = append(patterns, Pattern{
			Name:  fmt.Sprintf("%s_%d", name, i+1),
			Regex: regexp.MustCompile(`(?i)` + expr),
		})
	}
	return patterns
}

// BuiltinPatterns returns the builtin detection table. All patterns are
// case-insensitive.
func BuiltinPatterns() PatternTable {
	return PatternTable{
		CategoryInjection: mustPatterns("injection",
			`ignore\s+(all\s+)?(previous|prior|above|earlier)\s+instructions?`,
			`disregard\s+(all\s+)?(previous|prior|above|earlier)`,
			`forget\s+(all\s+)?(previous|prior|above|earlier)`,
			`you\s+are\s+now`,
			`your\s+new\s+(role|instruction|task)\s+is`,
			`system\s+prompt`,
			`show\s+(me\s+)?(your|the)\s+(prompt|instruction|system)`,
			`what\s+(is|are)\s+your\s+(instruction|rule|prompt)`,
			`reveal\s+your\s+(instruction|rule|prompt)`,
			`bypass\s+(security|filter|restriction)`,
			`jailbreak`,
			`DAN\s+mode`,
			`developer\s+mode`,
			`admin\s+mode`,
			`act\s+as\s+if`,
			`pretend\s+(you|to\s+be)`,
			`roleplay\s+as`,
		),
		CategorySQL: mustPatterns("sql",
			`union\s+select|drop\s+table|delete\s+from|insert\s+into|update\s+set`,
			`--|;|/\*|\*/|xp_|sp_`,
			`\bor\b\s+\d+\s*=\s*\d+|\band\b\s+\d+\s*=\s*\d+`,
		),
		CategoryCodeExec: mustPatterns("code_exec",
			`eval|exec|compile|__import__|subprocess|os\.system`,
			`exec\(|eval\(|__builtins__|globals\(|locals\(`,
			`pickle|marshal|importlib`,
		),
		CategorySensitive: mustPatterns("sensitive",
			`api[_\s]?key`,
			`secret[_\s]?key`,
			`password`,
			`token`,
			`credential`,
			`auth[_\s]?token`,
		),
		CategoryDataTheft: mustPatterns("data_theft",
			`export\s+(all|entire|complete|full)\s+(data|database|records)`,
			`download\s+(all|entire|complete|full)\s+(data|database)`,
			`give\s+me\s+(all|entire|complete|full|every)\s+(data|records|entries)`,
			`show\s+(all|entire|complete|full|every)\s+(data|records|entries)`,
			`dump\s+(data|database|table|records)`,
			`extract\s+(all|entire|complete)\s+(data|records)`,
		),
		CategoryEnumeration: mustPatterns("enumeration",
			`give\s+me\s+all|list\s+all|show\s+all|dump\s+all`,
			`every\s+record|every\s+entry|all\s+records|all\s+entries`,
			`from\s+\d+\s+to\s+\d+|between\s+\d+\s+and\s+\d+`,
		),
	}
}

// patternFile is the YAML shape for pattern overrides: a mapping of
// category name to a list of regular expressions.
type patternFile map[string][]string

// LoadPatternFile reads a YAML pattern file and returns the builtin table
// with the listed categories replaced. Categories absent from the file keep
// their builtin patterns.
func LoadPatternFile(path string) (PatternTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}

	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}

	table := BuiltinPatterns()
	for name, exprs := range file {
		category := Category(name)
		if _, known := table[category]; !known {
			return nil, fmt.Errorf("unknown pattern category %q", name)
		}
		patterns := make([]Pattern, 0, len(exprs))
		for i, expr := range exprs {
			re, err := regexp.Compile(`(?i)` + expr)
			if err != nil {
				return nil, fmt.Errorf("pattern %s[%d]: %w", name, i, err)
			}
			patterns = append(patterns, Pattern{
				Name:  fmt.Sprintf("%s_custom_%d", name, i+1),
				Regex: re,
			})
		}
		table[category] = patterns
	}

	return table, nil
}
