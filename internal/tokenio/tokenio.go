// Package tokenio renders token sequences as text and parses them back,
// for piping between the CLI, files, and other tools.
package tokenio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Supported sequence formats.
const (
	FormatSpace = "space" // space-separated decimal values
	FormatCSV   = "csv"   // comma-separated decimal values
	FormatJSON  = "json"  // JSON array of integers
)

// ErrUnknownFormat is returned for format names outside space|csv|json.
var ErrUnknownFormat = errors.New("unknown token format")

// NormalizeFormat canonicalizes a format name. An empty string selects
// FormatSpace.
func NormalizeFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatSpace:
		return FormatSpace, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w %q (want space|csv|json)", ErrUnknownFormat, s)
	}
}

// Format renders tokens in the given format. An empty sequence renders
// as "" for space/csv and "[]" for json.
func Format(tokens []int64, format string) (string, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatJSON:
		if tokens == nil {
			tokens = []int64{}
		}
		b, err := json.Marshal(tokens)
		if err != nil {
			return "", fmt.Errorf("marshal tokens: %w", err)
		}
		return string(b), nil
	case FormatCSV:
		return joinDecimal(tokens, ","), nil
	default:
		return joinDecimal(tokens, " "), nil
	}
}

// Parse reads a token sequence in the given format. Whitespace around
// the input and around individual elements is ignored; empty input
// yields an empty sequence.
func Parse(s, format string) ([]int64, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	s = strings.TrimSpace(s)

	switch format {
	case FormatJSON:
		if s == "" {
			return []int64{}, nil
		}
		var tokens []int64
		if err := json.Unmarshal([]byte(s), &tokens); err != nil {
			return nil, fmt.Errorf("parse json tokens: %w", err)
		}
		if tokens == nil {
			tokens = []int64{}
		}
		return tokens, nil
	case FormatCSV:
		return parseDecimal(splitNonEmpty(s, ","))
	default:
		return parseDecimal(strings.Fields(s))
	}
}

func joinDecimal(tokens []int64, sep string) string {
	if len(tokens) == 0 {
		return ""
	}

	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(strconv.FormatInt(tok, 10))
	}
	return b.String()
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDecimal(fields []string) ([]int64, error) {
	tokens := make([]int64, 0, len(fields))
	for i, f := range fields {
		tok, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse token %q at index %d: %w", f, i, err)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
