// Package render serializes compositions as Alda scores, Standard MIDI Files, JSON and text trees
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/james-see/codecomposer/pkg/composer"
	"github.com/james-see/codecomposer/pkg/errs"
)

// Format represents an output format
type Format string

const (
	FormatAlda    Format = "alda"
	FormatMIDI    Format = "midi"
	FormatJSON    Format = "json"
	FormatTree    Format = "tree"
	FormatUnknown Format = "unknown"
)

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".alda":
		return FormatAlda
	case ".mid", ".midi":
		return FormatMIDI
	case ".json":
		return FormatJSON
	case ".txt":
		return FormatTree
	default:
		return FormatUnknown
	}
}

// aldaPart matches an unindented Alda part declaration such as "violin:"
var aldaPart = regexp.MustCompile(`(?m)^[a-z][a-z-]*:\s*$`)

// DetectFormatFromContent detects format from rendered content
func DetectFormatFromContent(data []byte) Format {
	if len(data) >= 4 && string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatUnknown
	}
	if trimmed[0] == '{' {
		return FormatJSON
	}
	if aldaPart.Match(trimmed) {
		return FormatAlda
	}
	if bytes.HasPrefix(trimmed, []byte("Composition")) {
		return FormatTree
	}
	return FormatUnknown
}

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAlda, FormatMIDI, FormatJSON, FormatTree:
		return f, nil
	case "mid":
		return FormatMIDI, nil
	default:
		return FormatUnknown, &errs.InputError{Field: "format", Value: s, Reason: "want alda, midi, json or tree"}
	}
}

// Voices selects which parts are rendered
type Voices string

const (
	VoicesBoth          Voices = "both"
	VoicesMelody        Voices = "melody"
	VoicesAccompaniment Voices = "accompaniment"
)

// ParseVoices parses a voice filter; empty means both
func ParseVoices(s string) (Voices, error) {
	switch v := Voices(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VoicesBoth, nil
	case VoicesBoth, VoicesMelody, VoicesAccompaniment:
		return v, nil
	default:
		return "", &errs.InputError{Field: "voices", Value: s, Reason: "want melody, accompaniment or both"}
	}
}

// Select returns the composition's voices that pass the filter, in score order
func (v Voices) Select(c *composer.Composition) []composer.Voice {
	switch v {
	case VoicesMelody:
		return []composer.Voice{c.Melody}
	case VoicesAccompaniment:
		return []composer.Voice{c.Accompaniment}
	default:
		return c.Voices()
	}
}

// Render serializes a composition in the given format
func Render(c *composer.Composition, format Format, voices Voices) ([]byte, error) {
	if c == nil {
		return nil, errors.New("nil composition")
	}

	switch format {
	case FormatAlda:
		return []byte(Alda(c, voices)), nil
	case FormatMIDI:
		return MIDI(c, voices)
	case FormatJSON:
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode composition: %w", err)
		}
		return append(data, '\n'), nil
	case FormatTree:
		return []byte(Tree(c)), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteFile renders a composition into a file whose extension selects the format
func WriteFile(c *composer.Composition, outputPath string, voices Voices) error {
	format := DetectFormat(outputPath)
	if format == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	data, err := Render(c, format, voices)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// SupportedFormats returns the output formats and their file extensions
func SupportedFormats() []string {
	return []string{
		"alda -> .alda",
		"midi -> .mid, .midi",
		"json -> .json",
		"tree -> .txt",
	}
}
