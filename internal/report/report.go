package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/gifocr/internal/config"
	"github.com/ivlev/gifocr/internal/models"
)

// Document is the serialized form of a result set.
type Document struct {
	Result models.ResultSet `json:"result" yaml:"result"`
}

var (
	heavyRule = strings.Repeat("=", 79)
	lightRule = strings.Repeat("-", 79)
)

// Write renders results to w in the given format.
func Write(w io.Writer, results models.ResultSet, format string) error {
	if results == nil {
		results = models.ResultSet{}
	}
	doc := Document{Result: results}

	switch format {
	case config.FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		return enc.Encode(doc)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(4)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatText:
		return writeText(w, results)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// writeText prints the full recognized text of every frame between rules.
func writeText(w io.Writer, results models.ResultSet) error {
	for i, r := range results {
		if _, err := fmt.Fprintf(w, "%s\n%d\n%s\n", heavyRule, i, lightRule); err != nil {
			return err
		}
		if r.FullText == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, r.FullText); err != nil {
			return err
		}
	}
	return nil
}

// Read parses a JSON document produced by Write.
func Read(r io.Reader) (models.ResultSet, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode result document: %w", err)
	}
	return doc.Result, nil
}
