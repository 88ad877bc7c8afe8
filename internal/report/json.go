package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ismailtsdln/BinaryInsight/internal/analysis"
	"github.com/ismailtsdln/BinaryInsight/internal/binfile"
)

// jsonReport is the machine-readable analysis envelope.
type jsonReport struct {
	Name        string              `json:"name"`
	Info        binfile.BinaryInfo  `json:"info"`
	Hashes      analysis.FileHashes `json:"hashes"`
	Entropy     float64             `json:"entropy"`
	YaraMatches []string            `json:"yara_matches,omitempty"`
}

// WriteJSON emits the analysis for bin as indented JSON.
func WriteJSON(w io.Writer, bin *binfile.BinaryFile, yaraMatches []string) error {
	out := jsonReport{
		Name:        bin.Name,
		Info:        bin.Info,
		Hashes:      analysis.Hashes(bin.Data),
		Entropy:     analysis.Entropy(bin.Data),
		YaraMatches: yaraMatches,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
