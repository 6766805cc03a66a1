package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hamed0406/healthchecker/internal/domain"
)

// JSONFile overwrites Path with each batch as a pretty-printed JSON array.
type JSONFile struct {
	Path string
	// Terminal, when set, is told about each successful write.
	Terminal *Terminal
}

func NewJSONFile(path string, term *Terminal) *JSONFile {
	return &JSONFile{Path: path, Terminal: term}
}

func (f *JSONFile) Report(_ context.Context, b domain.Batch) error {
	outcomes := b.Outcomes
	if outcomes == nil {
		outcomes = []domain.Outcome{}
	}
	data, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("save results to %s: %w", f.Path, err)
	}
	if f.Terminal != nil {
		f.Terminal.Saved(f.Path)
	}
	return nil
}

// ReadJSONFile loads a batch file written by JSONFile.
func ReadJSONFile(path string) ([]domain.Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []domain.Outcome
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}
