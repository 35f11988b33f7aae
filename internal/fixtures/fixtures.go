// Package fixtures bundles a sample dataset used when no backend is configured.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/j-veylop/sleep-insight-tui/internal/models"
)

//go:embed input.json
var inputJSON []byte

//go:embed output.json
var outputJSON []byte

type input struct {
	HeartRate   []models.HeartRatePoint `json:"heart_rate"`
	SoundLevels []models.SoundPoint     `json:"sound_levels"`
}

// Load decodes the bundled sample dataset. Each call returns a fresh copy.
func Load() (*models.Dataset, error) {
	var in input
	if err := json.Unmarshal(inputJSON, &in); err != nil {
		return nil, fmt.Errorf("failed to decode sample input: %w", err)
	}
	summary, err := models.ParseSummary(outputJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sample output: %w", err)
	}
	return &models.Dataset{
		Summary:     *summary,
		HeartRate:   in.HeartRate,
		SoundLevels: in.SoundLevels,
	}, nil
}
