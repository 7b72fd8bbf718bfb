package shelter

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/reliefmap/shelter-cli/internal/model"
)

//go:embed fallback.yaml
var fallbackYAML []byte

// fallbackEntry mirrors model.Facility with yaml tags for the bundled file.
type fallbackEntry struct {
	ID           string  `yaml:"id"`
	Category     string  `yaml:"category"`
	Lat          float64 `yaml:"lat"`
	Lon          float64 `yaml:"lon"`
	Name         string  `yaml:"name"`
	CapacityHint string  `yaml:"capacity_hint"`
}

var fallbackFacilities = mustLoadFallback()

func mustLoadFallback() []model.Facility {
	var entries []fallbackEntry
	if err := yaml.Unmarshal(fallbackYAML, &entries); err != nil {
		panic("shelter: bundled fallback dataset is invalid: " + err.Error())
	}
	facilities := make([]model.Facility, 0, len(entries))
	for _, e := range entries {
		facilities = append(facilities, model.Facility{
			ID:           e.ID,
			Category:     model.Category(e.Category),
			Lat:          e.Lat,
			Lon:          e.Lon,
			Name:         e.Name,
			CapacityHint: e.CapacityHint,
		})
	}
	return facilities
}

// FallbackFacilities returns a copy of the bundled static dataset.
func FallbackFacilities() []model.Facility {
	out := make([]model.Facility, len(fallbackFacilities))
	copy(out, fallbackFacilities)
	return out
}
