package overpass

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reliefmap/shelter-cli/internal/config"
)

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(
		config.BoundingBox{South: 44.7, West: 20.25, North: 44.93, East: 20.65},
		[]string{"hospital", "police"},
	)

	assert.Contains(t, q, `node["amenity"~"^(hospital|police)$"](44.7,20.25,44.93,20.65);`)
	assert.Contains(t, q, `way["amenity"~"^(hospital|police)$"](44.7,20.25,44.93,20.65);`)
	assert.Contains(t, q, `relation["amenity"~"^(hospital|police)$"](44.7,20.25,44.93,20.65);`)
	assert.Contains(t, q, "[out:json]")
	assert.Contains(t, q, "out center;")
}
