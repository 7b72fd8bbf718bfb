// Package overpass fetches emergency facilities from the Overpass API and
// normalizes raw OSM elements into domain records.
package overpass

import (
	"fmt"
	"strings"

	"github.com/reliefmap/shelter-cli/internal/config"
)

// BuildQuery renders the fixed regional Overpass QL query. The bounding box
// and amenity filter come from configuration; the client answers this one
// query only, not arbitrary ones.
func BuildQuery(bbox config.BoundingBox, amenities []string) string {
	filter := fmt.Sprintf(`["amenity"~"^(%s)$"]`, strings.Join(amenities, "|"))
	box := fmt.Sprintf("(%g,%g,%g,%g)", bbox.South, bbox.West, bbox.North, bbox.East)

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&b, "  %s%s%s;\n", kind, filter, box)
	}
	b.WriteString(");\nout center;")
	return b.String()
}
