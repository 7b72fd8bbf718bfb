package overpass

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reliefmap/shelter-cli/internal/model"
)

// Element is one raw entry from an Overpass response.
type Element struct {
	Type   string            `json:"type"` // "node", "way", "relation"
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Center is the precomputed centroid Overpass attaches to ways and relations
// when queried with `out center`.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// amenityCategories maps known OSM amenity tags to the closed Category set.
var amenityCategories = map[string]model.Category{
	"hospital":     model.CategoryHospital,
	"pharmacy":     model.CategoryPharmacy,
	"fire_station": model.CategoryFireStation,
	"police":       model.CategoryPolice,
	"shelter":      model.CategoryShelter,
}

// Normalize converts one raw element into a Facility. It is pure and never
// errors: elements with no resolvable coordinates are silently skipped
// (ok=false), as are elements whose coordinates fall outside real-world
// range. IDs are synthesized as "osm_<type>_<id>" so a node and a way
// sharing a numeric id never collide, and repeated fetches of the same
// element yield the same ID.
func Normalize(el Element) (model.Facility, bool) {
	var lat, lon float64
	switch {
	case el.Lat != nil && el.Lon != nil:
		lat, lon = *el.Lat, *el.Lon
	case el.Center != nil:
		lat, lon = el.Center.Lat, el.Center.Lon
	default:
		return model.Facility{}, false
	}

	category := model.CategoryUnknown
	if c, ok := amenityCategories[el.Tags["amenity"]]; ok {
		category = c
	}

	f := model.Facility{
		ID:           fmt.Sprintf("osm_%s_%d", el.Type, el.ID),
		Category:     category,
		Lat:          lat,
		Lon:          lon,
		Name:         displayName(el, category),
		CapacityHint: el.Tags["capacity"],
	}
	if !f.HasValidCoordinates() {
		return model.Facility{}, false
	}
	return f, true
}

// NormalizeAll maps raw elements through Normalize, dropping the skipped ones.
func NormalizeAll(elements []Element) []model.Facility {
	facilities := make([]model.Facility, 0, len(elements))
	for _, el := range elements {
		if f, ok := Normalize(el); ok {
			facilities = append(facilities, f)
		}
	}
	return facilities
}

// displayName uses the source-provided name verbatim when present, otherwise
// synthesizes one from the category and numeric id.
func displayName(el Element, category model.Category) string {
	if name := strings.TrimSpace(el.Tags["name"]); name != "" {
		return name
	}
	// cases.Caser is not safe for concurrent use, so build one per call.
	label := cases.Title(language.English).String(strings.ReplaceAll(string(category), "_", " "))
	return fmt.Sprintf("%s #%d", label, el.ID)
}
