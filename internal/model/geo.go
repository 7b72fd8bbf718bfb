package model

import (
	"sort"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// DistanceFrom returns the planar distance in degrees between the facility
// and the given point. Planar distance is adequate for ranking within a
// single regional bounding box; it is not a metric distance.
func (f Facility) DistanceFrom(lat, lon float64) float64 {
	return xy.Distance(geom.Coord{f.Lon, f.Lat}, geom.Coord{lon, lat})
}

// SortByDistance orders facilities by ascending distance from the given
// point. The sort is stable so equidistant facilities keep their fetch order.
func SortByDistance(facilities []Facility, lat, lon float64) {
	sort.SliceStable(facilities, func(i, j int) bool {
		return facilities[i].DistanceFrom(lat, lon) < facilities[j].DistanceFrom(lat, lon)
	})
}
