package campaigns

import "github.com/northfiber/fiberops-backend/pkg/types"

// polygonContains is a standard ray cast: count edge crossings of a
// horizontal ray from the point; odd means inside.
func polygonContains(polygon types.Polygon, point types.LatLng) bool {
	vertices := polygon.Points
	if len(vertices) < 3 {
		return false
	}

	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Lat > point.Lat) != (vj.Lat > point.Lat) {
			crossing := (vj.Lng-vi.Lng)*(point.Lat-vi.Lat)/(vj.Lat-vi.Lat) + vi.Lng
			if point.Lng < crossing {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// polygonBounds is the bbox prefilter for a drawn area.
func polygonBounds(polygon types.Polygon) (types.BoundingBox, bool) {
	if len(polygon.Points) == 0 {
		return types.BoundingBox{}, false
	}
	box := types.BoundingBox{
		SouthWest: polygon.Points[0],
		NorthEast: polygon.Points[0],
	}
	for _, p := range polygon.Points[1:] {
		if p.Lat < box.SouthWest.Lat {
			box.SouthWest.Lat = p.Lat
		}
		if p.Lat > box.NorthEast.Lat {
			box.NorthEast.Lat = p.Lat
		}
		if p.Lng < box.SouthWest.Lng {
			box.SouthWest.Lng = p.Lng
		}
		if p.Lng > box.NorthEast.Lng {
			box.NorthEast.Lng = p.Lng
		}
	}
	return box, true
}
