package domain

import "fmt"

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// IsZero reports whether the coordinate was never set.
func (c Coordinate) IsZero() bool { return c.Lat == 0 && c.Lng == 0 }

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lng)
}

// MapURL links to the coordinate on OpenStreetMap.
func (c Coordinate) MapURL(zoom int) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=%d/%.6f/%.6f",
		c.Lat, c.Lng, zoom, c.Lat, c.Lng)
}

var (
	// DefaultMapCenter is where the center map starts before a location is known.
	DefaultMapCenter = Coordinate{Lat: 11.874477, Lng: 75.370369}
	// FallbackLocation is used when the user's location cannot be determined.
	FallbackLocation = Coordinate{Lat: 28.6139, Lng: 77.2090}
)
