package domain

// WasteType is a category of waste with its per-kilogram price.
type WasteType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PricePerKg  Amount `json:"price_per_kg"`
}

// Center is a collection center returned by the API.
type Center struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Latitude  Amount `json:"latitude"`
	Longitude Amount `json:"longitude"`
}

// Location returns the center's coordinate.
func (c Center) Location() Coordinate {
	return Coordinate{Lat: c.Latitude.Float(), Lng: c.Longitude.Float()}
}

// FindWasteType returns the waste type with the given id.
func FindWasteType(types []WasteType, id int) (WasteType, bool) {
	for _, t := range types {
		if t.ID == id {
			return t, true
		}
	}
	return WasteType{}, false
}
