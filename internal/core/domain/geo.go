package domain

// Region is a first-level administrative unit (a Polish voivodeship).
type Region struct {
	ID   int64  `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// City belongs to exactly one region.
type City struct {
	ID       int64  `json:"id" bson:"_id"`
	RegionID int64  `json:"region_id" bson:"region_id"`
	Name     string `json:"name" bson:"name"`
}

// RegionWithCities is a region together with its cities, both ordered by name.
type RegionWithCities struct {
	Region
	Cities []City `json:"cities"`
}
