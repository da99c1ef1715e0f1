package request_models

type GeocodeQuery struct {
	Address string `form:"address" binding:"required"`
	City    string `form:"city"`
}

type PlaceSearchQuery struct {
	Keywords string `form:"keywords" binding:"required"`
	City     string `form:"city"`
}

type RouteQuery struct {
	Origin      string `form:"origin" binding:"required"`
	Destination string `form:"destination" binding:"required"`
	Mode        string `form:"mode" binding:"omitempty,oneof=driving walking transit"`
	// City scopes free-text endpoints and is required for transit.
	City string `form:"city"`
}

type WeatherQuery struct {
	City string `form:"city" binding:"required"`
}

type StaticMapQuery struct {
	Location string `form:"location" binding:"required"`
	Markers  string `form:"markers"`
	Zoom     int    `form:"zoom" binding:"omitempty,gte=1,lte=17"`
	Size     string `form:"size"`
}
