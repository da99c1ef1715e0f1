package response_models

type GeocodeResult struct {
	Lng              float64 `json:"lng"`
	Lat              float64 `json:"lat"`
	FormattedAddress string  `json:"formatted_address"`
	Province         string  `json:"province,omitempty"`
	City             string  `json:"city,omitempty"`
	District         string  `json:"district,omitempty"`
}

type Place struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Address  string  `json:"address"`
	Lng      float64 `json:"lng"`
	Lat      float64 `json:"lat"`
	Tel      string  `json:"tel,omitempty"`
	Distance string  `json:"distance,omitempty"`
}

type RouteStep struct {
	Instruction string  `json:"instruction"`
	Distance    float64 `json:"distance"`
	Duration    int64   `json:"duration"`
}

type Route struct {
	Mode     string      `json:"mode"`
	Distance float64     `json:"distance"`
	Duration int64       `json:"duration"`
	Cost     float64     `json:"cost,omitempty"`
	Steps    []RouteStep `json:"steps"`
}

type Weather struct {
	City          string `json:"city"`
	Weather       string `json:"weather"`
	Temperature   string `json:"temperature"`
	WindDirection string `json:"wind_direction"`
	WindPower     string `json:"wind_power"`
	Humidity      string `json:"humidity"`
	ReportTime    string `json:"report_time"`
}
