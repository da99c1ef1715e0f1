package response_models

type SimilarItinerary struct {
	ID          string   `json:"id"`
	Destination string   `json:"destination"`
	Keywords    []string `json:"keywords"`
	Similarity  float64  `json:"similarity"`
}
