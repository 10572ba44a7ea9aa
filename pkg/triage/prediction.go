package triage

// Prediction is the outcome of classifying one message.
type Prediction struct {
	Text       string             `json:"text"`
	Categories []string           `json:"categories"`
	Scores     map[string]float64 `json:"scores"`
}

// Has reports whether category was assigned.
func (p Prediction) Has(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}
