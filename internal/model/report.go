package model

// ClassMetrics holds precision, recall and F1 for one class of a binary
// label, plus the number of true instances (support).
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the held-out evaluation of one category.
type Report struct {
	Category string       `json:"category"`
	Accuracy float64      `json:"accuracy"`
	Negative ClassMetrics `json:"negative"` // label = 0
	Positive ClassMetrics `json:"positive"` // label = 1
	Samples  int          `json:"samples"`
}
