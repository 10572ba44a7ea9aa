package output

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/triage/internal/model"
)

// Separator closes each category block in the text report.
var Separator = strings.Repeat("-", 56)

// FormatReport renders a report as a human-readable block: the category,
// its accuracy, and a precision/recall/F1/support row per class.
func FormatReport(r model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "category: %s\n", r.Category)
	fmt.Fprintf(&b, "accuracy: %.4f\n", r.Accuracy)
	fmt.Fprintf(&b, "%12s %10s%10s%10s%10s\n\n", "", "precision", "recall", "f1-score", "support")
	writeClassRow(&b, "0", r.Negative)
	writeClassRow(&b, "1", r.Positive)
	b.WriteString("\n")
	b.WriteString(Separator)
	b.WriteString("\n")
	return b.String()
}

func writeClassRow(b *strings.Builder, label string, m model.ClassMetrics) {
	fmt.Fprintf(b, "%12s %10.2f%10.2f%10.2f%10d\n", label, m.Precision, m.Recall, m.F1, m.Support)
}
