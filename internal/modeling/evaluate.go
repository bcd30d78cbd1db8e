package modeling

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ClassMetrics are the per-class scores of a classification report
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassificationReport summarizes predictions against the true labels.
// Divisions by zero yield 0.
type ClassificationReport struct {
	Model       string         `json:"model"`
	Classes     []ClassMetrics `json:"classes"`
	Accuracy    float64        `json:"accuracy"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Total       int            `json:"total"`
}

// Accuracy returns the share of equal labels.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hit := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(yTrue))
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Evaluate builds the report over the union of labels present in either slice.
func Evaluate(model string, yTrue, yPred []int) (*ClassificationReport, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("evaluate: %d labels but %d predictions", len(yTrue), len(yPred))
	}

	labelSet := make(map[int]bool)
	for i := range yTrue {
		labelSet[yTrue[i]] = true
		labelSet[yPred[i]] = true
	}
	labels := make([]int, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	r := &ClassificationReport{Model: model, Total: len(yTrue), Accuracy: Accuracy(yTrue, yPred)}
	for _, l := range labels {
		var tp, fp, fn, support float64
		for i := range yTrue {
			switch {
			case yTrue[i] == l && yPred[i] == l:
				tp++
			case yTrue[i] != l && yPred[i] == l:
				fp++
			case yTrue[i] == l && yPred[i] != l:
				fn++
			}
			if yTrue[i] == l {
				support++
			}
		}
		precision := safeDiv(tp, tp+fp)
		recall := safeDiv(tp, tp+fn)
		r.Classes = append(r.Classes, ClassMetrics{
			Label:     strconv.Itoa(l),
			Precision: precision,
			Recall:    recall,
			F1:        safeDiv(2*precision*recall, precision+recall),
			Support:   int(support),
		})
	}

	r.MacroAvg = ClassMetrics{Label: "macro avg", Support: r.Total}
	r.WeightedAvg = ClassMetrics{Label: "weighted avg", Support: r.Total}
	k := float64(len(r.Classes))
	for _, c := range r.Classes {
		r.MacroAvg.Precision += c.Precision / k
		r.MacroAvg.Recall += c.Recall / k
		r.MacroAvg.F1 += c.F1 / k
		w := safeDiv(float64(c.Support), float64(r.Total))
		r.WeightedAvg.Precision += c.Precision * w
		r.WeightedAvg.Recall += c.Recall * w
		r.WeightedAvg.F1 += c.F1 * w
	}
	return r, nil
}

// Class returns the metrics of one label, if present.
func (r *ClassificationReport) Class(label int) (ClassMetrics, bool) {
	want := strconv.Itoa(label)
	for _, c := range r.Classes {
		if c.Label == want {
			return c, true
		}
	}
	return ClassMetrics{}, false
}

// String renders the report in the familiar fixed-width text layout.
func (r *ClassificationReport) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len(c.Label))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	row := func(c ClassMetrics) {
		fmt.Fprintf(&b, "%*s  %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	for _, c := range r.Classes {
		row(c)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Total)
	row(r.MacroAvg)
	row(r.WeightedAvg)
	return b.String()
}
