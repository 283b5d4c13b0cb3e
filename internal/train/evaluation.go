package train

import (
	"strconv"

	"github.com/drakos74/free-text/internal/math/ml"
	"github.com/drakos74/free-text/internal/model"
	"github.com/sjwhitworth/golearn/evaluation"
	"gonum.org/v1/gonum/mat"
)

// evaluate returns the mean loss and the accuracy of the network on the given samples.
// Samples are processed in batches of the given size with dropout disabled.
func evaluate(net *ml.Network, x model.Matrix, y []int, batchSize int) (loss, accuracy float64, predicted []int, err error) {
	n := len(x.Rows)
	predicted = make([]int, 0, n)
	var correct int
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		idx := indices(start, end)
		p, err := net.Forward(x.Select(idx), false)
		if err != nil {
			return 0, 0, nil, err
		}
		target := ml.Targets(y[start:end], net.Config().Classes)
		loss += ml.CrossEntropy(p, target) * float64(end-start)
		classes := ml.Classify(p)
		correct += matches(classes, y[start:end])
		predicted = append(predicted, classes...)
	}
	return loss / float64(n), float64(correct) / float64(n), predicted, nil
}

// confusion builds the confusion matrix of the predictions, keyed by reference and then predicted class.
func confusion(reference, predicted []int, classes int) evaluation.ConfusionMatrix {
	c := make(evaluation.ConfusionMatrix)
	for i := 0; i < classes; i++ {
		c[strconv.Itoa(i)] = make(map[string]int)
	}
	for i, ref := range reference {
		c[strconv.Itoa(ref)][strconv.Itoa(predicted[i])]++
	}
	return c
}

func matches(predicted, labels []int) int {
	var n int
	for i, p := range predicted {
		if p == labels[i] {
			n++
		}
	}
	return n
}

func correctRows(p *mat.Dense, labels []int) int {
	return matches(ml.Classify(p), labels)
}

func indices(start, end int) []int {
	idx := make([]int, end-start)
	for i := range idx {
		idx[i] = start + i
	}
	return idx
}
