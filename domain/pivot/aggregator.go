package pivot

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// Aggregator names how the values of a DATA field are combined within a cell
type Aggregator string

const (
	AggregatorSum     Aggregator = "sum"
	AggregatorCount   Aggregator = "count"
	AggregatorAverage Aggregator = "average"
	AggregatorMin     Aggregator = "min"
	AggregatorMax     Aggregator = "max"
)

// Aggregators returns all supported aggregators
func Aggregators() []Aggregator {
	return []Aggregator{AggregatorSum, AggregatorCount, AggregatorAverage, AggregatorMin, AggregatorMax}
}

// ParseAggregator parses a case-insensitive aggregator name
func ParseAggregator(s string) (Aggregator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return AggregatorSum, nil
	case "count":
		return AggregatorCount, nil
	case "average", "avg", "mean":
		return AggregatorAverage, nil
	case "min":
		return AggregatorMin, nil
	case "max":
		return AggregatorMax, nil
	}
	return "", fmt.Errorf("unknown aggregator %q", s)
}

// accumulator collects the raw values of one cell
type accumulator struct {
	numbers []float64
	count   int
}

func (a *accumulator) add(v interface{}) {
	if v == nil {
		return
	}
	a.count++
	if f, ok := ToFloat(v); ok {
		a.numbers = append(a.numbers, f)
	}
}

// value applies the aggregator. ok is false when the cell holds nothing to aggregate.
func (a *accumulator) value(agg Aggregator) (float64, bool) {
	if agg == AggregatorCount {
		if a.count == 0 {
			return 0, false
		}
		return float64(a.count), true
	}
	if len(a.numbers) == 0 {
		return 0, false
	}

	var (
		v   float64
		err error
	)
	switch agg {
	case AggregatorSum:
		v = floats.Sum(a.numbers)
	case AggregatorAverage:
		v, err = stats.Mean(a.numbers)
	case AggregatorMin:
		v, err = stats.Min(a.numbers)
	case AggregatorMax:
		v, err = stats.Max(a.numbers)
	default:
		return 0, false
	}
	if err != nil {
		return 0, false
	}
	return v, true
}
