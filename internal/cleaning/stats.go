package cleaning

import (
	"math"
	"sort"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max of each column, ignoring nulls. Columns without values report a
// zero count and null statistics.
func Describe(f domain.Frame) []domain.ColumnStats {
	out := make([]domain.ColumnStats, 0, len(f.Columns))
	for _, c := range f.Columns {
		out = append(out, describeColumn(c, f.Data[c]))
	}
	return out
}

func describeColumn(c domain.Column, vals []float64) domain.ColumnStats {
	xs := nonNull(vals)
	st := domain.ColumnStats{
		Column: c,
		Count:  len(xs),
		Mean:   domain.Null,
		Std:    domain.Null,
		Min:    domain.Null,
		P25:    domain.Null,
		P50:    domain.Null,
		P75:    domain.Null,
		Max:    domain.Null,
	}
	if len(xs) == 0 {
		return st
	}
	sort.Float64s(xs)
	st.Mean = mean(xs)
	if len(xs) > 1 {
		ss := 0.0
		for _, x := range xs {
			ss += (x - st.Mean) * (x - st.Mean)
		}
		st.Std = math.Sqrt(ss / float64(len(xs)-1))
	}
	st.Min = xs[0]
	st.P25 = quantile(xs, 0.25)
	st.P50 = quantile(xs, 0.50)
	st.P75 = quantile(xs, 0.75)
	st.Max = xs[len(xs)-1]
	return st
}

// CompareMeans pairs the source and processed means of each column. The
// difference is a fraction of the source mean rounded to three places; an
// undefined difference reports as zero.
func CompareMeans(before, after []domain.ColumnStats) []domain.MeanComparison {
	post := make(map[domain.Column]float64, len(after))
	for _, s := range after {
		post[s.Column] = s.Mean
	}
	out := make([]domain.MeanComparison, 0, len(before))
	for _, s := range before {
		p, ok := post[s.Column]
		if !ok {
			p = domain.Null
		}
		diff := (p - s.Mean) / s.Mean
		if math.IsNaN(diff) {
			diff = 0
		}
		out = append(out, domain.MeanComparison{
			Column:        s.Column,
			SourceMean:    roundTo(s.Mean, 2),
			ProcessedMean: roundTo(p, 2),
			PctDifference: roundTo(diff, 3),
		})
	}
	return out
}

// CompareNulls pairs each column's null share in two frames.
func CompareNulls(before, after domain.Frame) []domain.NullComparison {
	out := make([]domain.NullComparison, 0, len(before.Columns))
	for _, c := range before.Columns {
		out = append(out, domain.NullComparison{
			Column:    c,
			PctBefore: roundTo(pctNull(before.Data[c]), 4),
			PctAfter:  roundTo(pctNull(after.Data[c]), 4),
		})
	}
	return out
}

func pctNull(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	n := 0
	for _, v := range vals {
		if domain.IsNull(v) {
			n++
		}
	}
	return float64(n) / float64(len(vals))
}

func nonNull(vals []float64) []float64 {
	xs := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !domain.IsNull(v) {
			xs = append(xs, v)
		}
	}
	return xs
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// quantile returns the q-th quantile of sorted xs by linear interpolation
// between closest ranks.
func quantile(xs []float64, q float64) float64 {
	if len(xs) == 1 {
		return xs[0]
	}
	pos := q * float64(len(xs)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return xs[lo]
	}
	frac := pos - float64(lo)
	return xs[lo] + (xs[hi]-xs[lo])*frac
}

func roundTo(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
