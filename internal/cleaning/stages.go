package cleaning

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// PruneColumns drops the station bookkeeping columns once the station has
// been resolved.
func PruneColumns(t domain.UnifiedTable) domain.UnifiedTable {
	out := domain.UnifiedTable{Sources: t.Sources}
	for _, c := range t.Columns {
		if !isBookkeeping(c) {
			out.Columns = append(out.Columns, c)
		}
	}
	out.Rows = make([]domain.RawObservation, len(t.Rows))
	for i, r := range t.Rows {
		fields := make(map[domain.Column]string, len(r.Fields))
		for c, v := range r.Fields {
			if !isBookkeeping(c) {
				fields[c] = v
			}
		}
		out.Rows[i] = domain.RawObservation{Time: r.Time, Fields: fields}
	}
	return out
}

func isBookkeeping(c domain.Column) bool {
	for _, b := range domain.BookkeepingColumns {
		if b == c {
			return true
		}
	}
	return false
}

// Coerce converts measurement columns to numbers. Values that do not parse
// become null and are counted. Sunrise/Sunset stay text.
func Coerce(t domain.UnifiedTable) (domain.Frame, int) {
	index := make([]time.Time, len(t.Rows))
	for i, r := range t.Rows {
		index[i] = r.Time
	}

	var numeric, text []domain.Column
	for _, c := range t.Columns {
		switch {
		case domain.IsMeasurement(c):
			numeric = append(numeric, c)
		case domain.IsSun(c):
			text = append(text, c)
		}
	}

	f := domain.NewFrame(index, numeric)
	for _, c := range text {
		f.Text[c] = make([]string, len(index))
	}

	unparseable := 0
	for i, r := range t.Rows {
		for _, c := range numeric {
			raw, ok := r.Value(c)
			if !ok {
				continue
			}
			v, ok := parseNumber(raw)
			if !ok {
				unparseable++
				continue
			}
			f.Data[c][i] = v
		}
		for _, c := range text {
			if raw, ok := r.Value(c); ok {
				f.Text[c][i] = raw
			}
		}
	}
	return f, unparseable
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ResolveDuplicates collapses rows sharing a timestamp into one row holding
// the mean of the non-null values per column. Text columns keep the first
// non-empty value. The input index must be sorted. Returns the number of
// rows removed.
func ResolveDuplicates(f domain.Frame) (domain.Frame, int) {
	var index []time.Time
	var groups [][2]int
	for i := 0; i < f.Len(); {
		j := i + 1
		for j < f.Len() && f.Index[j].Equal(f.Index[i]) {
			j++
		}
		index = append(index, f.Index[i])
		groups = append(groups, [2]int{i, j})
		i = j
	}

	out := domain.NewFrame(index, f.Columns)
	for _, c := range f.Columns {
		src, dst := f.Data[c], out.Data[c]
		for g, span := range groups {
			sum, n := 0.0, 0
			for k := span[0]; k < span[1]; k++ {
				if !domain.IsNull(src[k]) {
					sum += src[k]
					n++
				}
			}
			if n > 0 {
				dst[g] = sum / float64(n)
			}
		}
	}
	for c, src := range f.Text {
		dst := make([]string, len(groups))
		for g, span := range groups {
			for k := span[0]; k < span[1]; k++ {
				if src[k] != "" {
					dst[g] = src[k]
					break
				}
			}
		}
		out.Text[c] = dst
	}
	return out, f.Len() - len(index)
}

// ExtractSunTimes moves Sunrise/Sunset out of the frame into date-keyed
// mappings. Each value is anchored to its own row's calendar date; a later
// value for the same date replaces an earlier one.
func ExtractSunTimes(f domain.Frame) (domain.SunTimes, domain.Frame) {
	sun := domain.SunTimes{
		Sunrise: extractTimes(f, domain.ColumnSunrise),
		Sunset:  extractTimes(f, domain.ColumnSunset),
	}
	out := f.Clone()
	out.Text = map[domain.Column][]string{}
	return sun, out
}

func extractTimes(f domain.Frame, c domain.Column) map[time.Time]time.Time {
	m := map[time.Time]time.Time{}
	vals, ok := f.Text[c]
	if !ok {
		return m
	}
	for i, raw := range vals {
		if raw == "" {
			continue
		}
		h, mins, ok := ParseTimeOfDay(raw)
		if !ok {
			continue
		}
		day := domain.Midnight(f.Index[i])
		m[day] = day.Add(time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute)
	}
	return m
}

// ParseTimeOfDay parses "HH:MM", "HHMM" or "HMM" (also "715.0" as written
// by spreadsheet tools) into hour and minute.
func ParseTimeOfDay(s string) (int, int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	var hh, mm string
	if before, after, found := strings.Cut(s, ":"); found {
		hh, mm = before, after
		if len(mm) > 2 {
			mm = mm[:2]
		}
	} else {
		if before, after, found := strings.Cut(s, "."); found && strings.Trim(after, "0") == "" {
			s = before
		}
		if len(s) > 4 {
			return 0, 0, false
		}
		s = strings.Repeat("0", 4-len(s)) + s
		hh, mm = s[:2], s[2:]
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// PruneSuspectTimes removes every row whose time of day is suspect. A time
// of day is suspect when, within its rows, every measurement column has more
// nulls than pctNullMax of the frame's total row count. Returns the pruned
// frame, the suspect times as "15:04:05" and the number of rows removed.
func PruneSuspectTimes(f domain.Frame, pctNullMax float64) (domain.Frame, []string, int) {
	if len(f.Columns) == 0 || f.Len() == 0 {
		return f.Clone(), nil, 0
	}
	nMax := int(pctNullMax * float64(f.Len()))

	type tod = time.Duration
	nulls := map[tod][]int{}
	var order []tod
	for i, ts := range f.Index {
		k := ts.Sub(domain.Midnight(ts))
		counts, ok := nulls[k]
		if !ok {
			counts = make([]int, len(f.Columns))
			nulls[k] = counts
			order = append(order, k)
		}
		for j, c := range f.Columns {
			if domain.IsNull(f.Data[c][i]) {
				counts[j]++
			}
		}
	}

	suspect := map[tod]bool{}
	for k, counts := range nulls {
		all := true
		for _, n := range counts {
			if n <= nMax {
				all = false
				break
			}
		}
		if all {
			suspect[k] = true
		}
	}
	if len(suspect) == 0 {
		return f.Clone(), nil, 0
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	var labels []string
	for _, k := range order {
		if suspect[k] {
			labels = append(labels, time.Time{}.Add(k).Format("15:04:05"))
		}
	}

	var keep []int
	for i, ts := range f.Index {
		if !suspect[ts.Sub(domain.Midnight(ts))] {
			keep = append(keep, i)
		}
	}
	return selectRows(f, keep), labels, f.Len() - len(keep)
}

func selectRows(f domain.Frame, rows []int) domain.Frame {
	index := make([]time.Time, len(rows))
	for i, r := range rows {
		index[i] = f.Index[r]
	}
	out := domain.NewFrame(index, f.Columns)
	for _, c := range f.Columns {
		for i, r := range rows {
			out.Data[c][i] = f.Data[c][r]
		}
	}
	for c, vals := range f.Text {
		dst := make([]string, len(rows))
		for i, r := range rows {
			dst[i] = vals[r]
		}
		out.Text[c] = dst
	}
	return out
}

// MissingHours returns the hours between the first and last raw timestamp
// that no raw observation rounds to.
func MissingHours(index []time.Time) map[time.Time]struct{} {
	missing := map[time.Time]struct{}{}
	if len(index) == 0 {
		return missing
	}
	observed := make(map[time.Time]struct{}, len(index))
	first, last := index[0], index[0]
	for _, ts := range index {
		observed[roundHour(ts)] = struct{}{}
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	for h := first.Truncate(time.Hour); !h.After(last.Truncate(time.Hour)); h = h.Add(time.Hour) {
		if _, ok := observed[h]; !ok {
			missing[h] = struct{}{}
		}
	}
	return missing
}

// roundHour rounds ts to the nearest hour. Exact half hours go to the even
// hour since the Unix epoch.
func roundHour(ts time.Time) time.Time {
	h := ts.Truncate(time.Hour)
	rem := ts.Sub(h)
	if rem > 30*time.Minute || (rem == 30*time.Minute && (h.Unix()/3600)%2 != 0) {
		return h.Add(time.Hour)
	}
	return h
}

// ResampleColumns resamples each column on its own: nulls are dropped, then
// values are averaged into exact hourly buckets spanning the column's first
// to last observation. Buckets without observations are null.
func ResampleColumns(f domain.Frame) map[domain.Column]domain.Series {
	out := make(map[domain.Column]domain.Series, len(f.Columns))
	for _, c := range f.Columns {
		out[c] = resampleHourly(f.Column(c))
	}
	return out
}

func resampleHourly(s domain.Series) domain.Series {
	sums := map[time.Time]float64{}
	counts := map[time.Time]int{}
	var first, last time.Time
	for i, ts := range s.Index {
		v := s.Values[i]
		if domain.IsNull(v) {
			continue
		}
		h := ts.Truncate(time.Hour)
		if len(counts) == 0 || h.Before(first) {
			first = h
		}
		if len(counts) == 0 || h.After(last) {
			last = h
		}
		sums[h] += v
		counts[h]++
	}
	if len(counts) == 0 {
		return domain.Series{}
	}

	var out domain.Series
	for h := first; !h.After(last); h = h.Add(time.Hour) {
		out.Index = append(out.Index, h)
		if n := counts[h]; n > 0 {
			out.Values = append(out.Values, sums[h]/float64(n))
		} else {
			out.Values = append(out.Values, domain.Null)
		}
	}
	return out
}

// Rejoin outer-joins the per-column series on a strict hourly index spanning
// all of them. Columns without any observation are kept as all-null. The
// index has exactly one row per hour, so the result holds no duplicate rows.
func Rejoin(series map[domain.Column]domain.Series, cols []domain.Column) domain.Frame {
	var first, last time.Time
	found := false
	for _, c := range cols {
		s := series[c]
		if s.Len() == 0 {
			continue
		}
		if !found || s.Index[0].Before(first) {
			first = s.Index[0]
		}
		if !found || s.Index[s.Len()-1].After(last) {
			last = s.Index[s.Len()-1]
		}
		found = true
	}
	if !found {
		return domain.NewFrame(nil, cols)
	}

	var index []time.Time
	for h := first; !h.After(last); h = h.Add(time.Hour) {
		index = append(index, h)
	}
	out := domain.NewFrame(index, cols)
	for _, c := range cols {
		s := series[c]
		for i, ts := range s.Index {
			out.Data[c][int(ts.Sub(first)/time.Hour)] = s.Values[i]
		}
	}
	return out
}

// Interpolate fills interior null runs of at most limit rows by linear
// interpolation weighted by time. Longer runs and leading or trailing nulls
// are left null. Returns the number of values filled.
func Interpolate(f domain.Frame, limit int) (domain.Frame, int) {
	out := f.Clone()
	if limit <= 0 {
		return out, 0
	}
	filled := 0
	for _, c := range out.Columns {
		vals := out.Data[c]
		prev := -1
		for i, v := range vals {
			if domain.IsNull(v) {
				continue
			}
			if prev >= 0 && i-prev-1 > 0 && i-prev-1 <= limit {
				t0, t1 := out.Index[prev], out.Index[i]
				v0, v1 := vals[prev], v
				span := t1.Sub(t0).Seconds()
				for k := prev + 1; k < i; k++ {
					w := out.Index[k].Sub(t0).Seconds() / span
					vals[k] = v0 + (v1-v0)*w
					filled++
				}
			}
			prev = i
		}
	}
	return out, filled
}

// Reresample converts the hourly frame to freq. Hourly requests return the
// frame unchanged. Finer frequencies place a grid anchored at midnight and
// interpolate between neighbouring hourly values; coarser ones average each
// bucket, ignoring nulls.
func Reresample(f domain.Frame, freq domain.Frequency) domain.Frame {
	if freq.IsHourly() || f.Len() == 0 {
		return f
	}
	if freq.FinerThan(time.Hour) {
		return upsample(f, freq)
	}
	return downsample(f, freq)
}

func upsample(f domain.Frame, freq domain.Frequency) domain.Frame {
	origin := f.Index[0]
	last := f.Index[f.Len()-1]
	var index []time.Time
	for t := freq.Label(origin, origin); !t.After(last); t = freq.Next(t) {
		index = append(index, t)
	}

	out := domain.NewFrame(index, f.Columns)
	for i, t := range index {
		h0 := t.Truncate(time.Hour)
		p0 := int(h0.Sub(origin) / time.Hour)
		if h0.Before(origin) || p0 >= f.Len() {
			continue
		}
		for _, c := range f.Columns {
			src := f.Data[c]
			if t.Equal(h0) {
				out.Data[c][i] = src[p0]
				continue
			}
			if p0+1 >= f.Len() || domain.IsNull(src[p0]) || domain.IsNull(src[p0+1]) {
				continue
			}
			w := t.Sub(h0).Seconds() / time.Hour.Seconds()
			out.Data[c][i] = src[p0] + (src[p0+1]-src[p0])*w
		}
	}
	return out
}

func downsample(f domain.Frame, freq domain.Frequency) domain.Frame {
	origin := f.Index[0]
	lastLabel := freq.Label(f.Index[f.Len()-1], origin)
	var index []time.Time
	pos := map[time.Time]int{}
	for t := freq.Label(origin, origin); !t.After(lastLabel); t = freq.Next(t) {
		pos[t] = len(index)
		index = append(index, t)
	}

	out := domain.NewFrame(index, f.Columns)
	for _, c := range f.Columns {
		sums := make([]float64, len(index))
		counts := make([]int, len(index))
		for i, v := range f.Data[c] {
			if domain.IsNull(v) {
				continue
			}
			p, ok := pos[freq.Label(f.Index[i], origin)]
			if !ok {
				continue
			}
			sums[p] += v
			counts[p]++
		}
		for p := range index {
			if counts[p] > 0 {
				out.Data[c][p] = sums[p] / float64(counts[p])
			}
		}
	}
	return out
}

// Round rounds every value to one decimal place.
func Round(f domain.Frame) domain.Frame {
	out := f.Clone()
	for _, c := range out.Columns {
		for i, v := range out.Data[c] {
			if !domain.IsNull(v) {
				out.Data[c][i] = math.Round(v*10) / 10
			}
		}
	}
	return out
}

// AttachSunTimes reindexes a date mapping onto index, carrying each date's
// value forward until the next known date. With fewer than two dates the
// column is all null.
func AttachSunTimes(index []time.Time, byDate map[time.Time]time.Time) []time.Time {
	out := make([]time.Time, len(index))
	if len(byDate) < 2 {
		return out
	}
	days := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for i, ts := range index {
		k := sort.Search(len(days), func(j int) bool { return days[j].After(ts) }) - 1
		if k >= 0 {
			out[i] = byDate[days[k]]
		}
	}
	return out
}

// FlagNoSourceData marks index entries that fall in the missing-hour set.
func FlagNoSourceData(index []time.Time, missing map[time.Time]struct{}) []bool {
	out := make([]bool, len(index))
	for i, ts := range index {
		_, out[i] = missing[ts]
	}
	return out
}
