package domain

import (
	"strings"
	"time"
)

// RawObservation is one parsed LCD row restricted to whitelisted columns.
// Fields holds the raw cell text keyed by column; a missing key or an empty
// string is null.
type RawObservation struct {
	Time    time.Time
	Station string
	Fields  map[Column]string
}

// Value returns the trimmed raw text for c and whether it is non-null.
func (o RawObservation) Value(c Column) (string, bool) {
	v, ok := o.Fields[c]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// key identifies the full row for exact-duplicate removal.
func (o RawObservation) key(cols []Column) string {
	var b strings.Builder
	b.WriteString(o.Time.Format(time.RFC3339Nano))
	b.WriteByte('\x1f')
	b.WriteString(o.Station)
	for _, c := range cols {
		b.WriteByte('\x1f')
		v, _ := o.Value(c)
		b.WriteString(v)
	}
	return b.String()
}

// UnifiedTable is the timestamp-sorted union of rows from one station/version
// file group. Columns is the union of data columns present in any source file.
// Rows may still share a timestamp with differing values.
type UnifiedTable struct {
	Columns []Column
	Rows    []RawObservation
	Sources []string
}

// Len returns the number of rows.
func (t UnifiedTable) Len() int { return len(t.Rows) }

// Start returns the first timestamp, or zero time for an empty table.
func (t UnifiedTable) Start() time.Time {
	if len(t.Rows) == 0 {
		return time.Time{}
	}
	return t.Rows[0].Time
}

// End returns the last timestamp, or zero time for an empty table.
func (t UnifiedTable) End() time.Time {
	if len(t.Rows) == 0 {
		return time.Time{}
	}
	return t.Rows[len(t.Rows)-1].Time
}

// HasColumn reports whether c is among the table's columns.
func (t UnifiedTable) HasColumn(c Column) bool {
	for _, col := range t.Columns {
		if col == c {
			return true
		}
	}
	return false
}

// DropDuplicates removes rows that are identical across the timestamp, the
// station and every column, keeping the first occurrence.
func (t UnifiedTable) DropDuplicates() UnifiedTable {
	seen := make(map[string]struct{}, len(t.Rows))
	rows := make([]RawObservation, 0, len(t.Rows))
	for _, r := range t.Rows {
		k := r.key(t.Columns)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, r)
	}
	t.Rows = rows
	return t
}
