package station

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// ReferenceTable is the read-only ISD station history, one record per
// station service period.
type ReferenceTable struct {
	records []domain.StationDetails
}

// NewReferenceTable builds a table from records, mostly for tests.
func NewReferenceTable(records []domain.StationDetails) *ReferenceTable {
	return &ReferenceTable{records: append([]domain.StationDetails(nil), records...)}
}

// Len returns the number of records.
func (t *ReferenceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Select returns the records matching pred in table order.
func (t *ReferenceTable) Select(pred func(domain.StationDetails) bool) []domain.StationDetails {
	if t == nil {
		return nil
	}
	var out []domain.StationDetails
	for _, r := range t.records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

const bom = "\ufeff"

// headerFields maps isd-history.csv headers to record fields. "CALL" and
// "ICAO" are both accepted for the call sign.
var headerFields = map[string]func(*domain.StationDetails, string){
	"USAF":         func(s *domain.StationDetails, v string) { s.USAF = v },
	"WBAN":         func(s *domain.StationDetails, v string) { s.WBAN = v },
	"STATION NAME": func(s *domain.StationDetails, v string) { s.Name = v },
	"CTRY":         func(s *domain.StationDetails, v string) { s.Country = v },
	"STATE":        func(s *domain.StationDetails, v string) { s.State = v },
	"CALL":         func(s *domain.StationDetails, v string) { s.Call = v },
	"ICAO":         func(s *domain.StationDetails, v string) { s.Call = v },
	"LAT":          func(s *domain.StationDetails, v string) { s.Lat = v },
	"LON":          func(s *domain.StationDetails, v string) { s.Lon = v },
	"ELEV(M)":      func(s *domain.StationDetails, v string) { s.Elevation = v },
	"BEGIN":        func(s *domain.StationDetails, v string) { s.Begin = v },
	"END":          func(s *domain.StationDetails, v string) { s.End = v },
}

// LoadReferenceTable reads an isd-history.csv file. Identifier columns are
// kept as text so leading zeros in WBAN survive.
func LoadReferenceTable(path string) (*ReferenceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station table: %w", err)
	}
	defer f.Close()
	return ReadReferenceTable(f)
}

// ReadReferenceTable parses isd-history CSV content from r.
func ReadReferenceTable(r io.Reader) (*ReferenceTable, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && string(head) == bom {
		_, _ = br.Discard(len(bom))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read station table header: %w", err)
	}
	setters := make([]func(*domain.StationDetails, string), len(header))
	hasWBAN := false
	for i, h := range header {
		h = strings.ToUpper(strings.TrimSpace(h))
		setters[i] = headerFields[h]
		if h == "WBAN" {
			hasWBAN = true
		}
	}
	if !hasWBAN {
		return nil, errors.New("station table has no WBAN column")
	}

	t := &ReferenceTable{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read station table: %w", err)
		}
		var s domain.StationDetails
		for i, v := range rec {
			if i < len(setters) && setters[i] != nil {
				setters[i](&s, strings.TrimSpace(v))
			}
		}
		t.records = append(t.records, s)
	}
	return t, nil
}
