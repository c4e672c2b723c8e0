package station

import (
	"log/slog"
	"sort"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// noWBAN is the ISD placeholder carried by stations without a WBAN number.
const noWBAN = "99999"

// Strategy is one way of finding a station in the reference table.
type Strategy struct {
	Name string
	// Key derives the lookup key from the LCD station identifier; an empty
	// key skips the strategy.
	Key func(stationID string) string
	// Match reports whether a reference record carries key.
	Match func(rec domain.StationDetails, key string) bool
}

// ByWBAN matches characters [6:11] of the LCD station id against WBAN.
var ByWBAN = Strategy{
	Name: "wban",
	Key: func(id string) string {
		if len(id) < 11 {
			return ""
		}
		key := id[6:11]
		if key == noWBAN {
			return ""
		}
		return key
	},
	Match: func(rec domain.StationDetails, key string) bool { return rec.WBAN == key },
}

// ByCall matches the last four characters of the LCD station id against
// the call sign.
var ByCall = Strategy{
	Name: "call",
	Key: func(id string) string {
		if len(id) < 4 {
			return ""
		}
		return id[len(id)-4:]
	},
	Match: func(rec domain.StationDetails, key string) bool { return rec.Call == key },
}

// DefaultStrategies is the lookup order used when none are given.
var DefaultStrategies = []Strategy{ByWBAN, ByCall}

// Resolver finds display details for an LCD station identifier.
type Resolver struct {
	table      *ReferenceTable
	strategies []Strategy
	logger     *slog.Logger
}

// NewResolver creates a Resolver. Strategies are tried in order and the
// first hit wins; with none given DefaultStrategies apply.
func NewResolver(table *ReferenceTable, logger *slog.Logger, strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	return &Resolver{table: table, strategies: strategies, logger: logger}
}

// Resolve looks up stationID. Among several matching records the one with
// the latest END date wins. A miss yields domain.UnknownStation.
func (r *Resolver) Resolve(stationID string) domain.StationDetails {
	for _, s := range r.strategies {
		key := s.Key(stationID)
		if key == "" {
			continue
		}
		matches := r.table.Select(func(rec domain.StationDetails) bool { return s.Match(rec, key) })
		if len(matches) == 0 {
			continue
		}
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].End > matches[j].End })
		r.logger.Debug("station resolved", "station", stationID, "strategy", s.Name, "key", key, "candidates", len(matches))
		return matches[0].WithMapURL()
	}
	r.logger.Warn("station not found in reference table", "station", stationID)
	return domain.UnknownStation()
}

// DominantStation returns the most frequent STATION value in the table.
// Ties go to the value encountered first.
func DominantStation(t domain.UnifiedTable) string {
	counts := map[string]int{}
	var order []string
	for _, row := range t.Rows {
		if row.Station == "" {
			continue
		}
		if _, seen := counts[row.Station]; !seen {
			order = append(order, row.Station)
		}
		counts[row.Station]++
	}
	best, bestN := "", 0
	for _, s := range order {
		if counts[s] > bestN {
			best, bestN = s, counts[s]
		}
	}
	return best
}
