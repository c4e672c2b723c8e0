package domain

import "fmt"

// Unknown is the placeholder for every station field when lookup fails.
const Unknown = "Unknown"

// googleMapsURL renders a map search for a coordinate pair.
const googleMapsURL = "https://maps.google.com/?q=%s,%s"

// StationDetails describes a weather station from the ISD history table.
// Values are kept as the table's text; a failed lookup yields Unknown in
// every field.
type StationDetails struct {
	USAF      string `yaml:"usaf" json:"usaf"`
	WBAN      string `yaml:"wban" json:"wban"`
	Name      string `yaml:"station_name" json:"station_name"`
	Country   string `yaml:"country" json:"country"`
	State     string `yaml:"state" json:"state"`
	Call      string `yaml:"call" json:"call"`
	Lat       string `yaml:"lat" json:"lat"`
	Lon       string `yaml:"lon" json:"lon"`
	Elevation string `yaml:"elevation_m" json:"elevation_m"`
	Begin     string `yaml:"begin" json:"begin"`
	End       string `yaml:"end" json:"end"`

	// MapURL is derived from Lat/Lon when they resolved.
	MapURL string `yaml:"google_map,omitempty" json:"google_map,omitempty"`

	// Geocoding enrichment fields.
	FormattedAddress string `yaml:"formatted_address,omitempty" json:"formatted_address,omitempty"`
	PlaceName        string `yaml:"place_name,omitempty" json:"place_name,omitempty"`
	GeoSource        string `yaml:"geo_source,omitempty" json:"geo_source,omitempty"` // "reverse", "original", "failed"
}

// UnknownStation returns the placeholder record used on lookup misses.
func UnknownStation() StationDetails {
	return StationDetails{
		USAF: Unknown, WBAN: Unknown, Name: Unknown, Country: Unknown,
		State: Unknown, Call: Unknown, Lat: Unknown, Lon: Unknown,
		Elevation: Unknown, Begin: Unknown, End: Unknown,
	}
}

// Resolved reports whether the record came from the reference table.
func (s StationDetails) Resolved() bool {
	return s.Lat != Unknown
}

// WithMapURL attaches a map link when the coordinates resolved.
func (s StationDetails) WithMapURL() StationDetails {
	if s.Lat == Unknown || s.Lat == "" {
		return s
	}
	s.MapURL = fmt.Sprintf(googleMapsURL, s.Lat, s.Lon)
	return s
}

// DisplayFields returns label/value pairs for console output. Service
// lifetime dates are left out because they read like the data range.
func (s StationDetails) DisplayFields() [][2]string {
	fields := [][2]string{
		{"USAF", s.USAF},
		{"WBAN", s.WBAN},
		{"STATION NAME", s.Name},
		{"CTRY", s.Country},
		{"STATE", s.State},
		{"CALL", s.Call},
		{"LAT", s.Lat},
		{"LON", s.Lon},
		{"ELEV(M)", s.Elevation},
	}
	if s.MapURL != "" {
		fields = append(fields, [2]string{"GOOGLE MAP", s.MapURL})
	}
	if s.FormattedAddress != "" {
		fields = append(fields, [2]string{"ADDRESS", s.FormattedAddress})
	}
	return fields
}
