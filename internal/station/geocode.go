package station

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/noaa-lcd-hourly/internal/domain"
)

// EnrichWithGeocoding adds a place name for the station's coordinates.
// If geocoder is nil, the station is unresolved, or geocoding fails, the
// details are returned with GeoSource set accordingly (graceful degradation).
func EnrichWithGeocoding(ctx context.Context, details domain.StationDetails, geocoder domain.Geocoder, logger *slog.Logger) domain.StationDetails {
	if geocoder == nil || !details.Resolved() {
		return details
	}

	lat, errLat := strconv.ParseFloat(details.Lat, 64)
	lon, errLon := strconv.ParseFloat(details.Lon, 64)
	if errLat != nil || errLon != nil || (lat == 0 && lon == 0) {
		details.GeoSource = "original"
		return details
	}

	result, err := geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"station", details.Name,
			"lat", lat,
			"lon", lon,
			"error", err,
		)
		details.GeoSource = "failed"
		return details
	}
	if result.FormattedAddress == "" {
		details.GeoSource = "original"
		return details
	}
	details.FormattedAddress = result.FormattedAddress
	details.PlaceName = result.PlaceName
	details.GeoSource = "reverse"
	return details
}
