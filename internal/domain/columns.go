package domain

import "strings"

// Column is an LCD CSV header name.
type Column string

const (
	ColumnDate       Column = "DATE"
	ColumnStation    Column = "STATION"
	ColumnReportType Column = "REPORT_TYPE"
	ColumnSource     Column = "SOURCE"

	ColumnVisibility          Column = "HourlyVisibility"
	ColumnDryBulbTemperature  Column = "HourlyDryBulbTemperature"
	ColumnWindSpeed           Column = "HourlyWindSpeed"
	ColumnDewPointTemperature Column = "HourlyDewPointTemperature"
	ColumnRelativeHumidity    Column = "HourlyRelativeHumidity"
	ColumnWindDirection       Column = "HourlyWindDirection"
	ColumnStationPressure     Column = "HourlyStationPressure"
	ColumnWetBulbTemperature  Column = "HourlyWetBulbTemperature"
	ColumnAltimeterSetting    Column = "HourlyAltimeterSetting"
	ColumnPrecipitation       Column = "HourlyPrecipitation"
	ColumnPressureChange      Column = "HourlyPressureChange"
	ColumnWindGustSpeed       Column = "HourlyWindGustSpeed"

	ColumnSunrise Column = "Sunrise"
	ColumnSunset  Column = "Sunset"

	// ColumnNoSourceData flags output rows for hours the source never observed.
	ColumnNoSourceData = "No source data"
)

// measurementPrefix is stripped from measurement column names for display.
const measurementPrefix = "Hourly"

// MeasurementColumns lists the numeric hourly fields in output order.
var MeasurementColumns = []Column{
	ColumnVisibility,
	ColumnDryBulbTemperature,
	ColumnWindSpeed,
	ColumnDewPointTemperature,
	ColumnRelativeHumidity,
	ColumnWindDirection,
	ColumnStationPressure,
	ColumnWetBulbTemperature,
	ColumnAltimeterSetting,
	ColumnPrecipitation,
	ColumnPressureChange,
	ColumnWindGustSpeed,
}

// SunColumns lists the astronomical time-of-day fields.
var SunColumns = []Column{ColumnSunrise, ColumnSunset}

// BookkeepingColumns are dropped once the station has been resolved.
var BookkeepingColumns = []Column{ColumnStation, ColumnReportType, ColumnSource}

// DataColumns is the set of non-key columns kept from source files.
func DataColumns() []Column {
	cols := make([]Column, 0, len(MeasurementColumns)+len(SunColumns))
	cols = append(cols, MeasurementColumns...)
	return append(cols, SunColumns...)
}

// ProcessedColumns is the whitelist of columns read from any LCD file.
func ProcessedColumns() []Column {
	return append([]Column{ColumnDate, ColumnStation}, DataColumns()...)
}

// IsMeasurement reports whether c is one of the numeric hourly fields.
func IsMeasurement(c Column) bool {
	for _, m := range MeasurementColumns {
		if m == c {
			return true
		}
	}
	return false
}

// IsSun reports whether c is Sunrise or Sunset.
func IsSun(c Column) bool {
	return c == ColumnSunrise || c == ColumnSunset
}

// DisplayName strips the shared "Hourly" prefix, e.g.
// "HourlyDryBulbTemperature" -> "DryBulbTemperature".
func DisplayName(c Column) string {
	return strings.TrimPrefix(string(c), measurementPrefix)
}
