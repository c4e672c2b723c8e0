// Package domain models NOAA Local Climatological Data (LCD) hourly observations.
//
// # Data Source
//
// LCD files are downloaded manually from NCEI:
// https://www.ncei.noaa.gov/access/search/data-search/local-climatological-data-v2
// (current) or https://www.ncdc.noaa.gov/cdo-web/datatools/lcd (legacy). The
// two delivery channels produce two file layouts:
//
//	Version 1: "<order number>.csv", e.g. "3876540.csv". One file per order,
//	           possibly spanning many years.
//	Version 2: "LCD_<station>_<year>.csv", e.g. "LCD_USW00014939_2023.csv".
//	           One file per station per calendar year.
//
// # LCD Data Conventions
//
// Timestamp ("DATE" column):
//
//	ISO-8601 local standard time without zone, e.g. "2023-01-01T00:51:00".
//	Routine hourly observations land a few minutes before the hour (":51",
//	":53"); special observations appear at arbitrary minutes.
//	Version 1 files carry a daily summary row at "23:59" whose hourly columns
//	are empty. It exists only to hold the day's Sunrise/Sunset values.
//
// Station ("STATION" column):
//
//	11 characters. Version 1: USAF (6) + WBAN (5), e.g. "72530094846".
//	Version 2: GHCN-style, e.g. "USW00014939". Characters [6:11] are the WBAN
//	identifier in both layouts; the last four characters approximate the
//	station call sign for non-US stations whose WBAN is "99999".
//
// Measurements ("Hourly*" columns):
//
//	Numeric strings. Suffixes and flags such as "s" (suspect), "T" (trace
//	precipitation), "M" or "*" (missing) are not numbers and are treated as
//	null during cleaning.
//
// Sunrise/Sunset:
//
//	Local time of day as "HHMM" (version 1, e.g. "715") or "HH:MM"
//	(version 2). Populated once per day.
package domain
