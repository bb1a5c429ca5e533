// Package domain models hourly weather forecasts and the comfort ranking
// derived from them.
//
// # Data Source
//
// Forecasts come from the Yandex Weather API v2 forecast endpoint. Each
// response carries a "forecasts" array with one entry per calendar day; each
// day carries an "hours" array of hourly points. Only the fields read here are
// modelled, everything else in the document is ignored:
//
//	forecasts[].date               ISO calendar date, "2024-05-26"
//	forecasts[].hours[].hour       hour of day 0–23, sent as a quoted string
//	forecasts[].hours[].temp       air temperature, °C
//	forecasts[].hours[].condition  condition label, e.g. "partly-cloudy"
//
// Documents are decoded into typed records and validated at the boundary by
// [ParseForecast]; a missing or mistyped field is a [FormatError].
//
// # Geocoding
//
// Free-text addresses are resolved through the Yandex Geocoder. The fields
// read are the found-count and the position of each candidate:
//
//	response.GeoObjectCollection.metaDataProperty.GeocoderResponseMetaData.found
//	response.GeoObjectCollection.featureMember[].GeoObject.Point.pos  "lon lat"
//
// Note the longitude-first order of "pos". See [GeoResponse.FirstCandidate].
//
// # Comfort Metrics
//
// A day contributes only the hours inside the target window (09:00–19:00
// inclusive by default). Per day:
//
//	average temperature  = mean(temp of window hours)
//	comfortable hours    = count(window hours with a pleasant condition)
//
// Pleasant conditions are matched exactly against the label: clear,
// partly-cloudy, cloudy, overcast. Days with no window hours are dropped, and
// a location left with no days is excluded from ranking altogether.
//
// # Ranking
//
// Locations are ordered by average temperature, then average comfortable
// hours, both descending. The sort is stable so equal locations keep their
// input order, and ranks are dense and 1-based. See [Rank].
//
// # Report
//
// The report is a sparse matrix: one column per date in the union of all
// locations' days, two rows per location (temperature, comfortable hours).
// A location without data for a date gets an empty cell. See [ReportHeader]
// and [LocationRows].
package domain
