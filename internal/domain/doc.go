// Package domain models practicum attendance verification.
//
// # Data Sources
//
// Two tabular inputs drive a run:
//
//   - a site coordinates file mapping each practicum site to its registered
//     latitude/longitude. Column names vary freely across spreadsheets
//     ("Site_Name", "Site Name", "Latitude (deg)", "Long"); columns are
//     resolved by fuzzy matching, with the header allowed on row 0 or row 1
//     because some files carry a title row first.
//   - a Qualtrics attendance export. Students submit a survey on site; the
//     export carries the submission timestamp (RecordedDate), the browser
//     geolocation (LocationLatitude/LocationLongitude), and the answers:
//     Q2 consent flag, Q2.1 student id, Q4 site name, Q5 logged hours.
//
// # Qualtrics Export Conventions
//
// Exports created with "use question labels" insert the question text as a
// data row; it is recognized by the literal "Location Latitude" in the
// latitude column and dropped. When the consent column is present only rows
// answering 1 count; an export without the column is treated as universal
// consent.
//
// # Verification Tiers
//
// Each record's reported position is compared to its site's registered
// coordinates using the haversine great-circle distance on a 6371 km
// spherical Earth:
//
//	within 100 m          Verified      (hours credited)
//	within 300 m          Review        (manual follow-up)
//	beyond 300 m          Out of Range
//	distance unavailable  No Location/No Site
//
// Distance is unavailable when the site name is not in the registry or the
// export carries no coordinates (student denied browser geolocation).
// Only Verified records credit hours; missing logged hours credit as 0.
//
// # Determinism
//
// A run is a pure function of its two inputs: classified records carry no
// wall-clock fields and record IDs are SHA-256 hashes of row content, so
// re-running an upload reproduces byte-identical output.
package domain
