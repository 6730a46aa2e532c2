// Command genmock writes a matched pair of mock input files: a site
// coordinates sheet and a Qualtrics-style attendance export whose rows sit
// at pinned distances from their sites. The generated pair exercises every
// verification tier plus the consent and header-echo drop rules, so it
// doubles as demo data and as a quick end-to-end check for cmd/verify.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
)

// Offsetting latitude by d/R radians puts a point exactly d meters away
// under the haversine distance, regardless of the site's location.
const earthRadiusM = 6371000.0

func metersNorth(lat, meters float64) float64 {
	return lat + meters/earthRadiusM*180/math.Pi
}

func main() {
	outDir := flag.String("out-dir", "data/mock", "directory for generated CSV files")
	flag.Parse()

	if err := run(*outDir); err != nil {
		log.Fatal(err)
	}
}

func run(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	sites := [][]string{
		{"Site Name", "Latitude", "Longitude"},
		{"Mercy General Hospital", "30.271129", "-97.743700"},
		{"Eastside Clinic", "30.251800", "-97.718900"},
		{"Northgate Family Practice", "30.351400", "-97.731200"},
	}

	hospital := 30.271129
	clinic := 30.251800

	attendance := [][]string{
		{"RecordedDate", "Q2", "Q2.1", "Q4", "Q5", "LocationLatitude", "LocationLongitude"},
		// Header-echo row Qualtrics inserts when exporting with labels.
		{"Recorded Date", "Consent", "Student ID", "Site", "Hours", "Location Latitude", "Location Longitude"},
		// On-site: 50 m from the registered coordinates.
		{"2024-04-26 08:05:00", "1", "S1001", "Mercy General Hospital", "4.0", coord(metersNorth(hospital, 50)), "-97.743700"},
		// Near the fence: 150 m, lands in Review.
		{"2024-04-26 09:30:00", "1", "S1002", "Mercy General Hospital", "3.5", coord(metersNorth(hospital, 150)), "-97.743700"},
		// Well outside: 400 m.
		{"2024-04-26 10:15:00", "1", "S1003", "Eastside Clinic", "6.0", coord(metersNorth(clinic, 400)), "-97.718900"},
		// Geolocation denied in the browser.
		{"2024-04-26 11:00:00", "1", "S1001", "Eastside Clinic", "2.0", "", ""},
		// Site name not in the registry.
		{"2024-04-26 12:45:00", "1", "S1004", "Downtown Shelter", "5.0", "30.265000", "-97.740000"},
		// Consent declined; the normalizer must drop this row.
		{"2024-04-26 13:30:00", "0", "S1005", "Mercy General Hospital", "8.0", coord(metersNorth(hospital, 10)), "-97.743700"},
	}

	if err := writeCSV(filepath.Join(outDir, "site_coordinates.csv"), sites); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(outDir, "attendance_export.csv"), attendance); err != nil {
		return err
	}

	log.Printf("wrote %d sites, %d attendance rows to %s", len(sites)-1, len(attendance)-2, outDir)
	return nil
}

func coord(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
