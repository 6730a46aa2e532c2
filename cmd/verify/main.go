// Command verify runs the geofence verification pipeline over local files,
// producing the same three-sheet workbook the HTTP service serves. Useful
// for one-off batches and for checking an export before the practicum
// coordinator uploads it.
//
// Usage:
//
//	go run ./cmd/verify \
//	  -sites Site_Coordinates.xlsx \
//	  -attendance qualtrics_export.csv \
//	  -out Practicum_Verified.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/practicum-geofence/internal/adapter/tabular"
	"github.com/couchcryptid/practicum-geofence/internal/adapter/xlsx"
	"github.com/couchcryptid/practicum-geofence/internal/domain"
	"github.com/couchcryptid/practicum-geofence/internal/observability"
	"github.com/couchcryptid/practicum-geofence/internal/pipeline"
)

func main() {
	sitesPath := flag.String("sites", "", "site coordinates file (.csv or .xlsx)")
	attendancePath := flag.String("attendance", "", "attendance export file (.csv or .xlsx)")
	outPath := flag.String("out", "", "output workbook path (default Practicum_Verified_<date>.xlsx)")
	verifiedRadius := flag.Float64("verified-radius", domain.DefaultVerifiedRadiusM, "Verified tier radius in meters")
	reviewRadius := flag.Float64("review-radius", domain.DefaultReviewRadiusM, "Review tier radius in meters")
	flag.Parse()

	if *sitesPath == "" || *attendancePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*sitesPath, *attendancePath, *outPath, *verifiedRadius, *reviewRadius); code != 0 {
		os.Exit(code)
	}
}

func run(sitesPath, attendancePath, outPath string, verifiedRadius, reviewRadius float64) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	registry, err := loadRegistry(sitesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	fmt.Printf("Sites loaded: %d\n", len(registry))

	rows, err := loadTable(attendancePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	pipe := pipeline.New(
		domain.NewNormalizer(domain.DefaultFieldMap()),
		nil,
		logger,
		observability.NewMetrics(),
		verifiedRadius,
		reviewRadius,
	)

	result, err := pipe.Run(context.Background(), rows, registry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	printSummary(result)

	workbook, err := xlsx.BuildWorkbook(result.Log, result.Students, result.Sites)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: build workbook: %v\n", err)
		return 1
	}

	if outPath == "" {
		date := clockwork.NewRealClock().Now().UTC().Format(time.DateOnly)
		outPath = fmt.Sprintf("Practicum_Verified_%s.xlsx", date)
	}
	if err := os.WriteFile(outPath, workbook, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: write %s: %v\n", outPath, err)
		return 1
	}
	fmt.Printf("\nWorkbook written to %s (%d bytes)\n", outPath, len(workbook))
	return 0
}

func printSummary(result pipeline.Result) {
	counts := make(map[domain.Status]int)
	for _, rec := range result.Log {
		counts[rec.Status]++
	}

	fmt.Printf("\nRecords: %d", len(result.Log))
	if result.Dropped.HeaderEcho > 0 || result.Dropped.NoConsent > 0 {
		fmt.Printf(" (dropped: %d header echo, %d no consent)", result.Dropped.HeaderEcho, result.Dropped.NoConsent)
	}
	fmt.Println()

	for _, status := range []domain.Status{
		domain.StatusVerified, domain.StatusReview, domain.StatusOutOfRange, domain.StatusNoLocation,
	} {
		fmt.Printf("  %-20s %d\n", status, counts[status])
	}

	fmt.Printf("\nStudents: %d, sites: %d\n", len(result.Students), len(result.Sites))

	if len(result.Review) > 0 {
		fmt.Println("\nStudents with entries flagged for review:")
		for _, r := range result.Review {
			fmt.Printf("  %-20s %d of %d entries\n", r.StudentID, r.ReviewCount, r.TotalEntries)
		}
	}
}

func loadRegistry(path string) (domain.Registry, error) {
	rows, err := loadTable(path)
	if err != nil {
		return nil, err
	}
	return domain.ParseRegistry(rows)
}

func loadTable(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return tabular.ReadTable(path, data)
}
