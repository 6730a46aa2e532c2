package domain

// Registry maps a trimmed site name to its registered coordinates. It is
// built once per run and never mutated afterwards, so a single registry is
// safe to share across concurrent pipeline runs.
type Registry map[string]Coordinate

// registryMatchers identify the three site-file columns. Exact intent first
// ("site" and "name" together), then any column mentioning "site"; latitude
// and longitude match on prefix keywords so "Latitude (deg)", "Lat", "Long"
// all resolve.
var registryMatchers = []columnMatcher{
	{Field: "Site_Name", Match: containsAll("site", "name")},
	{Field: "Site_Name", Match: containsAll("site")},
	{Field: "Latitude", Match: containsAll("lat")},
	{Field: "Longitude", Match: containsAll("lon")},
}

// NewStaticRegistry builds a registry from a fixed table, for hosts that
// compile in their site list instead of uploading one.
func NewStaticRegistry(sites map[string]Coordinate) Registry {
	reg := make(Registry, len(sites))
	for name, coord := range sites {
		reg[name] = coord
	}
	return reg
}

// ParseRegistry builds a registry from a raw site coordinates table.
//
// The header may sit on row 0 or row 1 (some exports put a title row first);
// both are probed and the first row whose headers resolve all three columns
// is used. Rows missing a site name or with non-numeric coordinates are
// skipped. Duplicate site names: the last row wins.
//
// Fails with *SchemaError when no probe resolves the columns and with
// *EmptyRegistryError when nothing usable remains after filtering.
func ParseRegistry(rows [][]string) (Registry, error) {
	const source = "site coordinates file"

	var (
		cols      map[string]int
		dataStart int
		lastErr   *SchemaError
	)
	for headerRow := 0; headerRow <= 1 && headerRow < len(rows); headerRow++ {
		resolved, missing := resolveColumns(rows[headerRow], registryMatchers)
		if len(missing) == 0 {
			cols = resolved
			dataStart = headerRow + 1
			lastErr = nil
			break
		}
		if lastErr == nil {
			lastErr = &SchemaError{Source: source, Missing: missing, Headers: trimAll(rows[headerRow])}
		}
	}
	if cols == nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, &SchemaError{Source: source, Missing: []string{"Site_Name", "Latitude", "Longitude"}}
	}

	reg := make(Registry)
	for _, row := range rows[dataStart:] {
		name := cellValue(row, cols["Site_Name"])
		if name == "" {
			continue
		}
		lat := parseFloatOrNil(cellValue(row, cols["Latitude"]))
		lon := parseFloatOrNil(cellValue(row, cols["Longitude"]))
		if lat == nil || lon == nil {
			continue
		}
		reg[name] = Coordinate{Lat: *lat, Lon: *lon}
	}

	if len(reg) == 0 {
		return nil, &EmptyRegistryError{Source: source}
	}
	return reg, nil
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i := range row {
		out[i] = cellValue(row, i)
	}
	return out
}
