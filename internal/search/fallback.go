package search

import (
	"sort"
	"strings"

	"path2prevention/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

var fallbackPrograms = []model.ProgramRow{
	{
		ID:               1,
		OrganizationName: "Atlanta Diabetes Prevention Center",
		AddressLine1:     "123 Peachtree St",
		City:             "Atlanta",
		State:            "GA",
		ZipCode:          "30309",
		Latitude:         floatPtr(33.7490),
		Longitude:        floatPtr(-84.3880),
		DeliveryMode:     model.DeliveryInPerson,
	},
	{
		ID:               2,
		OrganizationName: "Virtual Health Solutions",
		AddressLine1:     "Online Platform",
		City:             "Remote",
		State:            "GA",
		ZipCode:          "00000",
		DeliveryMode:     model.DeliveryVirtualLive,
	},
	{
		ID:               3,
		OrganizationName: "Community Wellness Network",
		AddressLine1:     "456 River St",
		City:             "Savannah",
		State:            "GA",
		ZipCode:          "31401",
		Latitude:         floatPtr(32.0809),
		Longitude:        floatPtr(-81.0912),
		DeliveryMode:     model.DeliveryHybrid,
	},
	{
		ID:               4,
		OrganizationName: "Flexible Learning Health",
		AddressLine1:     "Self-Paced Online",
		City:             "Remote",
		State:            "FL",
		ZipCode:          "00000",
		DeliveryMode:     model.DeliveryVirtualSelfPaced,
	},
}

// FallbackPrograms returns a fresh copy of the static catalogue served when
// the database cannot be reached, ordered by organization name.
func FallbackPrograms() []model.ProgramRow {
	out := make([]model.ProgramRow, len(fallbackPrograms))
	copy(out, fallbackPrograms)
	return SortByName(out)
}

// FilterFallback applies the same predicates as the database search.
func FilterFallback(f Filter) []model.ProgramRow {
	f = f.Normalize()
	out := make([]model.ProgramRow, 0, len(fallbackPrograms))
	if f.DeliveryMode != "" {
		modes := NormalizeDeliveryMode(f.DeliveryMode)
		for _, row := range fallbackPrograms {
			if MatchesDeliveryModes(row, modes) {
				out = append(out, row)
			}
		}
		return SortByName(out)
	}
	for _, row := range fallbackPrograms {
		if MatchesLocation(row, f) {
			out = append(out, row)
		}
	}
	return SortByName(out)
}

func FallbackByName(name string) []model.ProgramRow {
	needle := strings.ToLower(strings.TrimSpace(name))
	out := make([]model.ProgramRow, 0)
	for _, row := range fallbackPrograms {
		if strings.Contains(strings.ToLower(row.OrganizationName), needle) {
			out = append(out, row)
		}
	}
	return SortByName(out)
}

func FallbackByID(id uint) (model.ProgramRow, bool) {
	for _, row := range fallbackPrograms {
		if row.ID == id {
			return row, true
		}
	}
	return model.ProgramRow{}, false
}

// SortByName orders rows by organization name in place and returns them.
func SortByName(rows []model.ProgramRow) []model.ProgramRow {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].OrganizationName < rows[j].OrganizationName
	})
	return rows
}
