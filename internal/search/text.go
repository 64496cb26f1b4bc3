package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"path2prevention/internal/model"
)

// FormatMoney renders a cost without trailing zeros ("75", "49.99").
func FormatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildSearchText concatenates the descriptive fields of a program into the
// text that is embedded and full-text indexed.
func BuildSearchText(row model.ProgramRow) string {
	status := row.CDCRecognitionStatus
	if status == "" {
		status = "Unknown"
	}
	language := row.Language
	if language == "" {
		language = "English"
	}

	parts := []string{
		row.OrganizationName,
		row.Description,
		row.DeliveryMode + " program",
		fmt.Sprintf("Located in %s, %s", row.City, row.State),
		"CDC recognition: " + status,
		language,
	}
	if row.Cost != nil {
		parts = append(parts, "Cost: $"+FormatMoney(*row.Cost))
	}
	if row.DurationWeeks != nil {
		parts = append(parts, fmt.Sprintf("Duration: %d weeks", *row.DurationWeeks))
	}
	if row.EnrollmentStatus == model.EnrollmentOpen {
		parts = append(parts, "Currently accepting new participants")
	}
	if row.MDPPSupplier {
		parts = append(parts, "Medicare Diabetes Prevention Program supplier")
	}
	parts = append(parts, row.ClassSchedule)

	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ". ")
}

// TextOverlapSearch ranks programs by keyword overlap with the query. It is the
// stand-in ranking when no embedding can be produced. The score is stored in
// Similarity.
func TextOverlapSearch(query string, rows []model.ProgramRow, limit int) []model.ProgramRow {
	words := make([]string, 0)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	if len(words) == 0 || limit <= 0 {
		return []model.ProgramRow{}
	}

	scored := make([]model.ProgramRow, 0, len(rows))
	for _, row := range rows {
		text := strings.ToLower(BuildSearchText(row))
		org := strings.ToLower(row.OrganizationName)
		desc := strings.ToLower(row.Description)
		mode := strings.ToLower(row.DeliveryMode)

		score := 0.0
		for _, w := range words {
			if !strings.Contains(text, w) {
				continue
			}
			score++
			if strings.Contains(org, w) {
				score += 2
			}
			if strings.Contains(desc, w) {
				score++
			}
			if strings.Contains(mode, w) {
				score += 3
			}
		}
		if score <= 0 {
			continue
		}
		normalized := score / float64(len(words))
		row.Similarity = &normalized
		scored = append(scored, row)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].Similarity > *scored[j].Similarity
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
