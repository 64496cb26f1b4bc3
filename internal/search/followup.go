package search

import (
	"fmt"
	"strings"

	"path2prevention/internal/model"
)

// FollowUpQuestions suggests clarifying questions based on how varied the
// results are, skipping dimensions the user already expressed a preference on.
func FollowUpQuestions(results []model.ProgramRow, prefs Preferences) []string {
	questions := make([]string, 0, 4)
	if len(results) == 0 {
		return questions
	}

	modes := distinctStrings(results, func(r model.ProgramRow) string { return r.DeliveryMode })
	if len(modes) > 1 && prefs.DeliveryMode == "" {
		questions = append(questions, fmt.Sprintf(
			"I found programs in different formats: %s. Which format appeals to you most?",
			strings.Join(modes, ", ")))
	}

	costs := make(map[float64]bool)
	var minCost, maxCost float64
	for _, r := range results {
		if r.Cost == nil {
			continue
		}
		c := *r.Cost
		if len(costs) == 0 || c < minCost {
			minCost = c
		}
		if len(costs) == 0 || c > maxCost {
			maxCost = c
		}
		costs[c] = true
	}
	if len(costs) > 1 && !prefs.CostSensitive {
		questions = append(questions, fmt.Sprintf(
			"Program costs range from $%s to $%s. Is cost a major factor in your decision?",
			FormatMoney(minCost), FormatMoney(maxCost)))
	}

	locations := distinctStrings(results, func(r model.ProgramRow) string {
		if r.City == "" {
			return ""
		}
		return r.City + ", " + r.State
	})
	if len(locations) > 1 && prefs.Location == "" {
		shown := locations
		if len(shown) > 2 {
			shown = shown[:2]
		}
		suffix := ""
		if len(locations) > 2 {
			suffix = " and other locations"
		}
		questions = append(questions, fmt.Sprintf(
			"I found programs in %s%s. Which area works best for you?",
			strings.Join(shown, " and "), suffix))
	}

	durations := make(map[int]bool)
	var minWeeks, maxWeeks int
	for _, r := range results {
		if r.DurationWeeks == nil {
			continue
		}
		w := *r.DurationWeeks
		if len(durations) == 0 || w < minWeeks {
			minWeeks = w
		}
		if len(durations) == 0 || w > maxWeeks {
			maxWeeks = w
		}
		durations[w] = true
	}
	if len(durations) > 1 {
		questions = append(questions, fmt.Sprintf(
			"Programs vary in length from %d to %d weeks. Do you prefer a shorter or longer program?",
			minWeeks, maxWeeks))
	}
	return questions
}

func distinctStrings(rows []model.ProgramRow, key func(model.ProgramRow) string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, r := range rows {
		k := key(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
