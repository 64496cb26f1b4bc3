package search

import (
	"strings"

	"path2prevention/internal/model"
)

// NormalizeDeliveryMode maps free text onto the stored delivery modes.
// Canonical values and unknown input are matched literally.
func NormalizeDeliveryMode(input string) []string {
	mode := strings.ToLower(strings.TrimSpace(input))
	switch mode {
	case "":
		return nil
	case "virtual", "remote", "online":
		return []string{model.DeliveryVirtualLive, model.DeliveryVirtualSelfPaced}
	case "in person", "in-person":
		return []string{model.DeliveryInPerson}
	case "hybrid":
		return []string{model.DeliveryHybrid}
	}
	return []string{mode}
}

func MatchesDeliveryModes(row model.ProgramRow, modes []string) bool {
	for _, m := range modes {
		if row.DeliveryMode == m {
			return true
		}
	}
	return false
}
