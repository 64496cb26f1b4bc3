package search

import "strings"

const IntentSearchPrograms = "search_programs"

type Preferences struct {
	DeliveryMode       string `json:"delivery_mode,omitempty"`
	Location           string `json:"location,omitempty"`
	CostSensitive      bool   `json:"cost_sensitive"`
	ScheduleFlexible   bool   `json:"schedule_flexible"`
	InsuranceImportant bool   `json:"insurance_important"`
	LanguagePreference string `json:"language_preference,omitempty"`
}

type IntentAnalysis struct {
	Intent         string      `json:"intent"`
	Preferences    Preferences `json:"preferences"`
	QuestionsToAsk []string    `json:"questions_to_ask"`
	Confidence     float64     `json:"confidence"`
}

var defaultQuestions = []string{
	"What type of program format would work best for you?",
	"Do you have any location preferences?",
	"Are there any specific requirements that are important to you?",
}

// AnalyzeKeywords is the rule-based intent analysis used whenever the LLM
// is unavailable or returns something unparseable.
func AnalyzeKeywords(query string) IntentAnalysis {
	q := strings.ToLower(query)
	analysis := IntentAnalysis{
		Intent:         IntentSearchPrograms,
		QuestionsToAsk: []string{},
		Confidence:     0.7,
	}

	switch {
	case containsAny(q, "virtual", "online", "remote"):
		analysis.Preferences.DeliveryMode = "virtual"
	case containsAny(q, "in-person", "face to face"):
		analysis.Preferences.DeliveryMode = "in-person"
	case containsAny(q, "hybrid", "combination"):
		analysis.Preferences.DeliveryMode = "hybrid"
	}

	if containsAny(q, "cost", "price", "afford", "cheap", "free") {
		analysis.Preferences.CostSensitive = true
		analysis.QuestionsToAsk = append(analysis.QuestionsToAsk, "What budget range works best for you?")
	}
	if containsAny(q, "near", "close", "location", "area", "city", "local") {
		analysis.QuestionsToAsk = append(analysis.QuestionsToAsk, "What area or city would be most convenient for you?")
	}
	if containsAny(q, "schedule", "time", "flexible", "evening", "weekend") {
		analysis.Preferences.ScheduleFlexible = true
		analysis.QuestionsToAsk = append(analysis.QuestionsToAsk, "What days and times work best for your schedule?")
	}
	if len(analysis.QuestionsToAsk) == 0 {
		analysis.QuestionsToAsk = append(analysis.QuestionsToAsk, defaultQuestions...)
	}
	return analysis
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
