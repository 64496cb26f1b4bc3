package chat

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	answerYesNo    = "yes_no"
	answerSpecific = "specific"

	contextAssessment   = "assessment"
	contextPrograms     = "programs"
	contextCost         = "cost"
	contextLocation     = "location"
	contextSchedule     = "schedule"
	contextDeliveryMode = "delivery_mode"
	contextInsurance    = "insurance"
	contextGeneral      = "general"
)

var questionMarkers = []string{
	"?", "would you like", "do you", "are you", "can you", "should i",
	"which", "what", "how", "when", "where",
}

var yesAnswers = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "sure": true, "okay": true, "ok": true, "y": true,
	"yes please": true, "yes i would": true, "yes i do": true, "yes i am": true,
	"that would be great": true, "sounds good": true, "i would like that": true,
	"absolutely": true, "definitely": true, "of course": true,
}

var noAnswers = map[string]bool{
	"no": true, "nope": true, "nah": true, "n": true, "no thanks": true, "no thank you": true,
	"not really": true, "not interested": true, "i don't think so": true,
	"maybe later": true, "not now": true, "not right now": true,
}

// questionResponse describes a message recognised as an answer to the bot's
// previous question.
type questionResponse struct {
	kind     string
	yes      bool
	specific specificAnswer
	context  string
}

type specificAnswer struct {
	kind         string
	deliveryMode string
	city         string
	state        string
	costAmount   int
	costLow      bool
}

var (
	cityStatePattern = regexp.MustCompile(`([a-zA-Z\s]+),?\s*([A-Z]{2})`)
	cityOnlyPattern  = regexp.MustCompile(`^([a-zA-Z\s]+)$`)
	costPattern      = regexp.MustCompile(`\$?(\d+)`)
)

// detectQuestionResponse only fires when the bot spoke last with something
// question-shaped and the session has more than the greeting.
func detectQuestionResponse(input string, s *Session) (questionResponse, bool) {
	if len(s.Messages) < 2 {
		return questionResponse{}, false
	}
	last, ok := s.lastBotMessage()
	if !ok {
		return questionResponse{}, false
	}

	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)
	botText := strings.ToLower(last.Text)
	if !containsAny(botText, questionMarkers...) {
		return questionResponse{}, false
	}

	qctx := questionContext(botText)
	switch {
	case yesAnswers[lower]:
		return questionResponse{kind: answerYesNo, yes: true, context: qctx}, true
	case noAnswers[lower]:
		return questionResponse{kind: answerYesNo, yes: false, context: qctx}, true
	}

	if answer, ok := detectSpecificAnswer(trimmed, botText); ok {
		return questionResponse{kind: answerSpecific, specific: answer, context: qctx}, true
	}
	return questionResponse{}, false
}

func questionContext(botText string) string {
	switch {
	case containsAny(botText, "assessment", "risk"):
		return contextAssessment
	case containsAny(botText, "program", "class"):
		return contextPrograms
	case containsAny(botText, "cost", "budget", "afford"):
		return contextCost
	case containsAny(botText, "location", "area", "city"):
		return contextLocation
	case containsAny(botText, "schedule", "time", "when"):
		return contextSchedule
	case containsAny(botText, "virtual", "online", "in-person"):
		return contextDeliveryMode
	case containsAny(botText, "insurance", "medicare", "medicaid"):
		return contextInsurance
	default:
		return contextGeneral
	}
}

// detectSpecificAnswer matches keywords against the lowercased answer; the
// location patterns run on the original casing so a state code survives.
func detectSpecificAnswer(input, botText string) (specificAnswer, bool) {
	lower := strings.ToLower(input)

	if containsAny(botText, "format", "delivery", "virtual", "in-person", "program") {
		switch {
		case containsAny(lower, "virtual", "online", "remote", "zoom", "video"):
			return specificAnswer{kind: contextDeliveryMode, deliveryMode: "virtual-live"}, true
		case containsAny(lower, "in-person", "face to face", "physical", "person", "location"):
			return specificAnswer{kind: contextDeliveryMode, deliveryMode: "in-person"}, true
		case containsAny(lower, "hybrid", "both", "combination", "mixed"):
			return specificAnswer{kind: contextDeliveryMode, deliveryMode: "hybrid"}, true
		}
	}

	if containsAny(botText, "location", "area", "city") {
		if m := cityStatePattern.FindStringSubmatch(input); m != nil {
			return specificAnswer{kind: contextLocation, city: strings.TrimSpace(m[1]), state: m[2]}, true
		}
		if m := cityOnlyPattern.FindStringSubmatch(input); m != nil && len(m[1]) > 2 {
			return specificAnswer{kind: contextLocation, city: strings.TrimSpace(m[1])}, true
		}
	}

	if containsAny(botText, "cost", "budget", "afford") {
		if m := costPattern.FindStringSubmatch(lower); m != nil {
			amount, err := strconv.Atoi(m[1])
			if err == nil {
				return specificAnswer{kind: contextCost, costAmount: amount}, true
			}
		}
		if containsAny(lower, "free", "no cost") {
			return specificAnswer{kind: contextCost}, true
		}
		if containsAny(lower, "low cost", "cheap", "affordable") {
			return specificAnswer{kind: contextCost, costLow: true}, true
		}
	}
	return specificAnswer{}, false
}
