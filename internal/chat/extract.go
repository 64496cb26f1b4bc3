package chat

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type topicKeywords struct {
	topic    string
	keywords []string
}

var topicTable = []topicKeywords{
	{"diabetes", []string{"diabetes", "diabetic", "blood sugar", "glucose", "insulin"}},
	{"heart-disease", []string{"heart", "cardiac", "cardiovascular", "blood pressure", "cholesterol"}},
	{"nutrition", []string{"diet", "food", "eating", "nutrition", "meal", "calories"}},
	{"exercise", []string{"exercise", "physical activity", "workout", "fitness", "walking"}},
	{"weight", []string{"weight", "obesity", "bmi", "overweight", "lose weight"}},
	{"smoking", []string{"smoking", "tobacco", "cigarette", "quit smoking"}},
	{"stress", []string{"stress", "anxiety", "mental health", "depression"}},
	{"programs", []string{"program", "class", "course", "prevention program"}},
	{"assessment", []string{"assessment", "risk", "evaluation", "test", "quiz"}},
}

// ExtractTopics returns every topic whose keywords appear in text, in table order.
func ExtractTopics(text string) []string {
	lower := strings.ToLower(text)
	var topics []string
	for _, t := range topicTable {
		if containsAny(lower, t.keywords...) {
			topics = append(topics, t.topic)
		}
	}
	return topics
}

var goalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)want to (.*?)(?:\.|$)`),
	regexp.MustCompile(`(?i)need to (.*?)(?:\.|$)`),
	regexp.MustCompile(`(?i)trying to (.*?)(?:\.|$)`),
	regexp.MustCompile(`(?i)looking for (.*?)(?:\.|$)`),
	regexp.MustCompile(`(?i)help me (.*?)(?:\.|$)`),
	regexp.MustCompile(`(?i)i'd like to (.*?)(?:\.|$)`),
}

func ExtractGoals(text string) []string {
	var goals []string
	for _, p := range goalPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if g := strings.TrimSpace(m[1]); len(g) > 3 {
				goals = append(goals, g)
			}
		}
	}
	return goals
}

var (
	sentenceSplit          = regexp.MustCompile(`[.!?]+`)
	recommendationKeywords = []string{
		"recommend", "suggest", "try", "consider", "should", "might want to",
		"assessment", "program", "exercise", "diet", "lifestyle change",
	}
)

// ExtractRecommendations keeps at most three advice-like sentences.
func ExtractRecommendations(text string) []string {
	var out []string
	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 10 {
			continue
		}
		if containsAny(strings.ToLower(sentence), recommendationKeywords...) {
			out = append(out, sentence)
			if len(out) == 3 {
				break
			}
		}
	}
	return out
}

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)my name is (\w+)`),
		regexp.MustCompile(`(?i)i'm (\w+)`),
		regexp.MustCompile(`(?i)call me (\w+)`),
		regexp.MustCompile(`(?i)i am (\w+)`),
	}

	careRelationName = regexp.MustCompile(`(?i)my (\w+) (\w+)`)
	careNameIsMy     = regexp.MustCompile(`(?i)(\w+) is my (\w+)`)
	careOther        = []*regexp.Regexp{
		regexp.MustCompile(`(?i)caring for (\w+)`),
		regexp.MustCompile(`(?i)worried about (\w+)`),
		regexp.MustCompile(`(?i)(\w+)'s health`),
	}

	// Words the name patterns routinely capture that are never names.
	notNames = map[string]bool{
		"a": true, "an": true, "the": true, "is": true, "not": true, "so": true,
		"just": true, "here": true, "also": true, "very": true, "really": true,
		"looking": true, "interested": true, "trying": true, "worried": true,
		"caring": true, "going": true, "new": true, "name": true, "own": true,
		"health": true, "risk": true, "at": true, "in": true, "on": true,
		"my": true, "your": true, "their": true, "his": true, "her": true,
		"him": true, "them": true, "me": true, "you": true, "it": true,
	}
)

// UserContext is what a single message reveals about who is talking and on
// whose behalf. Empty fields keep the session's previous value.
type UserContext struct {
	UserName          string
	CareRecipientName string
	AssessmentType    string
}

func extractUserContext(input string, s *Session) UserContext {
	ctx := UserContext{
		UserName:          s.UserName,
		CareRecipientName: s.CareRecipientName,
		AssessmentType:    s.AssessmentType,
	}

	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(input); m != nil && isName(m[1]) {
			ctx.UserName = capitalize(m[1])
			break
		}
	}

	if name, ok := careRecipient(input); ok {
		ctx.CareRecipientName = name
		ctx.AssessmentType = AssessmentCaregiver
	}

	lower := strings.ToLower(input)
	switch {
	case containsAny(lower, "myself", "my health", "my risk"):
		ctx.AssessmentType = AssessmentSelf
	case containsAny(lower, "just curious", "general information", "learning about"):
		ctx.AssessmentType = AssessmentCurious
	}
	return ctx
}

func careRecipient(input string) (string, bool) {
	if m := careRelationName.FindStringSubmatch(input); m != nil && isName(m[1]) && isName(m[2]) {
		return capitalize(m[2]), true
	}
	if m := careNameIsMy.FindStringSubmatch(input); m != nil && isName(m[1]) {
		return capitalize(m[1]), true
	}
	for _, p := range careOther {
		if m := p.FindStringSubmatch(input); m != nil && isName(m[1]) {
			return capitalize(m[1]), true
		}
	}
	return "", false
}

func isName(word string) bool {
	return word != "" && !notNames[strings.ToLower(word)]
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}

// updatePreferences records the program format and topics a message mentions.
func updatePreferences(s *Session, input string) {
	if kind := programTypeMentioned(strings.ToLower(input)); kind != "" {
		s.Preferences.PreferredProgramType = kind
	}
	s.Preferences.TopicsOfInterest = appendUnique(s.Preferences.TopicsOfInterest, ExtractTopics(input)...)
	s.MessageCount++
}

func programTypeMentioned(lower string) string {
	switch {
	case containsAny(lower, "virtual", "online"):
		return "virtual"
	case containsAny(lower, "in-person", "face to face"):
		return "in-person"
	case containsAny(lower, "hybrid", "combination"):
		return "hybrid"
	default:
		return ""
	}
}

// remember folds one exchange into the session's long-lived memory.
func remember(s *Session, input string, reply Reply) {
	botText := reply.Text()
	s.KeyTopics = appendUnique(s.KeyTopics, ExtractTopics(input+" "+botText)...)
	s.UserGoals = appendUnique(s.UserGoals, ExtractGoals(input)...)
	s.PreviousRecommendations = appendUnique(s.PreviousRecommendations, ExtractRecommendations(botText)...)
}

// Summary is the one-paragraph recap handed to the LLM.
func (s *Session) Summary() string {
	var b strings.Builder
	if s.UserName != "" {
		b.WriteString("User: " + s.UserName + ". ")
	}
	if s.CareRecipientName != "" {
		b.WriteString("Caring for: " + s.CareRecipientName + ". ")
	}
	if topics := head(s.KeyTopics, 5); len(topics) > 0 {
		b.WriteString("Topics discussed: " + strings.Join(topics, ", ") + ". ")
	}
	if goals := head(s.UserGoals, 3); len(goals) > 0 {
		b.WriteString("User goals: " + strings.Join(goals, "; ") + ". ")
	}
	if s.Preferences.PreferredProgramType != "" {
		b.WriteString("Prefers " + s.Preferences.PreferredProgramType + " programs. ")
	}
	if recs := tail(s.PreviousRecommendations, 3); len(recs) > 0 {
		b.WriteString("Previous recommendations: " + strings.Join(recs, "; ") + ". ")
	}
	return b.String()
}

func head(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func tail(list []string, n int) []string {
	if len(list) > n {
		return list[len(list)-n:]
	}
	return list
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
