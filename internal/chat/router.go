package chat

import (
	"context"
	"strings"
	"time"

	"path2prevention/internal/model"
	"path2prevention/internal/search"
)

const (
	PageRiskAssessment    = "risk-assessment"
	PageLifestylePrograms = "lifestyle-programs"

	relatedResultsDelayMillis = 1000
)

type BotMessage struct {
	Text         string   `json:"text"`
	QuickOptions []string `json:"quick_options,omitempty"`
	// DelayMillis is measured from the start of the reply.
	DelayMillis int `json:"delay_ms"`
}

type Navigation struct {
	Page        string `json:"page"`
	DelayMillis int    `json:"delay_ms"`
}

// Reply is what one user turn produces. Timing and navigation are data; the
// client decides how to play them back.
type Reply struct {
	Rule     string       `json:"rule"`
	Messages []BotMessage `json:"messages"`
	Navigate *Navigation  `json:"navigate,omitempty"`
}

// Text joins all message texts, for memory extraction.
func (r Reply) Text() string {
	parts := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, " ")
}

type SemanticResult struct {
	Results []model.ProgramRow
	Intent  search.IntentAnalysis
}

// ProgramFinder is the search surface the router calls into.
type ProgramFinder interface {
	ByDeliveryMode(ctx context.Context, mode string) ([]model.ProgramRow, error)
	ByName(ctx context.Context, name string) ([]model.ProgramRow, error)
	Semantic(ctx context.Context, query string, history []string, limit int) (*SemanticResult, error)
}

// Completer produces a free-text reply from a system prompt and the user's message.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

type Config struct {
	FollowUpDelayMillis int
	NavigateDelayMillis int
	PromptHistory       int
	SemanticLimit       int
}

type Router struct {
	finder       ProgramFinder
	llm          Completer
	cfg          Config
	messageRules []rule
	optionRules  []rule
	now          func() time.Time
}

func NewRouter(finder ProgramFinder, llm Completer, cfg Config) *Router {
	if cfg.FollowUpDelayMillis <= 0 {
		cfg.FollowUpDelayMillis = 2000
	}
	if cfg.NavigateDelayMillis <= 0 {
		cfg.NavigateDelayMillis = 3000
	}
	if cfg.PromptHistory <= 0 {
		cfg.PromptHistory = 6
	}
	if cfg.SemanticLimit <= 0 {
		cfg.SemanticLimit = 5
	}
	r := &Router{finder: finder, llm: llm, cfg: cfg, now: time.Now}
	r.messageRules = r.messageRuleTable()
	r.optionRules = r.optionRuleTable()
	return r
}

// turn is the per-message view every rule sees.
type turn struct {
	session *Session
	input   string
	lower   string
	user    UserContext

	question    questionResponse
	hasQuestion bool
	// history is the transcript before this message was appended.
	history []Message
}

type rule struct {
	name  string
	match func(t *turn) bool
	act   func(ctx context.Context, t *turn) Reply
}

// Handle runs a typed message through the rule table and records both sides
// of the exchange on the session.
func (r *Router) Handle(ctx context.Context, s *Session, input string) Reply {
	t := r.newTurn(s, input)
	t.question, t.hasQuestion = detectQuestionResponse(input, s)
	t.user = extractUserContext(input, s)
	s.UserName = t.user.UserName
	s.CareRecipientName = t.user.CareRecipientName
	s.AssessmentType = t.user.AssessmentType
	return r.run(ctx, t, r.messageRules)
}

// HandleQuickOption handles a click on one of the offered quick replies.
// Options skip question detection and context extraction.
func (r *Router) HandleQuickOption(ctx context.Context, s *Session, option string) Reply {
	t := r.newTurn(s, option)
	t.user = UserContext{
		UserName:          s.UserName,
		CareRecipientName: s.CareRecipientName,
		AssessmentType:    s.AssessmentType,
	}
	return r.run(ctx, t, r.optionRules)
}

func (r *Router) newTurn(s *Session, input string) *turn {
	return &turn{
		session: s,
		input:   input,
		lower:   strings.ToLower(input),
		history: append([]Message(nil), s.Messages...),
	}
}

func (r *Router) run(ctx context.Context, t *turn, rules []rule) Reply {
	now := r.now()
	updatePreferences(t.session, t.input)
	t.session.addUser(t.input, now)

	var reply Reply
	for _, rl := range rules {
		if rl.match(t) {
			reply = rl.act(ctx, t)
			reply.Rule = rl.name
			break
		}
	}

	t.session.addBot(reply, now)
	remember(t.session, t.input, reply)
	return reply
}

// First match wins, so the order here is the routing policy.
func (r *Router) messageRuleTable() []rule {
	return []rule{
		{name: "question_response", match: func(t *turn) bool { return t.hasQuestion }, act: r.answerQuestion},
		{name: "assessment_for_others", match: func(t *turn) bool { return isAssessmentForOthers(t.lower) }, act: r.acknowledgeCaregiver},
		{name: "route_to_assessment", match: func(t *turn) bool { return shouldRouteToAssessment(t.lower) }, act: r.routeToAssessment},
		{name: "program_search", match: func(t *turn) bool { return isAboutPrograms(t.lower) }, act: r.searchPrograms},
		{name: "organization_lookup", match: func(t *turn) bool { return shouldLookUpOrganization(t.lower) }, act: r.lookUpOrganization},
		{name: "route_to_programs", match: func(t *turn) bool { return shouldRouteToPrograms(t.lower) }, act: r.routeToPrograms},
		{name: "risk_inquiry", match: func(t *turn) bool { return isRiskInquiry(t.lower) }, act: r.riskGuidance},
		{name: "llm", match: func(*turn) bool { return true }, act: r.askLLM},
	}
}

func (r *Router) optionRuleTable() []rule {
	return []rule{
		{name: "caregiver_assessment_option", match: isCaregiverAssessmentOption, act: r.routeCaregiverAssessment},
		{name: "route_to_programs", match: func(t *turn) bool { return shouldRouteToPrograms(t.lower) }, act: r.optionRouteToPrograms},
		{name: "route_to_assessment", match: func(t *turn) bool { return shouldRouteToAssessment(t.lower) }, act: r.optionRouteToAssessment},
		{name: "llm", match: func(*turn) bool { return true }, act: r.askLLM},
	}
}

func isCaregiverAssessmentOption(t *turn) bool {
	return strings.TrimSpace(t.lower) == "take assessment for them"
}

func isAssessmentForOthers(lower string) bool {
	return containsAny(lower,
		"assessment for", "take it for", "for my", "for someone", "for a family member",
		"for my mom", "for my dad", "for my husband", "for my wife", "for my parent",
		"for my child", "for my partner", "on behalf of", "help someone else",
		"someone i care about", "family member", "loved one",
	)
}

func shouldRouteToAssessment(lower string) bool {
	return containsAny(lower,
		"take assessment", "take the assessment", "take the risk assessment", "start assessment",
		"start the assessment", "i want to take", "begin assessment", "do the assessment",
		"answer questions", "answer some questions", "take test", "start test", "quiz",
		"take quiz", "test",
	)
}

func isRiskInquiry(lower string) bool {
	return containsAny(lower, "am i at risk", "my risk", "risk for", "check my risk", "evaluate my risk") &&
		!shouldRouteToAssessment(lower)
}

func shouldRouteToPrograms(lower string) bool {
	return containsAny(lower,
		"find prevention programs", "find programs", "lifestyle programs",
		"prevention programs", "local programs", "find a program", "program near me",
		"diabetes prevention program", "lifestyle change program",
	)
}

func shouldLookUpOrganization(lower string) bool {
	asks := containsAny(lower,
		"tell me about", "more about", "information about", "details about",
		"what is", "describe", "explain", "lci", "community health center",
		"health center", "medical center", "clinic", "hospital",
	)
	return asks && containsAny(lower, "program", "center", "lci", "clinic", "hospital", "organization")
}

func isAboutPrograms(lower string) bool {
	return containsAny(lower,
		"program", "class", "course", "prevention", "diabetes", "hybrid", "virtual",
		"in-person", "online", "help me find", "looking for", "need", "want", "find",
		"search", "show me",
		"virtual programs", "in-person programs", "hybrid programs", "online programs",
	)
}

// DetectDeliveryModeRequest maps a free-text request onto one delivery mode.
func DetectDeliveryModeRequest(lower string) string {
	switch {
	case containsAny(lower, "hybrid", "combination", "mixed", "both"):
		return model.DeliveryHybrid
	case containsAny(lower, "in-person", "in person", "face to face", "face-to-face", "person", "location"):
		return model.DeliveryInPerson
	case containsAny(lower, "virtual", "online", "remote", "zoom", "video"):
		return model.DeliveryVirtualLive
	default:
		return ""
	}
}

var (
	lookupPhrases = strings.NewReplacer(
		"tell me about", "", "more about", "", "information about", "", "details about", "",
		"what is", "", "describe", "", "explain", "",
	)
	lookupNouns = strings.NewReplacer(
		"program", "", "center", "", "clinic", "", "hospital", "", "organization", "",
	)
)

// organizationSearchTerm strips the question phrasing and generic nouns.
func organizationSearchTerm(lower string) string {
	if strings.Contains(lower, "lci") {
		return "community health center"
	}
	return strings.TrimSpace(lookupNouns.Replace(lookupPhrases.Replace(lower)))
}
