package chat

import (
	"context"
	"fmt"
	"math"
	"strings"

	"path2prevention/internal/model"
	"path2prevention/internal/search"
)

const (
	programsApologyAfterFormat = "I'm having trouble finding programs right now, but I'd love to help! Can you tell me more about what you're looking for?"
	programsApology            = "I'm having trouble finding programs right now, but I'd love to help! Can you tell me more about what you're looking for? For example, do you prefer in-person, virtual, or hybrid programs?"
	databaseUnavailable        = "I'm having trouble accessing the program database right now. Let me take you to our programs page where you can search directly."
	moreDetailsQuestion        = "Would you like more details about any of these programs?"
	narrowDownQuestion         = "Would you like more details about any of these programs, or shall I help you narrow down the options?"
)

var programListOptions = []string{"Tell me more about these programs", "Find programs in my area", "Compare with other formats"}

func single(text string, options ...string) Reply {
	return Reply{Messages: []BotMessage{{Text: text, QuickOptions: options}}}
}

// routed announces a page change, follows up after a pause and then navigates.
func (r *Router) routed(first, second, page string) Reply {
	return Reply{
		Messages: []BotMessage{
			{Text: first},
			{Text: second, DelayMillis: r.cfg.FollowUpDelayMillis},
		},
		Navigate: &Navigation{
			Page:        page,
			DelayMillis: r.cfg.FollowUpDelayMillis + r.cfg.NavigateDelayMillis,
		},
	}
}

func possessive(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name + "'s"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func commaName(name string) string {
	if name == "" {
		return ""
	}
	return ", " + name
}

func (r *Router) routeCaregiverAssessment(_ context.Context, t *turn) Reply {
	name := t.session.CareRecipientName
	return r.routed(
		fmt.Sprintf("Perfect! I'll take you to our risk assessment page where you can complete an evaluation for %s.", orDefault(name, "your loved one")),
		fmt.Sprintf("Navigating to the assessment now... This will help create a prevention plan tailored for %s specific needs.", possessive(name, "their")),
		PageRiskAssessment,
	)
}

func (r *Router) acknowledgeCaregiver(_ context.Context, t *turn) Reply {
	return single(
		fmt.Sprintf("That's wonderful that you're looking out for %s%s! Taking an assessment on behalf of a family member or loved one shows how much you care about their health.",
			orDefault(t.user.CareRecipientName, "someone you care about"), commaName(t.user.UserName)),
		"Take assessment for them", "Learn about caregiver resources", "Tell me more about their health",
	)
}

func (r *Router) routeToAssessment(_ context.Context, t *turn) Reply {
	recipient := t.user.CareRecipientName
	forOthers := t.user.AssessmentType == AssessmentCaregiver || recipient != ""

	greeting := " "
	if t.user.UserName != "" {
		greeting = " " + t.user.UserName + ", "
	}
	evaluation := "personalized evaluation"
	second := "Taking you there now... The assessment will help us understand your specific situation and provide tailored recommendations."
	if forOthers {
		evaluation = "personalized evaluation for " + orDefault(recipient, "your loved one")
		second = fmt.Sprintf("Taking you there now... The assessment will help us understand %s specific situation and provide tailored recommendations for their care.", possessive(recipient, "their"))
	}
	return r.routed(
		fmt.Sprintf("Excellent!%sI'll take you to our risk assessment page where you can get a %s.", greeting, evaluation),
		second,
		PageRiskAssessment,
	)
}

func (r *Router) routeToPrograms(_ context.Context, t *turn) Reply {
	return r.routed(
		fmt.Sprintf("Great idea%s! I'll take you to our lifestyle change programs page where you can find CDC-recognized programs in your area.", commaName(t.user.UserName)),
		"Taking you there now... You'll be able to search for programs by location and choose between in-person, virtual, or on-demand options.",
		PageLifestylePrograms,
	)
}

func (r *Router) optionRouteToPrograms(_ context.Context, _ *turn) Reply {
	return r.routed(
		"Perfect! I'll take you to our lifestyle change programs page where you can find CDC-recognized programs in your area.",
		"Taking you there now... You'll find programs available in-person, virtually, or on-demand to fit your schedule and preferences.",
		PageLifestylePrograms,
	)
}

func (r *Router) optionRouteToAssessment(_ context.Context, t *turn) Reply {
	recipient := t.user.CareRecipientName
	evaluation := "personalized evaluation"
	second := "Navigating to the assessment now... This will help us create a prevention plan tailored just for you!"
	if t.user.AssessmentType == AssessmentCaregiver || recipient != "" {
		evaluation = "personalized evaluation for " + orDefault(recipient, "your loved one")
		second = fmt.Sprintf("Navigating to the assessment now... This will help create a prevention plan tailored for %s specific needs.", possessive(recipient, "their"))
	}
	return r.routed(
		fmt.Sprintf("Perfect! Let me take you to our risk assessment page where you can get a %s.", evaluation),
		second,
		PageRiskAssessment,
	)
}

func (r *Router) riskGuidance(_ context.Context, t *turn) Reply {
	return single(
		fmt.Sprintf("That's a great question%s! Understanding your personal risk factors is important. I'd recommend taking our risk assessment to get personalized insights. Would you like to get started?", commaName(t.user.UserName)),
		"Answer some questions", "Learn more about diabetes", "Tell me about prevention",
	)
}

func (r *Router) answerQuestion(ctx context.Context, t *turn) Reply {
	q := t.question
	if q.kind == answerYesNo {
		if q.yes {
			return answerYes(q.context)
		}
		return answerNo(q.context)
	}

	a := q.specific
	switch a.kind {
	case contextDeliveryMode:
		return r.answerDeliveryMode(ctx, t.session, a.deliveryMode)
	case contextLocation:
		where := a.city
		if a.state != "" {
			where += ", " + a.state
		}
		return single(
			fmt.Sprintf("Great! I'll look for programs in %s. Let me search for options in your area.", where),
			"Search programs now", "I'm flexible with nearby areas", "Show me virtual options too",
		)
	default:
		var text string
		switch {
		case a.costLow:
			text = "I understand you're looking for affordable options. I'll show you low-cost and sliding-scale programs."
		case a.costAmount == 0:
			text = "Perfect! I'll focus on free programs for you. There are several no-cost options available."
		default:
			text = fmt.Sprintf("Got it! I'll look for programs within your $%d budget.", a.costAmount)
		}
		return single(text, "Find affordable programs", "Tell me about free options", "Show me all programs")
	}
}

func answerYes(qctx string) Reply {
	switch qctx {
	case contextAssessment:
		return single("Great! I'll help you get started with the risk assessment. This will give you personalized insights about your health risks and prevention strategies.",
			"Take assessment now", "Tell me more about it first")
	case contextPrograms:
		return single("Excellent! I'd be happy to help you find the right prevention program. Let me search for options that match your needs.",
			"Find programs near me", "virtual programs", "Show me all options")
	case contextCost:
		return single("I understand cost is important to you. Let me focus on affordable and free program options.")
	case contextLocation:
		return single("Perfect! Location is definitely important for in-person programs. What area would work best for you?",
			"Atlanta area", "Savannah area", "I'm flexible with location")
	default:
		return single("Great! I'm here to help you with whatever you need regarding chronic disease prevention.",
			"Find prevention programs", "Take risk assessment", "Learn about healthy lifestyle")
	}
}

func answerNo(qctx string) Reply {
	switch qctx {
	case contextAssessment:
		return single("No problem! Is there something specific about chronic disease prevention you'd like to learn about instead?",
			"Tell me about diabetes prevention", "Find prevention programs", "Learn about healthy eating")
	case contextPrograms:
		return single("That's okay! Maybe I can help you with information about prevention strategies or answer any questions you have.",
			"Learn prevention tips", "Ask a question", "Take risk assessment")
	case contextCost:
		return single("I understand. Let me show you all available options regardless of cost.")
	default:
		return single("No worries! What would you like to know about chronic disease prevention?",
			"Prevention tips", "Risk factors", "Healthy lifestyle advice")
	}
}

func (r *Router) answerDeliveryMode(ctx context.Context, s *Session, mode string) Reply {
	if kind := programTypeMentioned(mode); kind != "" {
		s.Preferences.PreferredProgramType = kind
	}
	s.FormatPreferenceSet = true
	s.QuestionsAsked = appendUnique(s.QuestionsAsked, "format_preference")

	programs, err := r.finder.ByDeliveryMode(ctx, mode)
	if err != nil {
		return single(
			fmt.Sprintf("Perfect! I'll focus on %s programs for you. Let me search for options that match your preference.", mode),
			"Find programs now", "Tell me more about this format", "I want to compare options",
		)
	}
	if len(programs) == 0 {
		return single(
			fmt.Sprintf("I understand you prefer %s programs. Let me search more broadly for programs that might work for you.", mode),
			"Search all programs", "Tell me about other formats", "Help me find alternatives",
		)
	}
	return single("Perfect! "+foundByMode(programs, mode), programListOptions...)
}

// foundByMode lists the first three programs of a delivery-mode search.
func foundByMode(programs []model.ProgramRow, mode string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s program%s for you:\n\n", len(programs), mode, plural(len(programs)))
	writeProgramList(&b, programs, false)
	b.WriteString(moreDetailsQuestion)
	return b.String()
}

func (r *Router) searchPrograms(ctx context.Context, t *turn) Reply {
	if mode := DetectDeliveryModeRequest(t.lower); mode != "" {
		programs, err := r.finder.ByDeliveryMode(ctx, mode)
		if err == nil && len(programs) > 0 {
			return single(foundByMode(programs, mode), programListOptions...)
		}
	}

	res, err := r.finder.Semantic(ctx, t.input, t.session.UserInputs[:len(t.session.UserInputs)-1], r.cfg.SemanticLimit)
	if err != nil || res == nil || len(res.Results) == 0 {
		if t.session.FormatPreferenceSet {
			return single(programsApologyAfterFormat, "Search all programs", "Tell me about programs", "Take risk assessment", "I'm not sure")
		}
		return single(programsApology, "in-person programs", "virtual programs", "hybrid programs", "I'm not sure")
	}

	var b strings.Builder
	b.WriteString("I found some great programs that match what you're looking for:\n\n")
	writeProgramList(&b, res.Results, true)
	if len(res.Intent.QuestionsToAsk) > 0 {
		b.WriteString("To help me find the perfect program for you: " + res.Intent.QuestionsToAsk[0])
	} else {
		b.WriteString(narrowDownQuestion)
	}

	options := []string{"Tell me more about these programs", "Help me choose"}
	if modes := distinct(res.Results, func(p model.ProgramRow) string { return p.DeliveryMode }); len(modes) > 1 {
		options = append(options, "Compare "+strings.Join(modes, " vs "))
	}
	if cities := distinct(res.Results, func(p model.ProgramRow) string { return p.City }); len(cities) > 1 {
		options = append(options, "Filter by location")
	}
	options = append(options, "Take risk assessment")
	return single(b.String(), head(options, 4)...)
}

func (r *Router) lookUpOrganization(ctx context.Context, t *turn) Reply {
	term := organizationSearchTerm(t.lower)
	programs, err := r.finder.ByName(ctx, term)
	if err != nil {
		return single(databaseUnavailable)
	}
	if len(programs) == 0 {
		return single(fmt.Sprintf("I couldn't find any programs matching \"%s\". Would you like me to help you search for programs in your area instead? I can help you find CDC-recognized diabetes prevention programs.", term))
	}

	first := programs[0]
	reply := single(fmt.Sprintf("Here's information about %s:\n\n%s", first.OrganizationName, FormatProgramInfo(first)))
	if len(programs) > 1 {
		reply.Messages = append(reply.Messages, BotMessage{
			Text:        fmt.Sprintf("I found %d programs matching your search. Would you like information about the other programs, or would you like to search for programs in a specific location?", len(programs)),
			DelayMillis: relatedResultsDelayMillis,
		})
	}
	return reply
}

func writeProgramList(b *strings.Builder, programs []model.ProgramRow, ranked bool) {
	for i, p := range head3(programs) {
		fmt.Fprintf(b, "%d. **%s**\n", i+1, p.OrganizationName)
		fmt.Fprintf(b, "📍 %s, %s\n", p.City, p.State)
		if ranked && p.DeliveryMode != "" {
			fmt.Fprintf(b, "🏥 Format: %s\n", p.DeliveryMode)
		}
		if p.Cost != nil && *p.Cost != 0 {
			fmt.Fprintf(b, "💰 Cost: $%s\n", search.FormatMoney(*p.Cost))
		}
		if p.DurationWeeks != nil && *p.DurationWeeks != 0 {
			fmt.Fprintf(b, "📅 Duration: %d weeks\n", *p.DurationWeeks)
		}
		if ranked && p.Similarity != nil && *p.Similarity != 0 {
			fmt.Fprintf(b, "🎯 Match score: %d%%\n", int(math.Round(*p.Similarity*100)))
		}
		b.WriteString("\n")
	}
}

// FormatProgramInfo renders one program as a chat card.
func FormatProgramInfo(p model.ProgramRow) string {
	var b strings.Builder
	b.WriteString(p.OrganizationName + "\n\n")
	if p.Description != "" {
		b.WriteString(p.Description + "\n\n")
	}
	fmt.Fprintf(&b, "📍 Location: %s, %s %s\n", p.City, p.State, p.ZipCode)
	if p.DeliveryMode != "" {
		fmt.Fprintf(&b, "🏥 Delivery: %s\n", p.DeliveryMode)
	}
	if p.Cost != nil && *p.Cost != 0 {
		fmt.Fprintf(&b, "💰 Cost: $%s\n", search.FormatMoney(*p.Cost))
	}
	if p.DurationWeeks != nil && *p.DurationWeeks != 0 {
		fmt.Fprintf(&b, "📅 Duration: %d weeks\n", *p.DurationWeeks)
	}
	if p.ClassSchedule != "" {
		fmt.Fprintf(&b, "🕐 Schedule: %s\n", p.ClassSchedule)
	}
	if p.EnrollmentStatus != "" {
		fmt.Fprintf(&b, "%s Status: %s\n", statusEmoji(p.EnrollmentStatus), p.EnrollmentStatus)
	}
	if p.ContactPhone != "" {
		fmt.Fprintf(&b, "📞 Phone: %s\n", p.ContactPhone)
	}
	if p.ContactEmail != "" {
		fmt.Fprintf(&b, "📧 Email: %s\n", p.ContactEmail)
	}
	return b.String()
}

func statusEmoji(status string) string {
	switch status {
	case model.EnrollmentOpen:
		return "✅"
	case model.EnrollmentClosed:
		return "❌"
	default:
		return "⏳"
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

func head3(programs []model.ProgramRow) []model.ProgramRow {
	if len(programs) > 3 {
		return programs[:3]
	}
	return programs
}

func distinct(rows []model.ProgramRow, key func(model.ProgramRow) string) []string {
	var out []string
	for _, row := range rows {
		out = appendUnique(out, key(row))
	}
	return out
}
