package chat

import (
	"context"
	"fmt"
	"strings"
)

const promptGuidelines = `

Key guidelines:
- Provide evidence-based health information
- Keep responses concise and helpful (2-3 sentences max)
- Utilize plain language and avoid using jargon
- Always suggest taking risk assessment when appropriate
- Mention lifestyle changes like diet, exercise, and avoiding tobacco
- Be encouraging and supportive
- If asked about medical advice, remind users to consult healthcare providers
- Focus on prevention strategies and CDC resources
- Use a professional but friendly tone appropriate for a government health website
- If you know the user's name, use it occasionally to personalize the conversation
- Be attentive to whether they're asking for themselves, someone they care about, or just general information
- When someone wants to take an assessment for a family member or loved one, acknowledge their caring role and provide caregiver-focused guidance
- Use names of care recipients when known (e.g., "Sarah's health", "your mom's risk factors")
- Be supportive of caregivers and recognize the challenges of advocating for someone else's health
- IMPORTANT: Reference previous conversation topics and user preferences when relevant to show continuity
- Avoid repeating the same recommendations if they were already discussed
- Build upon previous conversations and show that you remember what was discussed
- If the user has expressed specific goals or interests, tailor your responses accordingly

Available resources to mention:
- The risk assessment on this website for various chronic diseases
- Local lifestyle change programs (CDC-recognized programs that reduce diabetes risk by 58%)
- Educational videos and interactive tools
- CDC prevention guidelines and recommendations
- In-person, hybrid, virtual, and on-demand program options`

const messagePreviewRunes = 100

// SystemPrompt builds the assistant persona plus everything the session
// knows about the user. history is the transcript before the current message.
func SystemPrompt(s *Session, user UserContext, history []Message, window int) string {
	var personal []string
	if user.UserName != "" {
		personal = append(personal, "User's name: "+user.UserName)
	}
	if user.CareRecipientName != "" {
		personal = append(personal, "Care recipient: "+user.CareRecipientName)
	}
	if user.AssessmentType != "" {
		personal = append(personal, "Assessment context: "+user.AssessmentType)
	}
	if len(s.KeyTopics) > 0 {
		personal = append(personal, "Previous topics: "+strings.Join(head(s.KeyTopics, 5), ", "))
	}
	if len(s.UserGoals) > 0 {
		personal = append(personal, "User goals: "+strings.Join(head(s.UserGoals, 3), "; "))
	}
	if s.Preferences.PreferredProgramType != "" {
		personal = append(personal, "Program preference: "+s.Preferences.PreferredProgramType)
	}
	if len(s.PreviousRecommendations) > 0 {
		personal = append(personal, "Previous recommendations: "+strings.Join(tail(s.PreviousRecommendations, 2), "; "))
	}

	var b strings.Builder
	b.WriteString("You are a Chronic Disease Prevention Assistant for the CDC: Path2Prevention program. ")
	b.WriteString("You help people learn about preventing chronic diseases including diabetes, heart disease, stroke, COPD, and obesity.")
	if len(personal) > 0 {
		b.WriteString("\n\nPersonal Context: " + strings.Join(personal, ", "))
	}

	if len(history) > window {
		history = history[len(history)-window:]
	}
	if len(history) > 0 {
		recent := make([]string, 0, len(history))
		for _, m := range history {
			recent = append(recent, fmt.Sprintf("%s: %s", m.Sender, preview(m.Text)))
		}
		b.WriteString("\n\nRecent Conversation: " + strings.Join(recent, " | "))
	}
	if summary := s.Summary(); summary != "" {
		b.WriteString("\n\nConversation Summary: " + summary)
	}
	b.WriteString(promptGuidelines)
	return b.String()
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= messagePreviewRunes {
		return text
	}
	return string(runes[:messagePreviewRunes]) + "..."
}

func (r *Router) askLLM(ctx context.Context, t *turn) Reply {
	if r.llm != nil {
		prompt := SystemPrompt(t.session, t.user, t.history, r.cfg.PromptHistory)
		if text, err := r.llm.Complete(ctx, prompt, t.input); err == nil && strings.TrimSpace(text) != "" {
			return single(strings.TrimSpace(text))
		}
	}
	return single(CannedReply(t.lower))
}

// CannedReply answers from keywords when the LLM is unavailable.
func CannedReply(lower string) string {
	switch {
	case strings.Contains(lower, "diabetes"):
		return "I can help you learn about diabetes prevention. Key steps include maintaining a healthy weight, eating a balanced diet, and staying physically active. Would you like to take our risk assessment to get personalized recommendations?"
	case strings.Contains(lower, "heart"):
		return "Heart disease is preventable through lifestyle changes like regular exercise, healthy eating, not smoking, and managing stress. Are you interested in learning about specific prevention strategies or finding a program to help?"
	case containsAny(lower, "risk", "assessment"):
		return "Our risk assessment can help identify your personal risk factors for chronic diseases. It takes just a few minutes and provides personalized recommendations. Would you like to get started with the assessment?"
	case containsAny(lower, "hybrid", "in-person", "virtual", "online"):
		return "I understand you're interested in programs. Let me help you find the right format. What type of program would work best for you - in-person, virtual, or hybrid?"
	case containsAny(lower, "program", "classes"):
		return "We have CDC-recognized diabetes prevention programs available in various formats: in-person, virtual live sessions, and hybrid options. Would you like me to help you find programs in your area, or do you have questions about what these programs include?"
	case containsAny(lower, "cost", "afford", "expensive"):
		return "I understand cost is an important consideration. We have programs at various price points, including free options. Are you looking for low-cost or free programs specifically?"
	case containsAny(lower, "location", "near me", "area"):
		return "Location is definitely important for finding the right program. What area are you located in, or would you prefer virtual programs that you can access from anywhere?"
	default:
		return "I'm here to help with chronic disease prevention information. You can ask me about diabetes, heart disease, stroke and obesity prevention strategies, or help you find prevention programs."
	}
}
