package chat

import (
	"time"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"

	AssessmentSelf      = "self"
	AssessmentCaregiver = "caregiver"
	AssessmentCurious   = "curious"

	Greeting = "Hello! I'm here to help you learn about chronic disease prevention. How can I help you today?"
)

type Message struct {
	Sender       string    `json:"sender"`
	Text         string    `json:"text"`
	QuickOptions []string  `json:"quick_options,omitempty"`
	At           time.Time `json:"at"`
}

type Preferences struct {
	PreferredProgramType string   `json:"preferred_program_type,omitempty"`
	TopicsOfInterest     []string `json:"topics_of_interest"`
}

// Session is everything the router remembers about one conversation. It is
// created by NewSession, mutated by Router.Handle on every turn and thrown
// away when the conversation ends.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserName          string      `json:"user_name,omitempty"`
	CareRecipientName string      `json:"care_recipient_name,omitempty"`
	AssessmentType    string      `json:"assessment_type,omitempty"`
	Preferences       Preferences `json:"preferences"`

	Messages     []Message `json:"messages"`
	UserInputs   []string  `json:"user_inputs"`
	MessageCount int       `json:"message_count"`

	KeyTopics               []string `json:"key_topics"`
	UserGoals               []string `json:"user_goals"`
	PreviousRecommendations []string `json:"previous_recommendations"`
	QuestionsAsked          []string `json:"questions_asked"`
	FormatPreferenceSet     bool     `json:"format_preference_set"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Messages: []Message{{
			Sender: SenderBot,
			Text:   Greeting,
			At:     now,
		}},
		Preferences: Preferences{TopicsOfInterest: []string{}},
	}
}

// lastBotMessage returns the most recent bot message, if any.
func (s *Session) lastBotMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == SenderBot {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

func (s *Session) addUser(text string, now time.Time) {
	s.Messages = append(s.Messages, Message{Sender: SenderUser, Text: text, At: now})
	s.UserInputs = append(s.UserInputs, text)
	s.UpdatedAt = now
}

func (s *Session) addBot(reply Reply, now time.Time) {
	for _, m := range reply.Messages {
		s.Messages = append(s.Messages, Message{
			Sender:       SenderBot,
			Text:         m.Text,
			QuickOptions: m.QuickOptions,
			At:           now.Add(time.Duration(m.DelayMillis) * time.Millisecond),
		})
	}
	s.UpdatedAt = now
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" || contains(dst, v) {
			continue
		}
		dst = append(dst, v)
	}
	return dst
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
