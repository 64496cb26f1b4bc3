package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var zeroTime = time.Time{}

func TestExtractTopicsKeepsTableOrder(t *testing.T) {
	got := ExtractTopics("Worried about blood sugar, my diet and a quiz")

	assert.Equal(t, []string{"diabetes", "nutrition", "assessment"}, got)
}

func TestExtractGoals(t *testing.T) {
	got := ExtractGoals("I want to eat better. I need to walk more")

	assert.Equal(t, []string{"eat better", "walk more"}, got)
}

func TestExtractRecommendationsLimitsToThree(t *testing.T) {
	text := "You should walk daily. Consider a program nearby. Try to sleep well. I recommend water. Hi."

	got := ExtractRecommendations(text)

	assert.Equal(t, []string{"You should walk daily", "Consider a program nearby", "Try to sleep well"}, got)
}

func TestCareRecipientPatterns(t *testing.T) {
	cases := map[string]string{
		"my dad john needs help":     "John",
		"Maria is my grandmother":    "Maria",
		"I'm caring for pat":         "Pat",
		"worried about tom lately":   "Tom",
		"how is Ana's health lately": "Ana",
	}
	for input, want := range cases {
		got, ok := careRecipient(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}

	_, ok := careRecipient("my name is Sam")
	assert.False(t, ok)
}

func TestAssessmentTypeFromWording(t *testing.T) {
	s := NewSession("x", zeroTime)

	assert.Equal(t, AssessmentSelf, extractUserContext("what about my risk", s).AssessmentType)
	assert.Equal(t, AssessmentCurious, extractUserContext("just curious", s).AssessmentType)
}

func TestSummary(t *testing.T) {
	s := NewSession("x", zeroTime)
	s.UserName = "Lee"
	s.CareRecipientName = "Sarah"
	s.KeyTopics = []string{"diabetes"}
	s.Preferences.PreferredProgramType = "virtual"

	assert.Equal(t, "User: Lee. Caring for: Sarah. Topics discussed: diabetes. Prefers virtual programs. ", s.Summary())
}
