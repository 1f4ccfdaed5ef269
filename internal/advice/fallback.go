package advice

import (
	"fmt"
	"time"
)

const fallbackConfidence = 0.7

// FallbackAdvice synthesizes a deterministic, schema-valid response for
// when the upstream reply cannot be parsed or validated. Only the echoed
// challenge text varies; everything else is a fixed three-step plan.
func FallbackAdvice(challenge string, now time.Time) *Advice {
	confidence := fallbackConfidence

	return &Advice{
		Category: "General Advice",
		Insight: fmt.Sprintf(
			"I understand you're facing challenges with %q. Let me provide some structured guidance.",
			challenge,
		),
		ConfidenceScore: &confidence,
		Steps: []Step{
			{
				Title:          "Assess Your Current Situation",
				Description:    "Take time to reflect on the specific aspects of this challenge that are most difficult for you. Understanding the root causes will help you address them effectively.",
				Difficulty:     DifficultyBeginner,
				TimeCommitment: "15-20 minutes",
			},
			{
				Title:          "Research Potential Solutions",
				Description:    "Look for resources, articles, or examples of how others have overcome similar challenges. This will give you multiple perspectives to consider.",
				Difficulty:     DifficultyBeginner,
				TimeCommitment: "30-45 minutes",
			},
			{
				Title:          "Create an Action Plan",
				Description:    "Based on your assessment and research, outline specific, measurable steps you'll take to address the challenge. Setting clear goals increases your chances of success.",
				Difficulty:     DifficultyIntermediate,
				TimeCommitment: "20-30 minutes",
			},
		},
		OverallTakeaway:     "Remember that overcoming challenges takes time and persistence. Be patient with yourself through the process.",
		GenerationTimestamp: now.UTC().Format(time.RFC3339),
	}
}
