package advice

import (
	"errors"
	"fmt"
)

// Step difficulty levels.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Step struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Difficulty     string     `json:"difficulty"`
	TimeCommitment string     `json:"time_commitment"`
	Resources      []Resource `json:"resources,omitempty"`
}

// Advice is the structured response contract. Every Advice returned by
// the pipeline — upstream-sourced or fallback — passes Validate.
//
// ConfidenceScore is a pointer so a reply that omits the field is
// distinguishable from an explicit 0.
type Advice struct {
	Category            string   `json:"category"`
	Insight             string   `json:"insight"`
	ConfidenceScore     *float64 `json:"confidence_score"`
	Steps               []Step   `json:"steps"`
	OverallTakeaway     string   `json:"overall_takeaway,omitempty"`
	RelatedTopics       []string `json:"related_topics,omitempty"`
	GenerationTimestamp string   `json:"generation_timestamp,omitempty"`
}

const (
	minSteps = 3
	maxSteps = 5
)

// Validate reports the first schema violation, or nil if the advice
// satisfies the full contract.
func (a *Advice) Validate() error {
	if a == nil {
		return errors.New("advice is nil")
	}
	if a.Category == "" {
		return errors.New("category is required")
	}
	if a.Insight == "" {
		return errors.New("insight is required")
	}
	if a.ConfidenceScore == nil {
		return errors.New("confidence_score is required")
	}
	if *a.ConfidenceScore < 0 || *a.ConfidenceScore > 1 {
		return fmt.Errorf("confidence_score %v out of range [0,1]", *a.ConfidenceScore)
	}
	if len(a.Steps) < minSteps || len(a.Steps) > maxSteps {
		return fmt.Errorf("steps length %d outside [%d,%d]", len(a.Steps), minSteps, maxSteps)
	}
	for i, s := range a.Steps {
		if s.Title == "" {
			return fmt.Errorf("steps[%d]: title is required", i)
		}
		if s.Description == "" {
			return fmt.Errorf("steps[%d]: description is required", i)
		}
		if s.TimeCommitment == "" {
			return fmt.Errorf("steps[%d]: time_commitment is required", i)
		}
		switch s.Difficulty {
		case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		default:
			return fmt.Errorf("steps[%d]: invalid difficulty %q", i, s.Difficulty)
		}
	}
	return nil
}
