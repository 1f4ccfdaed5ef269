package advice

import (
	"encoding/json"
	"strings"
)

// ParseAdvice extracts a structured advice object from a free-text
// upstream reply. The model often wraps its JSON in prose or markdown
// fences, so the first '{' through the last '}' is taken as the
// candidate object.
//
// Best-effort contract: never returns an error, only absence. The
// result still needs Validate before it can leave the pipeline.
func ParseAdvice(raw string) (*Advice, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var adv Advice
	if err := json.Unmarshal([]byte(raw[start:end+1]), &adv); err != nil {
		return nil, false
	}

	return &adv, true
}
