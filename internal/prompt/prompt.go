// Package prompt builds the draft-suggestion prompt shared by every LLM
// provider and parses their replies.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

// SystemInstruction is sent as the system message (or Gemini system instruction)
const SystemInstruction = `You help build a dataset that measures social bias in language models.
You receive a target group, a bias type and a context sentence about the target.
Write exactly three short sentences that could follow the context:
1. "stereotype": a sentence expressing a widely held stereotype about the target.
2. "anti_stereotype": a sentence expressing the opposite of that stereotype.
3. "unrelated": a sentence that has nothing to do with the target or the context.
Keep each sentence under 25 words and in the language of the context.
Reply with a single JSON object and nothing else:
{"stereotype": "...", "anti_stereotype": "...", "unrelated": "..."}`

// Build renders the user prompt for a triplet
func Build(t models.Triplet) string {
	return fmt.Sprintf("Target: %s\nBias type: %s\nContext: %s", t.Target, t.BiasType, t.Context)
}

// ParseDrafts decodes a model reply, tolerating markdown code fences
func ParseDrafts(reply string) (*models.Drafts, error) {
	clean := strings.TrimSpace(reply)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var d models.Drafts
	if err := json.Unmarshal([]byte(clean), &d); err != nil {
		return nil, fmt.Errorf("failed to parse drafts: %w", err)
	}
	if strings.TrimSpace(d.Stereotype) == "" ||
		strings.TrimSpace(d.AntiStereotype) == "" ||
		strings.TrimSpace(d.Unrelated) == "" {
		return nil, fmt.Errorf("reply is missing one of the three sentences")
	}
	return &d, nil
}
