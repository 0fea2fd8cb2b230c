package llm

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed prompts/analyze_cv.txt
var analyzePrompt string

// SystemPrompt is shared by the chat-style providers.
const SystemPrompt = "You are a CV screening engine for recruiters. Respond with JSON only. No markdown. Never omit keys."

// BuildPrompt renders the analysis instructions followed by the CV text.
func BuildPrompt(input AnalyzeInput) string {
	target := strings.TrimSpace(input.TargetID)
	if target == "" {
		target = "N/A"
	}
	instructions := strings.NewReplacer("{{TARGET_ID}}", target).Replace(analyzePrompt)
	return fmt.Sprintf("%s\n\nCV Text:\n%s", strings.TrimSpace(instructions), input.DocumentText)
}
