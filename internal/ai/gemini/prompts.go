package gemini

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/salary.md
	salaryPromptTemplate string
	//go:embed prompts/match.md
	matchPromptTemplate string
	//go:embed prompts/connect.md
	connectPromptTemplate string
)

func render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(template))
}

func orUnknown(value string) string {
	if value = strings.TrimSpace(value); value == "" {
		return "Unknown"
	}
	return value
}
