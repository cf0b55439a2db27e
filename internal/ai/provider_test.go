package ai

import (
	"strings"
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `[{"title": "Section A"}]`, `[{"title": "Section A"}]`},
		{"json fence", "```json\n[1, 2]\n```", "[1, 2]"},
		{"plain fence", "```\n[1, 2]\n```", "[1, 2]"},
		{"surrounding whitespace", "  \n```json\n{}\n```\n  ", "{}"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateQuestionsPrompt(t *testing.T) {
	prompt := GenerateQuestionsPrompt("Basic Science", "States of Matter", "Medium", "OBJ", 10, "")

	for _, want := range []string{"Basic Science", "States of Matter", "Medium", "10"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "Lesson Plan") {
		t.Error("lesson plan section should be absent when no plan is given")
	}

	withPlan := GenerateQuestionsPrompt("Basic Science", "States of Matter", "Medium", "OBJ", 10, "Week 3: evaporation and condensation")
	if !strings.Contains(withPlan, "Week 3: evaporation and condensation") {
		t.Error("lesson plan not injected into prompt")
	}
}

func TestRewriteQuestionPrompt(t *testing.T) {
	original := `{"text": "What is 2 + 2?", "type": "OBJ"}`

	harder := RewriteQuestionPrompt(original, "HARDER", "OBJ")
	if !strings.Contains(harder, original) {
		t.Error("original question not embedded in prompt")
	}

	swap := RewriteQuestionPrompt(original, "TYPE_SWAP", "OBJ")
	if !strings.Contains(swap, "Fill-in-the-blank") {
		t.Error("type swap from OBJ should target fill-in-the-blank")
	}
	swapBack := RewriteQuestionPrompt(original, "TYPE_SWAP", "FILL")
	if !strings.Contains(swapBack, "Multiple Choice") {
		t.Error("type swap from FILL should target multiple choice")
	}
}
