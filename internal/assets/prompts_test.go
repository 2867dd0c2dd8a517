package assets

import (
	"strings"
	"testing"
)

func TestStaticPromptsEmbedded(t *testing.T) {
	prompts := map[string]string{
		"classifier": ClassifierSystemPrompt,
		"summary":    SummarySystemPrompt,
		"redirect":   RedirectSystemPrompt,
		"guardrail":  EditGuardrailPrompt,
	}
	for name, p := range prompts {
		if strings.TrimSpace(p) == "" {
			t.Errorf("%s prompt is empty", name)
		}
	}
	if !strings.Contains(ClassifierSystemPrompt, "FASHION_REQUEST") || !strings.Contains(ClassifierSystemPrompt, "OUT_OF_TOPIC") {
		t.Error("classifier prompt must name both labels")
	}
}

func TestRenderPlannerSystemPrompt(t *testing.T) {
	got := RenderPlannerSystemPrompt(4)
	for _, want := range []string{"exactly 4", InstructionPrefix, IdentityClause, `"outfits"`, "80 words"} {
		if !strings.Contains(got, want) {
			t.Errorf("planner prompt missing %q", want)
		}
	}
}

func TestRenderClassifierPrompt(t *testing.T) {
	got := RenderClassifierPrompt("Can you whiten my teeth?")
	if !strings.Contains(got, `"Can you whiten my teeth?"`) {
		t.Errorf("classifier prompt = %q", got)
	}
}

func TestRenderSummaryPrompt(t *testing.T) {
	got := RenderSummaryPrompt("streetwear", []string{"look one", "look two"})
	for _, want := range []string{"streetwear", "(2)", "1. look one", "2. look two"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary prompt missing %q:\n%s", want, got)
		}
	}
}

func TestRenderRedirectMessage(t *testing.T) {
	got := RenderRedirectMessage("make me taller")
	if !strings.HasPrefix(got, "I specialize in providing outfit suggestions") {
		t.Errorf("unexpected redirect start: %q", got)
	}
	if !strings.Contains(got, "Your input: make me taller") {
		t.Error("redirect should echo the user input")
	}
	if !strings.HasSuffix(got, "Could you please ask me about a specific outfit or styling request?") {
		t.Error("redirect should end with the invitation")
	}
}
