package stylist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fpang/vibe-fashion/internal/assets"
)

func TestSummarize(t *testing.T) {
	text := newFakeText().reply(stageSummary, "  Four relaxed streetwear looks built around denim.  ")
	got := NewSummarizer(text).Summarize(context.Background(), "streetwear", instructions(4), 4)
	if got != "Four relaxed streetwear looks built around denim." {
		t.Errorf("Summarize = %q", got)
	}

	p := text.prompts[stageSummary][0]
	if p.System != assets.SummarySystemPrompt || p.JSON {
		t.Error("summary should use the stylist persona without JSON mode")
	}
	if !strings.Contains(p.User, "look 4") {
		t.Error("summary prompt should list every instruction")
	}
}

func TestSummarizeFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		text  TextGenerator
		count int
		want  string
	}{
		{"service error", newFakeText().fail(stageSummary, errors.New("timeout")), 3, TemplateSummary("office party", 3)},
		{"empty reply", newFakeText().reply(stageSummary, " \n"), 2, TemplateSummary("office party", 2)},
		{"no text generator", nil, 1, TemplateSummary("office party", 1)},
		{"no variants", newFakeText().reply(stageSummary, "unused"), 0, NoVariantsSummary("office party")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSummarizer(tt.text).Summarize(context.Background(), "office party", instructions(4), tt.count)
			if got != tt.want {
				t.Errorf("Summarize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarizeSkipsModelWithoutVariants(t *testing.T) {
	text := newFakeText().reply(stageSummary, "unused")
	NewSummarizer(text).Summarize(context.Background(), "x", instructions(4), 0)
	if text.calls(stageSummary) != 0 {
		t.Error("summary model should not be called when nothing was generated")
	}
}

func TestTemplateSummary(t *testing.T) {
	got := TemplateSummary(" gala ", 4)
	if !strings.Contains(got, `"gala"`) || !strings.Contains(got, "4 outfit options") {
		t.Errorf("TemplateSummary = %q", got)
	}
	if one := TemplateSummary("gala", 1); !strings.Contains(one, "1 outfit option ") {
		t.Errorf("singular summary = %q", one)
	}
}

func TestRedirect(t *testing.T) {
	static := assets.RenderRedirectMessage("whiten my teeth")

	tests := []struct {
		name string
		text TextGenerator
		want string
	}{
		{"static", nil, static},
		{"phrased", newFakeText().reply(stageRedirect, " I only do outfits! "), "I only do outfits!"},
		{"phrasing fails", newFakeText().fail(stageRedirect, errors.New("down")), static},
		{"phrasing empty", newFakeText().reply(stageRedirect, ""), static},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewRedirector(tt.text).Redirect(context.Background(), "whiten my teeth"); got != tt.want {
				t.Errorf("Redirect = %q, want %q", got, tt.want)
			}
		})
	}
}
