package stylist

import (
	"context"
	"errors"
	"testing"

	"github.com/fpang/vibe-fashion/internal/assets"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want Intent
	}{
		{"FASHION_REQUEST", IntentFashion},
		{"  fashion_request.\n", IntentFashion},
		{`"OUT_OF_TOPIC"`, IntentOutOfTopic},
		{"`OUT_OF_TOPIC`", IntentOutOfTopic},
		{"**FASHION_REQUEST**", IntentFashion},
		{"Label: OUT_OF_TOPIC", IntentOutOfTopic},
		{"The answer is FASHION_REQUEST", IntentFashion},
		{"maybe", Intent("MAYBE")},
		{"", Intent("")},
	}
	for _, tt := range tests {
		if got := normalizeLabel(tt.raw); got != tt.want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIntentInScope(t *testing.T) {
	if !IntentFashion.InScope() {
		t.Error("FASHION_REQUEST should be in scope")
	}
	for _, i := range []Intent{IntentOutOfTopic, IntentError, "MAYBE", ""} {
		if i.InScope() {
			t.Errorf("%q should not be in scope", i)
		}
	}
}

func TestClassifierAttachesImage(t *testing.T) {
	text := newFakeText().reply(stageClassify, "FASHION_REQUEST")
	req := testRequest("Make two streetwear looks I could wear with this pic")

	intent, err := NewClassifier(text).Classify(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intent != IntentFashion {
		t.Errorf("intent = %q, want FASHION_REQUEST", intent)
	}

	p := text.prompts[stageClassify][0]
	if p.System != assets.ClassifierSystemPrompt {
		t.Error("classifier should send the classifier system prompt")
	}
	if p.Image == nil || len(p.Image.Data) == 0 {
		t.Error("classifier should attach the photo")
	}
	if p.JSON {
		t.Error("classifier should not use JSON mode")
	}
}

func TestClassifierReturnsServiceError(t *testing.T) {
	boom := errors.New("connection refused")
	text := newFakeText().fail(stageClassify, boom)

	intent, err := NewClassifier(text).Classify(context.Background(), testRequest("outfit"))
	if !errors.Is(err, boom) {
		t.Errorf("expected service error, got %v", err)
	}
	if intent != IntentError {
		t.Errorf("intent = %q, want ERROR", intent)
	}
}

func TestKeywordClassifier(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"What should I wear to a job interview?", IntentFashion},
		{"Help me create a casual weekend OUTFIT", IntentFashion},
		{"Something for a summer party", IntentFashion},
		{"Can you whiten my teeth?", IntentOutOfTopic},
		{"Remove the background", IntentOutOfTopic},
	}
	for _, tt := range tests {
		got, err := KeywordClassifier{}.Classify(context.Background(), Request{UserText: tt.text})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
