package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStartupLoggerEvent(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = original }()

	NewStartupLogger("vibe-api").
		Version("1.2.3").
		Backend("text", "ollama gemma3:12b").
		Feature("failOpen", true).
		Config("variantCount", "4").
		InitDuration(15 * time.Millisecond).
		Log()

	var evt map[string]any
	if err := json.Unmarshal(buf.Bytes(), &evt); err != nil {
		t.Fatalf("startup event is not JSON: %v\n%s", err, buf.String())
	}
	if evt["message"] != "Startup complete" {
		t.Errorf("message = %v", evt["message"])
	}
	process := evt["process"].(map[string]any)
	if process["name"] != "vibe-api" || process["version"] != "1.2.3" {
		t.Errorf("process = %v", process)
	}
	if evt["backends"].(map[string]any)["text"] != "ollama gemma3:12b" {
		t.Errorf("backends = %v", evt["backends"])
	}
	if evt["features"].(map[string]any)["failOpen"] != true {
		t.Errorf("features = %v", evt["features"])
	}
	if _, ok := evt["ssmParams"]; ok {
		t.Error("empty sections should be omitted")
	}
}
