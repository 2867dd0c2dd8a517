package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/fpang/vibe-fashion/internal/stylist"
)

func TestWriteLooks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "looks")
	variants := []stylist.Variant{
		{Description: "Outfit 2", Image: chat.Image{Data: []byte("png"), MIMEType: "image/png"}},
		{Description: "Outfit 1", Image: chat.Image{Data: []byte("jpg"), MIMEType: "image/jpeg"}},
	}

	paths, err := writeLooks(dir, variants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{filepath.Join(dir, "look-1.png"), filepath.Join(dir, "look-2.jpg")}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("path %d = %q, want %q", i, paths[i], p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, variants[i].Image.Data) {
			t.Errorf("%s content mismatch", p)
		}
	}
}

func TestWriteLooksEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")
	paths, err := writeLooks(dir, nil)
	if err != nil || paths != nil {
		t.Fatalf("got %v, %v", paths, err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("no directory should be created without looks")
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	result := &stylist.Result{
		Summary:     "Here are two looks.",
		Success:     true,
		IntentLabel: "FASHION_REQUEST",
		Variants: []stylist.Variant{
			{Description: "Outfit 1", Instruction: "Replace current clothing with a denim jacket."},
		},
	}
	printResult(&buf, result, []string{"looks/look-1.png"}, 75*time.Second)

	out := buf.String()
	for _, want := range []string{"Here are two looks.", "looks/look-1.png", "denim jacket", "Time: 1:15"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatDurationShort(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{9 * time.Second, "0:09"},
		{75 * time.Second, "1:15"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := formatDurationShort(tt.d); got != tt.want {
			t.Errorf("formatDurationShort(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	if extensionFor("image/webp") != ".webp" || extensionFor("") != ".png" {
		t.Error("unexpected extensions")
	}
}
