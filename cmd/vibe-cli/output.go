package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fpang/vibe-fashion/internal/stylist"
)

// extensionFor maps a variant MIME type to a file extension.
func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// writeLooks writes each variant to dir as look-<n><ext>, numbered in the
// order the variants completed.
func writeLooks(dir string, variants []stylist.Variant) ([]string, error) {
	if len(variants) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	paths := make([]string, 0, len(variants))
	for i, v := range variants {
		path := filepath.Join(dir, fmt.Sprintf("look-%d%s", i+1, extensionFor(v.Image.MIMEType)))
		if err := os.WriteFile(path, v.Image.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func printResult(w io.Writer, result *stylist.Result, paths []string, elapsed time.Duration) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "============================================")
	fmt.Fprintln(w, "Vibe Fashion")
	fmt.Fprintln(w, "============================================")
	fmt.Fprintln(w, result.Summary)
	fmt.Fprintln(w)

	for i, v := range result.Variants {
		fmt.Fprintf(w, "  %s  %s\n", paths[i], v.Description)
		fmt.Fprintf(w, "      %s\n", v.Instruction)
	}
	if !result.Success && result.ErrorDetail != "" {
		fmt.Fprintf(w, "Error: %s\n", result.ErrorDetail)
	}
	fmt.Fprintf(w, "\nIntent: %s  Looks: %d  Time: %s\n", result.IntentLabel, len(result.Variants), formatDurationShort(elapsed))
}

// formatDurationShort formats a duration as M:SS or H:MM:SS.
func formatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
