package stylist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/fpang/vibe-fashion/internal/imageutil"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// GenerateAll applies every instruction to src concurrently, at most
// min(len(instructions), maxConcurrency) calls at a time. Failed edits are
// logged and skipped; a panicking edit is recovered the same way. It waits
// for every call to settle and never returns an error.
//
// Variants are returned in completion order.
func GenerateAll(ctx context.Context, editor ImageEditor, src chat.Image, instructions []string, maxConcurrency int) []Variant {
	if len(instructions) == 0 || editor == nil {
		return nil
	}

	limit := len(instructions)
	if maxConcurrency > 0 && maxConcurrency < limit {
		limit = maxConcurrency
	}

	start := time.Now()
	log.Info().
		Int("instructions", len(instructions)).
		Int("concurrency", limit).
		Msg("Starting outfit image generation")

	var (
		mu       sync.Mutex
		variants = make([]Variant, 0, len(instructions))
	)

	// Tasks never return an error, so the group's context is never cancelled
	// and one slow edit does not abort its siblings.
	var g errgroup.Group
	g.SetLimit(limit)

	for i, instruction := range instructions {
		g.Go(func() error {
			v, err := editOne(ctx, editor, src, i, instruction)
			if err != nil {
				log.Warn().
					Err(err).
					Int("index", i+1).
					Str("instruction", truncate(instruction, 80)).
					Msg("Outfit edit failed, skipping variant")
				return nil
			}

			mu.Lock()
			variants = append(variants, *v)
			mu.Unlock()

			log.Debug().
				Int("index", i+1).
				Int("bytes", len(v.Image.Data)).
				Msg("Outfit variant ready")
			return nil
		})
	}
	_ = g.Wait()

	log.Info().
		Int("generated", len(variants)).
		Int("failed", len(instructions)-len(variants)).
		Dur("duration", time.Since(start)).
		Msg("Outfit image generation complete")

	return variants
}

// editOne runs a single edit. A panic, an empty result or bytes that do not
// decode as an image become an error.
func editOne(ctx context.Context, editor ImageEditor, src chat.Image, index int, instruction string) (v *Variant, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("edit panicked: %v", r)
		}
	}()

	img, err := editor.Edit(ctx, src, instruction)
	if err != nil {
		return nil, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("edit returned no image")
	}
	if _, err := imageutil.Validate(img.Data); err != nil {
		return nil, fmt.Errorf("edit returned an undecodable image: %w", err)
	}

	return &Variant{
		Instruction: instruction,
		Image:       *img,
		Description: fmt.Sprintf("Outfit %d", index+1),
	}, nil
}
