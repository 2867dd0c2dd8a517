package stylist

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/fpang/vibe-fashion/internal/chat"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder card geometry.
const (
	placeholderWidth     = 400
	placeholderHeight    = 600
	placeholderMargin    = 20
	placeholderTextWidth = 360
	placeholderMaxLines  = 4
	placeholderMaxChars  = 80
	placeholderLineStep  = 25
)

// placeholderPalettes are picked by variant index: warm, pastel, bold, vibrant.
var placeholderPalettes = [][]color.RGBA{
	{hexColor(0xFF6B6B), hexColor(0x4ECDC4), hexColor(0x45B7D1), hexColor(0x96CEB4)},
	{hexColor(0xA8E6CF), hexColor(0xFFD3A5), hexColor(0xFFAAA5), hexColor(0xFF8B94)},
	{hexColor(0x2C3E50), hexColor(0x34495E), hexColor(0xE74C3C), hexColor(0xF39C12)},
	{hexColor(0x8E44AD), hexColor(0x9B59B6), hexColor(0x3498DB), hexColor(0x1ABC9C)},
}

func hexColor(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

// PlaceholderGenerator draws stand-in cards when no image editor is configured.
type PlaceholderGenerator struct {
	face font.Face
}

// NewPlaceholderGenerator returns a generator using the built-in bitmap font.
func NewPlaceholderGenerator() *PlaceholderGenerator {
	return &PlaceholderGenerator{face: basicfont.Face7x13}
}

// Render draws one PNG card per instruction, in instruction order. A card
// that fails to encode is skipped.
func (g *PlaceholderGenerator) Render(instructions []string) []Variant {
	variants := make([]Variant, 0, len(instructions))
	for i, instruction := range instructions {
		data, err := g.card(i, instruction)
		if err != nil {
			log.Warn().Err(err).Int("index", i+1).Msg("Failed to render placeholder card")
			continue
		}
		variants = append(variants, Variant{
			Instruction: instruction,
			Image:       chat.Image{Data: data, MIMEType: "image/png"},
			Description: fmt.Sprintf("Outfit %d", i+1),
		})
	}
	log.Info().Int("count", len(variants)).Msg("Rendered placeholder outfit cards")
	return variants
}

func (g *PlaceholderGenerator) card(index int, instruction string) ([]byte, error) {
	palette := placeholderPalettes[index%len(placeholderPalettes)]
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))

	// Vertical fade from white to the palette's base color.
	base := palette[0]
	for y := 0; y < placeholderHeight; y++ {
		c := blend(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, base, float64(y)/placeholderHeight)
		draw.Draw(img, image.Rect(0, y, placeholderWidth, y+1), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	d := &font.Drawer{Dst: img, Src: image.Black, Face: g.face}

	// Title, drawn twice one pixel apart to read as bold.
	title := fmt.Sprintf("Outfit %d", index+1)
	for dx := 0; dx < 2; dx++ {
		d.Dot = fixed.P(placeholderMargin+dx, 50)
		d.DrawString(title)
	}

	y := 100
	for _, line := range wrapText(d, truncateRunes(instruction, placeholderMaxChars), placeholderTextWidth, placeholderMaxLines) {
		d.Dot = fixed.P(placeholderMargin, y)
		d.DrawString(line)
		y += placeholderLineStep
	}

	// Garment icon: outlined rectangle with a palette fill.
	strokeRect(img, image.Rect(150, 250, 250, 400), 2, color.Black)
	draw.Draw(img, image.Rect(160, 260, 240, 390), &image.Uniform{C: palette[1]}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapText splits text into lines no wider than maxWidth pixels, keeping at
// most maxLines. A single word wider than the line gets a line of its own.
func wrapText(d *font.Drawer, text string, maxWidth, maxLines int) []string {
	limit := fixed.I(maxWidth)
	var lines []string
	var current []string
	for _, word := range strings.Fields(text) {
		candidate := strings.Join(append(current, word), " ")
		if d.MeasureString(candidate) <= limit || len(current) == 0 {
			current = append(current, word)
			continue
		}
		lines = append(lines, strings.Join(current, " "))
		current = []string{word}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

func truncateRunes(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars]) + "..."
}

func blend(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xFF}
}

func strokeRect(img *image.RGBA, r image.Rectangle, width int, c color.Color) {
	u := &image.Uniform{C: c}
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}
