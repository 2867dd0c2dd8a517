package stylist

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fpang/vibe-fashion/internal/assets"
	"github.com/fpang/vibe-fashion/internal/chat"
)

// Stage names used by fakeText to route prompts.
const (
	stageClassify = "classify"
	stagePlan     = "plan"
	stageSummary  = "summary"
	stageRedirect = "redirect"
)

func stageOf(p chat.Prompt) string {
	switch {
	case p.System == assets.ClassifierSystemPrompt:
		return stageClassify
	case p.JSON:
		return stagePlan
	case p.System == assets.SummarySystemPrompt:
		return stageSummary
	case p.System == assets.RedirectSystemPrompt:
		return stageRedirect
	}
	return "unknown"
}

// fakeText answers each workflow stage with a canned reply or error.
type fakeText struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	prompts map[string][]chat.Prompt
}

func newFakeText() *fakeText {
	return &fakeText{
		replies: make(map[string]string),
		errs:    make(map[string]error),
		prompts: make(map[string][]chat.Prompt),
	}
}

func (f *fakeText) reply(stage, text string) *fakeText {
	f.replies[stage] = text
	return f
}

func (f *fakeText) fail(stage string, err error) *fakeText {
	f.errs[stage] = err
	return f
}

func (f *fakeText) calls(stage string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts[stage])
}

func (f *fakeText) Generate(_ context.Context, p chat.Prompt) (string, error) {
	stage := stageOf(p)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts[stage] = append(f.prompts[stage], p)
	if err := f.errs[stage]; err != nil {
		return "", err
	}
	return f.replies[stage], nil
}

// fakeEditor returns a valid PNG unless edit overrides the behavior. It
// tracks peak concurrency.
type fakeEditor struct {
	edit       func(instruction string) (*chat.Image, error)
	delay      time.Duration
	configured *bool

	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeEditor) Edit(_ context.Context, _ chat.Image, instruction string) (*chat.Image, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.edit != nil {
		return f.edit(instruction)
	}
	return &chat.Image{Data: pngBytes, MIMEType: "image/png"}, nil
}

func (f *fakeEditor) Configured() bool {
	return f.configured == nil || *f.configured
}

var pngBytes = func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

func testRequest(text string) Request {
	return Request{
		ID:       "test-request",
		Image:    chat.Image{Data: pngBytes, MIMEType: "image/png"},
		UserText: text,
	}
}

func assertDecodable(t *testing.T, v Variant) {
	t.Helper()
	if _, _, err := image.Decode(bytes.NewReader(v.Image.Data)); err != nil {
		t.Errorf("variant %q image does not decode: %v", v.Description, err)
	}
}
