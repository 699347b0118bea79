package qr

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// flaky reports ErrUnavailable for the first failures calls
type flaky struct {
	failures int32
	err      error
	calls    atomic.Int32
}

func (f *flaky) Render(_ context.Context, link string, size int) (Image, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return Image{}, f.err
	}
	if n <= f.failures {
		return Image{}, ErrUnavailable
	}
	return Image{PNG: []byte("png:" + link), Size: size}, nil
}

func TestRemoteURL(t *testing.T) {
	got := RemoteURL("https://api.qrserver.com/v1/create-qr-code/", "https://leveragejournel.vercel.app/dashboard?tab=stats", 100)
	want := "https://api.qrserver.com/v1/create-qr-code/?size=100x100&data=https%3A%2F%2Fleveragejournel.vercel.app%2Fdashboard%3Ftab%3Dstats&bgcolor=FFFFFF&color=000000"
	if got != want {
		t.Errorf("RemoteURL() = %q, want %q", got, want)
	}
}

func TestLocalRenderer(t *testing.T) {
	img, err := NewLocalRenderer().Render(context.Background(), "https://example.com/dashboard", 100)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(img.PNG, []byte("\x89PNG")) {
		t.Error("Render() did not produce a PNG")
	}
	if !strings.HasPrefix(img.Src(), "data:image/png;base64,") {
		t.Errorf("Src() = %.30q, want a PNG data URI", img.Src())
	}
	if !strings.Contains(img.HTML("Scan"), `width="100" height="100"`) {
		t.Errorf("HTML() = %q, want 100px dimensions", img.HTML("Scan"))
	}
}

func TestResolver(t *testing.T) {
	link := Link{ID: "qr-code-chapter1", URL: "https://example.com/dashboard/goals", Size: 100}

	tests := []struct {
		name          string
		primary       *flaky
		fallback      Renderer
		wantOK        bool
		wantOutcome   Outcome
		wantPrimaries int32
	}{
		{"first try", &flaky{}, NewRemoteRenderer(), true, OutcomeLocal, 1},
		{"recovers within retries", &flaky{failures: 3}, NewRemoteRenderer(), true, OutcomeLocal, 4},
		{"falls back after retries", &flaky{failures: 100}, NewRemoteRenderer(), true, OutcomeRemote, 6},
		{"hard error skips retries", &flaky{err: errors.New("too long")}, NewRemoteRenderer(), true, OutcomeRemote, 1},
		{"both fail", &flaky{failures: 100}, &flaky{err: errors.New("offline")}, false, OutcomeEmpty, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var outcomes []Outcome
			r := &Resolver{
				Primary:  tt.primary,
				Fallback: tt.fallback,
				Retries:  5,
				Delay:    time.Millisecond,
				OnResult: func(_ string, o Outcome) { outcomes = append(outcomes, o) },
			}

			img, ok := r.Resolve(context.Background(), link)
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v", ok, tt.wantOK)
			}
			if got := tt.primary.calls.Load(); got != tt.wantPrimaries {
				t.Errorf("primary called %d times, want %d", got, tt.wantPrimaries)
			}
			if diff := cmp.Diff([]Outcome{tt.wantOutcome}, outcomes); diff != "" {
				t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
			}
			if tt.wantOutcome == OutcomeRemote && !strings.Contains(img.URL, "size=100x100") {
				t.Errorf("fallback image URL = %q", img.URL)
			}
		})
	}
}

func TestResolverCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := &flaky{failures: 100}
	r := &Resolver{Primary: primary, Fallback: NewRemoteRenderer(), Retries: 5, Delay: time.Hour}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if _, ok := r.Resolve(ctx, Link{ID: "x", URL: "u", Size: 100}); ok {
		t.Error("Resolve() after cancel should leave the slot empty")
	}
	if primary.calls.Load() != 1 {
		t.Errorf("primary called %d times, want 1", primary.calls.Load())
	}
}

const slotDoc = `<!DOCTYPE html><html><body><div id="journal-content">
<a href="/dashboard/goals"><div id="qr-code-chapter1" class="qr-slot" data-size="100"></div></a>
<p>It's "quoted" &amp; kept</p>
<a href="/dashboard"><div id="qr-code-chapter3" class="qr-slot" data-size="150"></div></a>
<div id="qr-code-chapter9" class="qr-slot" data-size="100"></div>
</div></body></html>`

func TestFindSlots(t *testing.T) {
	slots, err := FindSlots([]byte(slotDoc))
	if err != nil {
		t.Fatalf("FindSlots() error = %v", err)
	}
	want := []Slot{
		{ID: "qr-code-chapter1", Size: 100},
		{ID: "qr-code-chapter3", Size: 150},
		{ID: "qr-code-chapter9", Size: 100},
	}
	if diff := cmp.Diff(want, slots); diff != "" {
		t.Errorf("FindSlots() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhance(t *testing.T) {
	links := []Link{
		{ID: "qr-code-chapter1", URL: "https://example.com/dashboard/goals", Size: 100, Caption: "Access Vision Board"},
		{ID: "qr-code-chapter3", URL: "https://example.com/dashboard", Size: 150, Caption: "Sync"},
		{ID: "qr-code-chapter5", URL: "https://example.com/dashboard", Size: 150},
	}

	var (
		mu       sync.Mutex
		resolved []string
	)
	r := &Resolver{
		Primary: &flaky{},
		OnResult: func(id string, _ Outcome) {
			mu.Lock()
			resolved = append(resolved, id)
			mu.Unlock()
		},
	}

	out, n, err := NewEnhancer(r, links).Enhance(context.Background(), []byte(slotDoc))
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Enhance() filled %d slots, want 2", n)
	}
	if len(resolved) != 2 {
		t.Errorf("resolved %v, want only the anchors present in the document", resolved)
	}

	doc := string(out)
	if !strings.Contains(doc, `<div id="qr-code-chapter1" class="qr-slot" data-size="100"><img src=`) {
		t.Error("chapter 1 slot not filled")
	}
	if !strings.Contains(doc, `alt="Access Vision Board" width="100" height="100">`) {
		t.Error("chapter 1 image has wrong alt or size")
	}
	if !strings.Contains(doc, `<div id="qr-code-chapter9" class="qr-slot" data-size="100"></div>`) {
		t.Error("slot without a link should stay empty")
	}
	if !strings.Contains(doc, `<p>It's "quoted" &amp; kept</p>`) {
		t.Error("markup outside slots was altered")
	}
}

func TestEnhanceNothingResolved(t *testing.T) {
	r := &Resolver{Primary: &flaky{err: errors.New("broken")}}
	out, n, err := NewEnhancer(r, ChapterLinks("")).Enhance(context.Background(), []byte(slotDoc))
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	if n != 0 || string(out) != slotDoc {
		t.Errorf("Enhance() = %d filled and a changed document, want untouched", n)
	}
}

func TestChapterLinks(t *testing.T) {
	links := ChapterLinks("https://journal.example.com/")

	var got []string
	for _, l := range links {
		got = append(got, l.URL)
	}
	want := []string{
		"https://journal.example.com/dashboard/goals",
		"https://journal.example.com/dashboard/daily",
		"https://journal.example.com/dashboard",
		"https://journal.example.com/dashboard?tab=stats",
		"https://journal.example.com/dashboard",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ChapterLinks() mismatch (-want +got):\n%s", diff)
	}
	if links[0].Size != 100 || links[1].Size != 150 {
		t.Errorf("sizes = %d, %d, want 100, 150", links[0].Size, links[1].Size)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	paths, err := Export(dir, "https://journal.example.com")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	want := []string{
		"qr-chapter1-goals.png",
		"qr-chapter2-daily.png",
		"qr-chapter3-dashboard.png",
		"qr-chapter4-stats.png",
		"qr-chapter5-dashboard.png",
	}
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", p, err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Errorf("%s is not a PNG", p)
		}
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("exported files mismatch (-want +got):\n%s", diff)
	}
}

func TestExportMissingDir(t *testing.T) {
	if _, err := Export(filepath.Join(t.TempDir(), "nope"), ""); err == nil {
		t.Error("Export() into a missing directory should fail")
	}
}
