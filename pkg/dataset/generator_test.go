package dataset

import (
	"context"
	stderrors "errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/poolsynth/pkg/cache"
	"github.com/matzehuels/poolsynth/pkg/config"
	"github.com/matzehuels/poolsynth/pkg/errors"
	"github.com/matzehuels/poolsynth/pkg/export"
	"github.com/matzehuels/poolsynth/pkg/observability"
	"github.com/matzehuels/poolsynth/pkg/render"
	"github.com/matzehuels/poolsynth/pkg/scene"
)

// fakeRenderer records the entity visibility of every render request.
type fakeRenderer struct {
	mu      sync.Mutex
	visible []bool
	fail    func(call int) error
}

func (f *fakeRenderer) Render(_ context.Context, s *scene.State, w, h int) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := len(f.visible)
	f.visible = append(f.visible, s.EntitiesVisible())
	if f.fail != nil {
		if err := f.fail(call); err != nil {
			return nil, err
		}
	}
	return imaging.New(w, h, color.NRGBA{R: 30, G: 110, B: 50, A: 255}), nil
}

func (f *fakeRenderer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visible)
}

func testConfig(t *testing.T, total int) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output = filepath.Join(t.TempDir(), "dataset")
	cfg.TotalImages = total
	cfg.ImageWidth = 16
	cfg.ImageHeight = 16
	return cfg
}

func newTestGenerator(t *testing.T, cfg config.Config, opts Options) *Generator {
	t.Helper()
	if opts.Hooks == nil {
		opts.Hooks = observability.NoopGenerationHooks{}
	}
	g, err := NewGenerator(cfg, opts)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	return len(entries)
}

func TestRunBelowThreshold(t *testing.T) {
	cfg := testConfig(t, 10)
	g := newTestGenerator(t, cfg, Options{Renderer: &fakeRenderer{}})

	manifest, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	root := cfg.Output
	if n := countFiles(t, filepath.Join(root, "train", ImagesDir)); n != 10 {
		t.Errorf("train images = %d, want 10", n)
	}
	if n := countFiles(t, filepath.Join(root, "train", LabelsDir)); n != 10 {
		t.Errorf("train labels = %d, want 10", n)
	}
	for _, split := range []string{"valid", "test"} {
		for _, sub := range []string{ImagesDir, LabelsDir} {
			if n := countFiles(t, filepath.Join(root, split, sub)); n != 0 {
				t.Errorf("%s/%s has %d files, want 0", split, sub, n)
			}
		}
	}

	if manifest.Total() != 10 {
		t.Errorf("manifest total = %d, want 10", manifest.Total())
	}
	for _, name := range []string{export.DataYAMLFile, export.GenerationFile} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestRunSplits(t *testing.T) {
	cfg := testConfig(t, 100)
	g := newTestGenerator(t, cfg, Options{Renderer: &fakeRenderer{}})

	manifest, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := map[string]int{"train": 70, "valid": 20, "test": 10}
	for split, n := range want {
		if got := countFiles(t, filepath.Join(cfg.Output, split, ImagesDir)); got != n {
			t.Errorf("%s images = %d, want %d", split, got, n)
		}
		if got := countFiles(t, filepath.Join(cfg.Output, split, LabelsDir)); got != n {
			t.Errorf("%s labels = %d, want %d", split, got, n)
		}
		if got := manifest.Splits[split].Generated; got != n {
			t.Errorf("%s generated = %d, want %d", split, got, n)
		}
	}
}

func TestRunBackgroundFrames(t *testing.T) {
	cfg := testConfig(t, 35)
	fr := &fakeRenderer{}
	g := newTestGenerator(t, cfg, Options{Renderer: fr})

	manifest, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(fr.visible) != 35 {
		t.Fatalf("render calls = %d, want 35", len(fr.visible))
	}
	labeled := 0
	for i := range 35 {
		background := i%30 == 0
		if fr.visible[i] == background {
			t.Errorf("frame %d rendered with entities visible=%v", i, fr.visible[i])
		}

		data, err := os.ReadFile(g.Layout().LabelPath("train", i))
		if err != nil {
			t.Fatal(err)
		}
		if background && len(data) != 0 {
			t.Errorf("background frame %d has labels:\n%s", i, data)
		}
		if len(data) > 0 {
			labeled++
		}
	}
	if labeled == 0 {
		t.Error("no foreground frame produced any label")
	}
	if got := manifest.Splits["train"].Background; got != 2 {
		t.Errorf("background frames = %d, want 2", got)
	}
}

func TestRunDeterministic(t *testing.T) {
	a := testConfig(t, 12)
	b := a
	b.Output = filepath.Join(t.TempDir(), "other")

	for _, cfg := range []config.Config{a, b} {
		if _, err := newTestGenerator(t, cfg, Options{Renderer: &fakeRenderer{}}).Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	for i := range 12 {
		la, _ := os.ReadFile(NewLayout(a.Output).LabelPath("train", i))
		lb, _ := os.ReadFile(NewLayout(b.Output).LabelPath("train", i))
		if string(la) != string(lb) {
			t.Errorf("frame %d labels differ between runs with the same seed", i)
		}
	}
}

func TestRunRemovesStaleOutput(t *testing.T) {
	cfg := testConfig(t, 3)
	stale := filepath.Join(cfg.Output, "test", ImagesDir, "image_50.jpg")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := newTestGenerator(t, cfg, Options{Renderer: &fakeRenderer{}}).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file from a previous run survived regeneration")
	}
}

func TestRunRenderFailure(t *testing.T) {
	cfg := testConfig(t, 8)
	boom := stderrors.New("gpu lost")
	fr := &fakeRenderer{fail: func(call int) error {
		if call == 3 {
			return boom
		}
		return nil
	}}
	g := newTestGenerator(t, cfg, Options{Renderer: fr})

	_, err := g.Run(context.Background())
	var fe *FrameError
	if !stderrors.As(err, &fe) {
		t.Fatalf("Run error = %v, want *FrameError", err)
	}
	if fe.Split != "train" || fe.Index != 3 {
		t.Errorf("failed at %s/%d, want train/3", fe.Split, fe.Index)
	}
	if !stderrors.Is(err, boom) {
		t.Error("FrameError should wrap the render error")
	}
	if !errors.Is(err, errors.ErrCodeRender) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeRender)
	}

	if _, err := os.Stat(g.Layout().ImagePath("train", 3)); !os.IsNotExist(err) {
		t.Error("no image may be written for a failed capture")
	}
	if fr.calls() != 4 {
		t.Errorf("render calls = %d, want 4", fr.calls())
	}
}

func TestRunBadBuffer(t *testing.T) {
	cfg := testConfig(t, 2)
	small := render.RendererFunc(func(context.Context, *scene.State, int, int) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
	})
	_, err := newTestGenerator(t, cfg, Options{Renderer: small}).Run(context.Background())
	if !stderrors.Is(err, render.ErrBadBuffer) {
		t.Errorf("Run error = %v, want ErrBadBuffer", err)
	}
}

func TestRunCanceled(t *testing.T) {
	cfg := testConfig(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fr := &fakeRenderer{fail: func(call int) error {
		if call == 1 {
			cancel()
		}
		return nil
	}}
	g := newTestGenerator(t, cfg, Options{Renderer: fr})

	_, err := g.Run(ctx)
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	var fe *FrameError
	if !stderrors.As(err, &fe) || fe.Index != 2 {
		t.Errorf("stopped at %v, want train/2", err)
	}
	// The frame in flight when cancel was requested completes.
	if !export.FrameExists(g.Layout().ImagePath("train", 1), g.Layout().LabelPath("train", 1)) {
		t.Error("frame 1 should be complete")
	}
	if _, err := os.Stat(g.Layout().ImagePath("train", 2)); !os.IsNotExist(err) {
		t.Error("frame 2 should not be started")
	}
}

func TestRunResume(t *testing.T) {
	cfg := testConfig(t, 6)
	store, err := cache.NewFileCache(filepath.Join(t.TempDir(), cache.CheckpointDir))
	if err != nil {
		t.Fatal(err)
	}

	first := &fakeRenderer{fail: func(call int) error {
		if call == 4 {
			return stderrors.New("crash")
		}
		return nil
	}}
	if _, err := newTestGenerator(t, cfg, Options{Renderer: first, Store: store}).Run(context.Background()); err == nil {
		t.Fatal("first run should fail at frame 4")
	}

	second := &fakeRenderer{}
	manifest, err := newTestGenerator(t, cfg, Options{Renderer: second, Store: store, Resume: true}).Run(context.Background())
	if err != nil {
		t.Fatalf("resumed Run: %v", err)
	}
	if second.calls() != 2 {
		t.Errorf("resumed run rendered %d frames, want 2", second.calls())
	}
	st := manifest.Splits["train"]
	if st.Resumed != 4 || st.Generated != 2 {
		t.Errorf("resumed/generated = %d/%d, want 4/2", st.Resumed, st.Generated)
	}
	if st.Background != 1 {
		t.Errorf("background = %d, want 1", st.Background)
	}

	// A frame whose files went missing is regenerated even if recorded.
	if err := os.Remove(NewLayout(cfg.Output).ImagePath("train", 2)); err != nil {
		t.Fatal(err)
	}
	third := &fakeRenderer{}
	if _, err := newTestGenerator(t, cfg, Options{Renderer: third, Store: store, Resume: true}).Run(context.Background()); err != nil {
		t.Fatalf("third Run: %v", err)
	}
	if third.calls() != 1 {
		t.Errorf("third run rendered %d frames, want 1", third.calls())
	}
}

func TestRunResumeIgnoresOtherConfig(t *testing.T) {
	cfg := testConfig(t, 3)
	store, err := cache.NewFileCache(filepath.Join(t.TempDir(), cache.CheckpointDir))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newTestGenerator(t, cfg, Options{Renderer: &fakeRenderer{}, Store: store}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	cfg.Seed++
	fr := &fakeRenderer{}
	if _, err := newTestGenerator(t, cfg, Options{Renderer: fr, Store: store, Resume: true}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fr.calls() != 3 {
		t.Errorf("changed config rendered %d frames, want 3", fr.calls())
	}
}

type recordingHooks struct {
	starts    []string
	frames    int
	summaries []observability.SplitSummary
}

func (h *recordingHooks) OnSplitStart(_ context.Context, split string, _ int) {
	h.starts = append(h.starts, split)
}
func (h *recordingHooks) OnFrameComplete(context.Context, observability.FrameEvent) { h.frames++ }
func (h *recordingHooks) OnSplitComplete(_ context.Context, s observability.SplitSummary) {
	h.summaries = append(h.summaries, s)
}

func TestRunHooks(t *testing.T) {
	cfg := testConfig(t, 100)
	hooks := &recordingHooks{}
	g := newTestGenerator(t, cfg, Options{Renderer: &fakeRenderer{}, Hooks: hooks})
	if _, err := g.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(hooks.starts) != 3 || hooks.starts[0] != "train" || hooks.starts[2] != "test" {
		t.Errorf("split starts = %v", hooks.starts)
	}
	if hooks.frames != 100 {
		t.Errorf("frame events = %d, want 100", hooks.frames)
	}
	if len(hooks.summaries) != 3 || hooks.summaries[0].Generated != 70 {
		t.Errorf("summaries = %+v", hooks.summaries)
	}
}

func TestNewGeneratorValidation(t *testing.T) {
	cfg := testConfig(t, 5)
	if _, err := NewGenerator(cfg, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing renderer: %v", err)
	}

	cfg.TrainRatio = 2
	if _, err := NewGenerator(cfg, Options{Renderer: &fakeRenderer{}}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad config: %v", err)
	}
}

func TestRunKey(t *testing.T) {
	a, err := RunKey(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := RunKey(config.Default())
	if a != b {
		t.Error("RunKey should be deterministic")
	}
	cfg := config.Default()
	cfg.Camera.Pitch.Max++
	if c, _ := RunKey(cfg); c == a {
		t.Error("RunKey should change with the config")
	}
}
