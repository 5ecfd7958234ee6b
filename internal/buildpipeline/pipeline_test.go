package buildpipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cscpp/internal/backend/cpp"
	"cscpp/internal/diag"
	"cscpp/internal/driver"
	"cscpp/internal/testkit"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) has(file string, stage Stage, status Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.File == file && ev.Stage == stage && ev.Status == status {
			return true
		}
	}
	return false
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLayoutPath(t *testing.T) {
	root := filepath.Join("proj", "build")
	tests := []struct {
		name   string
		layout Layout
		single bool
		want   string
	}{
		{"hosted", Layout{Root: root}, true, filepath.Join(root, "src", "program.cpp")},
		{"device", Layout{Root: root, Profile: cpp.ProfileDevice}, true, filepath.Join(root, "arduino", "program", "program.ino")},
		{"archive", Layout{Root: root, Archive: true}, true, filepath.Join(root, "out", "out.cu")},
		{"hosted multi", Layout{Root: root}, false, filepath.Join(root, "src", "blink.cpp")},
		{"device multi", Layout{Root: root, Profile: cpp.ProfileDevice}, false, filepath.Join(root, "arduino", "blink", "blink.ino")},
		{"archive multi", Layout{Root: root, Archive: true}, false, filepath.Join(root, "out", "blink.cu")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layout.Path(filepath.Join("src", "Blink.cs"), tt.single); got != tt.want {
				t.Fatalf("Path = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunWritesHostedOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "src/Program.cs", testkit.BasicSource)
	out := filepath.Join(dir, "build")
	rec := &recorder{}

	res, err := Run(context.Background(), &Request{
		Sources:  []string{src},
		BaseDir:  dir,
		Flags:    driver.Flags{GenerateOutput: true},
		Jobs:     2,
		Layout:   Layout{Root: out},
		Progress: rec,
	})
	if err != nil {
		t.Fatalf("Run: %v (%+v)", err, res.Bag.Items())
	}
	want := filepath.Join(out, "src", "program.cpp")
	if res.Units[0].Output != want {
		t.Fatalf("output = %q, want %q", res.Units[0].Output, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(data)
	for _, frag := range []string{"#include <MicroSystem/Controllers.h>", "namespace SampleProject", "int main()", "SampleProject::Program::Main();"} {
		if !strings.Contains(text, frag) {
			t.Fatalf("output lacks %q:\n%s", frag, text)
		}
	}
	for _, stage := range Stages {
		if !res.Timings.Has(stage) {
			t.Fatalf("no timing for %s", stage)
		}
	}
	if res.Timings.Total() < res.Timings.Duration(StageCompile) {
		t.Fatalf("total below compile time")
	}
	file := "src/Program.cs"
	if !rec.has(file, StageLoad, StatusQueued) || !rec.has(file, StageParse, StatusDone) ||
		!rec.has(file, StageCompile, StatusWorking) || !rec.has(file, StageCompile, StatusDone) ||
		!rec.has(file, StageWrite, StatusDone) {
		t.Fatalf("missing progress events: %+v", rec.events)
	}
}

func TestRunDeviceMultiSource(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "Basic.cs", testkit.BasicSource)
	b := writeSource(t, dir, "Blink.cs", testkit.BlinkSource)
	out := filepath.Join(dir, "out")
	flags := driver.Flags{GenerateOutput: true, DeviceProfile: true}
	flags.Options.Fallback = cpp.CommentFallback

	res, err := Run(context.Background(), &Request{
		Sources: []string{a, b},
		Flags:   flags,
		Layout:  Layout{Root: out, Profile: cpp.ProfileDevice},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range []string{"basic", "blink"} {
		path := filepath.Join(out, "arduino", name, name+".ino")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if !strings.Contains(string(data), "void setup()") {
			t.Fatalf("%s lacks setup():\n%s", path, data)
		}
	}
	if len(res.Units) != 2 || res.Units[1].Tree == nil {
		t.Fatalf("unexpected units: %+v", res.Units)
	}
}

func TestRunFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "Basic.cs", testkit.BasicSource)
	// Blink uses loops, which fail without the comment fallback
	bad := writeSource(t, dir, "Blink.cs", testkit.BlinkSource)
	out := filepath.Join(dir, "out")

	res, err := Run(context.Background(), &Request{
		Sources: []string{good, bad},
		Flags:   driver.Flags{GenerateOutput: true},
		Layout:  Layout{Root: out},
	})
	if err == nil {
		t.Fatalf("expected compile failure")
	}
	if !errors.Is(err, cpp.ErrUnsupportedConstruct) {
		t.Fatalf("error = %v, want ErrUnsupportedConstruct", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("output dir created on failure: %v", statErr)
	}
	if res.Units[0].Result == nil || res.Units[0].Result.Text == "" {
		t.Fatalf("good unit should still translate")
	}
	if !hasCode(res.Bag, diag.GenUnsupportedConstruct) {
		t.Fatalf("missing GEN diagnostic: %+v", res.Bag.Items())
	}
}

func TestRunSyntaxAndLoadErrors(t *testing.T) {
	dir := t.TempDir()
	broken := writeSource(t, dir, "Broken.cs", "namespace N { class C { static void M() { f( } } }")

	res, err := Run(context.Background(), &Request{Sources: []string{broken}, Flags: driver.Flags{GenerateOutput: true}})
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("error = %v, want ErrSyntax", err)
	}
	if !res.Bag.HasErrors() || res.Timings.Has(StageCompile) {
		t.Fatalf("syntax failure should stop before compile")
	}

	res, err = Run(context.Background(), &Request{Sources: []string{filepath.Join(dir, "missing.cs")}})
	if err == nil || !strings.HasPrefix(err.Error(), "load:") {
		t.Fatalf("error = %v, want load failure", err)
	}
	if !hasCode(res.Bag, diag.IOLoadFileError) {
		t.Fatalf("missing IO diagnostic: %+v", res.Bag.Items())
	}

	if _, err := Run(context.Background(), &Request{}); err == nil {
		t.Fatalf("expected error for empty request")
	}
}

func TestRunCanceled(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "Basic.cs", testkit.BasicSource)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, &Request{Sources: []string{src}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestNormalizeProgressFiles(t *testing.T) {
	base := t.TempDir()
	files := []string{
		filepath.Join(base, "b.cs"),
		filepath.Join(base, "a.cs"),
		filepath.Join(base, "a.cs"),
		"",
	}
	got := NormalizeProgressFiles(files, base)
	if strings.Join(got, ",") != "a.cs,b.cs" {
		t.Fatalf("NormalizeProgressFiles = %v", got)
	}
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}
