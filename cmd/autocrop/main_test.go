package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/autocrop/internal/imaging"
)

func writeImage(t *testing.T, dir, name string, w, h int, content image.Rectangle) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{255, 255, 255, 255}
			if (image.Point{x, y}).In(content) {
				c = color.NRGBA{200, 30, 30, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"--log-level", "error"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func size(t *testing.T, path string) (int, int) {
	t.Helper()
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestRun_SingleImage(t *testing.T) {
	dir := t.TempDir()
	path := writeImage(t, dir, "logo-header.png", 120, 80, image.Rect(50, 30, 70, 50))

	code, out, _ := runCmd(t, path)
	if code != exitOK {
		t.Fatalf("exit code: got %d, want %d", code, exitOK)
	}
	if w, h := size(t, path); w != 30 || h != 30 {
		t.Errorf("cropped size: got %dx%d, want 30x30", w, h)
	}
	want := "Cropped " + path + "\n  Original size: 120x80\n  Cropped size: 30x30\n  Saved to: " + path + "\n"
	if !strings.Contains(out, want) {
		t.Errorf("report: got\n%s\nwant\n%s", out, want)
	}
	if strings.Contains(out, "Done:") {
		t.Error("single image mode should not print a batch summary")
	}
}

func TestRun_SingleImageOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeImage(t, dir, "logo.png", 60, 60, image.Rect(10, 10, 20, 20))
	out := filepath.Join(dir, "logo_cropped.png")

	code, _, _ := runCmd(t, "--padding", "0", "-o", out, path)
	if code != exitOK {
		t.Fatalf("exit code: got %d", code)
	}
	if w, h := size(t, out); w != 10 || h != 10 {
		t.Errorf("output size: got %dx%d, want 10x10", w, h)
	}
	if w, _ := size(t, path); w != 60 {
		t.Error("input should be untouched")
	}
}

func TestRun_SingleImageNoContent(t *testing.T) {
	path := writeImage(t, t.TempDir(), "blank.png", 30, 30, image.Rectangle{})

	code, out, _ := runCmd(t, path)
	if code != exitNoContent {
		t.Errorf("exit code: got %d, want %d", code, exitNoContent)
	}
	if !strings.Contains(out, "No content found in "+path) {
		t.Errorf("report: %s", out)
	}
}

func TestRun_SingleImageNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.png")

	code, out, _ := runCmd(t, missing)
	if code != exitOK {
		t.Errorf("exit code: got %d, want %d", code, exitOK)
	}
	if !strings.Contains(out, "File not found: "+missing) {
		t.Errorf("report: %s", out)
	}
}

func TestRun_Batch(t *testing.T) {
	dir := t.TempDir()
	logo := writeImage(t, dir, "logo.png", 50, 50, image.Rect(20, 20, 30, 30))
	blank := writeImage(t, dir, "blank.png", 30, 30, image.Rectangle{})
	missing := filepath.Join(dir, "missing.png")

	code, out, _ := runCmd(t, "--suffix", "_cropped", "--workers", "2", logo, blank, missing)
	if code != exitOK {
		t.Errorf("batch exit code: got %d, want %d", code, exitOK)
	}
	if !strings.Contains(out, "Done: 1 cropped, 1 without content, 1 not found, 0 failed") {
		t.Errorf("summary missing:\n%s", out)
	}
	if w, h := size(t, filepath.Join(dir, "logo_cropped.png")); w != 20 || h != 20 {
		t.Errorf("cropped size: got %dx%d, want 20x20", w, h)
	}
}

func TestRun_JobFile(t *testing.T) {
	dir := t.TempDir()
	logo := writeImage(t, dir, "logo.png", 50, 50, image.Rect(20, 20, 30, 30))
	out := filepath.Join(dir, "tight.png")
	jobs := filepath.Join(dir, "jobs.yaml")
	content := "padding: 2\njobs:\n  - input: " + logo + "\n    output: " + out + "\n    padding: 0\n"
	if err := os.WriteFile(jobs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	code, _, _ := runCmd(t, "--config", jobs)
	if code != exitOK {
		t.Fatalf("exit code: got %d", code)
	}
	if w, h := size(t, out); w != 10 || h != 10 {
		t.Errorf("output size: got %dx%d, want 10x10", w, h)
	}
}

func TestRun_DryRun(t *testing.T) {
	path := writeImage(t, t.TempDir(), "logo.png", 50, 50, image.Rect(20, 20, 30, 30))

	code, out, _ := runCmd(t, "--dry-run", path)
	if code != exitOK {
		t.Fatalf("exit code: got %d", code)
	}
	if !strings.Contains(out, "Would crop "+path+" to (15,15)-(34,34)") {
		t.Errorf("report: %s", out)
	}
	if w, _ := size(t, path); w != 50 {
		t.Error("dry run wrote the file")
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no inputs", nil},
		{"unknown flag", []string{"--bogus", "a.png"}},
		{"bad mode", []string{"--mode", "luma", "a.png"}},
		{"bad log level", []string{"--log-level", "chatty", "a.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(context.Background(), tt.args, &stdout, &stderr); code != exitUsage {
				t.Errorf("exit code: got %d, want %d", code, exitUsage)
			}
			if stderr.Len() == 0 {
				t.Error("expected a message on stderr")
			}
		})
	}
}

func TestRun_MistypedFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"--thresold", "10", "a.png"}, &stdout, &stderr)
	if code != exitUsage {
		t.Errorf("exit code: got %d, want %d", code, exitUsage)
	}
	msg := stderr.String()
	if !strings.Contains(msg, "autocrop: unknown flag: --thresold") {
		t.Errorf("stderr should name the bad flag, got:\n%s", msg)
	}
	if !strings.Contains(msg, "--threshold") {
		t.Errorf("stderr should include usage, got:\n%s", msg)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"--version"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code: got %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "autocrop "+Version) {
		t.Errorf("version output: %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"--help"}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code: got %d", code)
	}
	if !strings.Contains(stderr.String(), "--threshold") {
		t.Errorf("usage should list flags: %s", stderr.String())
	}
}
