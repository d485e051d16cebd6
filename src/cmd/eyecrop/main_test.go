package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vr-dimension/src/settings"
	"vr-dimension/src/window"
)

var (
	leftEye  = color.RGBA{R: 200, A: 255}
	rightEye = color.RGBA{B: 200, A: 255}
)

// stereoPNG encodes a side-by-side frame: red left eye, blue right eye.
func stereoPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, leftEye)
			} else {
				img.Set(x, y, rightEye)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	err := cmd.ParseFlags([]string{"--file", "in.png", "--out", "eye.png", "--resolution", "64x32", "--brightness", "-10", "--contrast", "1.5", "--json"})
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.filePath != "in.png" || opts.outPath != "eye.png" || opts.resolution != "64x32" {
		t.Fatalf("unexpected options: %+v", *opts)
	}
	if opts.brightness != -10 || opts.contrast != 1.5 || !opts.jsonOutput {
		t.Fatalf("unexpected numeric options: %+v", *opts)
	}
}

func TestProcessFileToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "frame.png")
	out := filepath.Join(dir, "eye.png")
	if err := os.WriteFile(in, stereoPNG(t, 400, 200), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runWithArgs([]string{"eyecrop", "--file", in, "--out", out, "--resolution", "16x16"}); err != nil {
		t.Fatalf("eyecrop failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("output size = %v, want 16x16", b)
	}
	r, _, bl, _ := img.At(8, 8).RGBA()
	if r != 0 || bl>>8 != 200 {
		t.Errorf("centre pixel should come from the right eye, got r=%d b=%d", r>>8, bl>>8)
	}
}

func TestProcessStdinToStdout(t *testing.T) {
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetIn(bytes.NewReader(stereoPNG(t, 200, 100)))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--file", "-", "--resolution", "20x10", "--json"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("eyecrop failed: %v", err)
	}
	img, err := png.Decode(&stdout)
	if err != nil {
		t.Fatalf("stdout is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Fatalf("output size = %v, want 20x10", b)
	}

	var res Result
	if err := json.Unmarshal(stderr.Bytes(), &res); err != nil {
		t.Fatalf("summary is not JSON: %v\n%s", err, stderr.String())
	}
	if res.Format != "png" || res.Input != "200x100" || res.Size != "20x10" {
		t.Errorf("unexpected summary: %+v", res)
	}
}

func TestSettingsFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	s := settings.Default()
	s.Resolution = "32x32"
	s.Contrast = 2
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--file", "x", "--settings", path, "--brightness", "12"}); err != nil {
		t.Fatal(err)
	}
	got, err := resolveSettings(cmd, *opts)
	if err != nil {
		t.Fatalf("resolveSettings: %v", err)
	}
	if got.Resolution != "32x32" || got.Contrast != 2 || got.Brightness != 12 {
		t.Errorf("resolved %+v", *got)
	}
}

func TestRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.png")
	junk := filepath.Join(dir, "junk.png")
	frame := filepath.Join(dir, "frame.png")
	_ = os.WriteFile(empty, nil, 0644)
	_ = os.WriteFile(junk, []byte("definitely not an image"), 0644)
	_ = os.WriteFile(frame, stereoPNG(t, 40, 20), 0644)

	cases := map[string][]string{
		"missing file":   {"eyecrop", "--file", filepath.Join(dir, "nope.png")},
		"empty file":     {"eyecrop", "--file", empty},
		"not an image":   {"eyecrop", "--file", junk},
		"bad resolution": {"eyecrop", "--file", frame, "--resolution", "wide"},
		"no file flag":   {"eyecrop"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if err := runWithArgs(args); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestRenderWindows(t *testing.T) {
	infos := []window.Info{
		{Title: "Notepad", Bounds: window.Bounds{Width: 640, Height: 480}},
		{Title: "Microsoft Flight Simulator", Bounds: window.Bounds{Left: 10, Top: 20, Width: 3840, Height: 1080}},
	}
	out := renderWindows(infos, "flight")
	for _, want := range []string{"2 windows", "Notepad", "Microsoft Flight Simulator", "3840x1080@(10,20)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(renderWindows(nil, ""), "No capturable windows") {
		t.Error("empty list should say so")
	}
}

func TestWriteWindowsJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeWindowsJSON(&buf, []window.Info{{Title: "Game", Bounds: window.Bounds{Left: 1, Top: 2, Width: 3, Height: 4}}})
	if err != nil {
		t.Fatal(err)
	}
	var got []windowJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != (windowJSON{Title: "Game", Left: 1, Top: 2, Width: 3, Height: 4}) {
		t.Errorf("got %+v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate long = %q", got)
	}
}
