package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"vr-dimension/src/eye"
	"vr-dimension/src/settings"
)

const (
	maxFileSizeMB = 64
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

type cliOptions struct {
	filePath     string
	outPath      string
	settingsPath string
	resolution   string
	brightness   float64
	contrast     float64
	jsonOutput   bool
	verbose      bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args)
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"eyecrop"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "eyecrop",
		Short:         "Extract and adjust the right eye of a stereo frame",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd, *opts)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to a PNG, JPEG, BMP or WebP frame (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.outPath, "out", "-", "Output PNG path ('-' for stdout)")
	cmd.Flags().StringVar(&opts.settingsPath, "settings", "", "Settings file to take parameters from")
	cmd.Flags().StringVar(&opts.resolution, "resolution", "", "Override output resolution (WxH)")
	cmd.Flags().Float64Var(&opts.brightness, "brightness", 0, "Override brightness offset")
	cmd.Flags().Float64Var(&opts.contrast, "contrast", 0, "Override contrast gain")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print a JSON summary to stderr")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")

	cmd.AddCommand(newWindowsCmd())
	return cmd
}

func runWithOptions(cmd *cobra.Command, opts cliOptions) error {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	s, err := resolveSettings(cmd, opts)
	if err != nil {
		return err
	}
	params, err := s.EyeParams()
	if err != nil {
		return err
	}
	log.Printf("Parameters: %+v", params)

	data, err := readInput(opts.filePath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	start := time.Now()
	frame, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	out, err := eye.Process(eye.ToRGBA(frame), params)
	if err != nil {
		return fmt.Errorf("failed to process frame: %w", err)
	}
	elapsed := time.Since(start)
	log.Printf("Processed %s frame %v in %v", format, frame.Bounds().Size(), elapsed)

	if err := writeOutput(opts.outPath, cmd.OutOrStdout(), out); err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeSummary(cmd.ErrOrStderr(), Result{
			Source:   opts.filePath,
			Output:   opts.outPath,
			Format:   format,
			Input:    FormatSize(frame.Bounds()),
			Size:     FormatSize(out.Bounds()),
			Duration: elapsed.Seconds(),
		})
	}
	return nil
}

// resolveSettings layers flags over the settings file over defaults.
func resolveSettings(cmd *cobra.Command, opts cliOptions) (*settings.Settings, error) {
	s := settings.Default()
	if opts.settingsPath != "" {
		loaded, err := settings.Load(opts.settingsPath)
		if err != nil {
			return nil, err
		}
		s = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("resolution") {
		s.Resolution = opts.resolution
	}
	if flags.Changed("brightness") {
		s.Brightness = opts.brightness
	}
	if flags.Changed("contrast") {
		s.Contrast = opts.contrast
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func readInput(filePath string, stdin io.Reader) ([]byte, error) {
	var data []byte
	var err error
	if isStdio(filePath) {
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	return data, nil
}

func writeOutput(outPath string, stdout io.Writer, img image.Image) error {
	if isStdio(outPath) {
		return png.Encode(stdout, img)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", outPath, err)
	}
	return f.Close()
}

type Result struct {
	Source   string  `json:"source"`
	Output   string  `json:"output"`
	Format   string  `json:"format"`
	Input    string  `json:"input_size"`
	Size     string  `json:"output_size"`
	Duration float64 `json:"duration_seconds"`
}

func FormatSize(r image.Rectangle) string {
	return settings.FormatResolution(r.Dx(), r.Dy())
}

func writeSummary(w io.Writer, r Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func isStdio(path string) bool { return strings.TrimSpace(path) == "-" }
