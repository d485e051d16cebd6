package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"vr-dimension/src/eye"
)

const (
	DefaultResolution  = "720x720"
	DefaultFrameRate   = 30
	DefaultContrast    = 1.0
	DefaultCropX       = 0.09
	DefaultCropYTop    = 0.12
	DefaultCropYBottom = 0.08

	MinFrameRate     = 1
	MaxFrameRate     = 240
	MaxContrast      = 10.0
	MaxBrightness    = 255.0
	MaxCropFraction  = 0.5
	DefaultFileName  = "vr_dimension_settings.json"
	settingsFileMode = 0644
)

var ErrInvalidResolution = fmt.Errorf("resolution must be WxH with sides between 1 and %d", eye.MaxDimension)

// Settings is the persisted capture configuration.
type Settings struct {
	Resolution  string  `json:"resolution" yaml:"resolution"`
	FrameRate   int     `json:"frame_rate" yaml:"frame_rate"`
	Brightness  float64 `json:"brightness" yaml:"brightness"`
	Contrast    float64 `json:"contrast" yaml:"contrast"`
	CropX       float64 `json:"crop_x" yaml:"crop_x"`
	CropYTop    float64 `json:"crop_y_top" yaml:"crop_y_top"`
	CropYBottom float64 `json:"crop_y_bottom" yaml:"crop_y_bottom"`
}

func Default() *Settings {
	return &Settings{
		Resolution:  DefaultResolution,
		FrameRate:   DefaultFrameRate,
		Brightness:  0,
		Contrast:    DefaultContrast,
		CropX:       DefaultCropX,
		CropYTop:    DefaultCropYTop,
		CropYBottom: DefaultCropYBottom,
	}
}

// ParseResolution parses "WxH" (e.g. "1280x720", " 720X720 "). Each side
// must be in 1..eye.MaxDimension.
func ParseResolution(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 || w > eye.MaxDimension || h > eye.MaxDimension {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
	return w, h, nil
}

// FormatResolution is the inverse of ParseResolution.
func FormatResolution(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}

func (s *Settings) Validate() error {
	if _, _, err := ParseResolution(s.Resolution); err != nil {
		return err
	}
	if s.FrameRate < MinFrameRate || s.FrameRate > MaxFrameRate {
		return fmt.Errorf("frame_rate %d out of range [%d, %d]", s.FrameRate, MinFrameRate, MaxFrameRate)
	}
	if s.Contrast < 0 || s.Contrast > MaxContrast {
		return fmt.Errorf("contrast %.2f out of range [0, %.0f]", s.Contrast, MaxContrast)
	}
	if s.Brightness < -MaxBrightness || s.Brightness > MaxBrightness {
		return fmt.Errorf("brightness %.0f out of range [%.0f, %.0f]", s.Brightness, -MaxBrightness, MaxBrightness)
	}
	for name, v := range map[string]float64{"crop_x": s.CropX, "crop_y_top": s.CropYTop, "crop_y_bottom": s.CropYBottom} {
		if v < 0 || v >= MaxCropFraction {
			return fmt.Errorf("%s %.3f out of range [0, %.1f)", name, v, MaxCropFraction)
		}
	}
	if s.CropYTop+s.CropYBottom >= 1 {
		return fmt.Errorf("crop_y_top + crop_y_bottom must be below 1")
	}
	return nil
}

// EyeParams converts the settings into pipeline parameters.
func (s Settings) EyeParams() (eye.Params, error) {
	w, h, err := ParseResolution(s.Resolution)
	if err != nil {
		return eye.Params{}, err
	}
	return eye.Params{
		Width:       w,
		Height:      h,
		CropX:       s.CropX,
		CropYTop:    s.CropYTop,
		CropYBottom: s.CropYBottom,
		Contrast:    s.Contrast,
		Brightness:  s.Brightness,
	}, nil
}

// Load reads settings from path. A missing file yields the defaults; keys
// missing from the file keep their default values.
func Load(path string) (*Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, s)
	} else {
		err = json.Unmarshal(data, s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	s.Resolution = strings.TrimSpace(s.Resolution)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// Save validates and writes the settings via a temp file and rename so a
// concurrent reader never sees a partial file.
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	_ = os.Chmod(tmpName, settingsFileMode)
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	recordSave(path, data)
	return nil
}

// DefaultPath returns the settings file next to the executable, or in the
// working directory when the executable path is unknown.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
