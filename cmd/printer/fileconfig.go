package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/adamwoolhether/printer/config"
)

// maxConfigSize caps the config file read into memory.
const maxConfigSize = 1 << 20

// ErrConfigParse reports an unreadable or invalid config file.
var ErrConfigParse = errors.New("invalid config file")

// fileConfig is the YAML config file accepted by --config.
type fileConfig struct {
	URL       string        `yaml:"url"`
	Timeout   string        `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
	Document  *documentFile `yaml:"document"`
	Image     *imageFile    `yaml:"image"`
}

type documentFile struct {
	Scale       *float64   `yaml:"scale"`
	ContentOnly *bool      `yaml:"contentOnly"`
	Background  *bool      `yaml:"background"`
	Transparent *bool      `yaml:"transparent"`
	Header      *string    `yaml:"header"`
	Footer      *string    `yaml:"footer"`
	Orientation string     `yaml:"orientation"`
	Format      string     `yaml:"format"`
	Width       string     `yaml:"width"`
	Height      string     `yaml:"height"`
	Range       string     `yaml:"range"`
	Override    *bool      `yaml:"override"`
	Margin      marginFile `yaml:"margin"`
}

type marginFile struct {
	Top    string `yaml:"top"`
	Right  string `yaml:"right"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
}

type imageFile struct {
	Type         string       `yaml:"type"`
	Quality      *int         `yaml:"quality"`
	Scale        *int         `yaml:"scale"`
	Area         *config.Area `yaml:"area"`
	Optimize     *bool        `yaml:"optimize"`
	ViewportOnly *bool        `yaml:"viewportOnly"`
	Surface      *bool        `yaml:"surface"`
	Page         *bool        `yaml:"page"`
	Transparent  *bool        `yaml:"transparent"`
}

// loadConfig reads a YAML config file, rejecting unknown keys.
func loadConfig(path string) (*fileConfig, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrConfigParse, path, maxConfigSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}

	return parseConfig(data)
}

func parseConfig(data []byte) (*fileConfig, error) {
	var fc fileConfig
	if len(data) == 0 {
		return &fc, nil
	}

	if err := yaml.UnmarshalWithOptions(data, &fc, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}

	if fc.Timeout != "" {
		if _, err := time.ParseDuration(fc.Timeout); err != nil {
			return nil, fmt.Errorf("%w: timeout: %w", ErrConfigParse, err)
		}
	}

	return &fc, nil
}

func (fc *fileConfig) timeout() (time.Duration, bool) {
	if fc.Timeout == "" {
		return 0, false
	}

	d, err := time.ParseDuration(fc.Timeout)
	return d, err == nil
}

// document builds the document record, starting from the defaults.
func (fc *fileConfig) document() *config.Document {
	d := config.NewDocument()

	f := fc.Document
	if f == nil {
		return d
	}

	if f.Scale != nil {
		d.SetScale(*f.Scale)
	}
	if f.ContentOnly != nil {
		d.SetDisplayContentOnly(*f.ContentOnly)
	}
	if f.Background != nil {
		d.SetDisplayBackgroundGraphic(*f.Background)
	}
	if f.Transparent != nil {
		d.SetDisplayTransparent(*f.Transparent)
	}
	if f.Header != nil {
		d.SetTemplateHeader(*f.Header)
	}
	if f.Footer != nil {
		d.SetTemplateFooter(*f.Footer)
	}
	if f.Orientation != "" {
		d.SetPageOrientation(config.Orientation(f.Orientation))
	}
	if f.Format != "" {
		d.SetPageFormat(f.Format)
	}
	if f.Width != "" || f.Height != "" {
		d.SetPageWidth(config.ParseLength(f.Width))
		d.SetPageHeight(config.ParseLength(f.Height))
		if f.Format == "" {
			d.UnsetPageFormat()
		}
	}
	if f.Range != "" {
		d.SetPageRange(f.Range)
	}
	if f.Override != nil {
		d.SetPageOverride(*f.Override)
	}

	d.SetMargin(
		config.ParseLength(f.Margin.Top),
		config.ParseLength(f.Margin.Right),
		config.ParseLength(f.Margin.Bottom),
		config.ParseLength(f.Margin.Left),
	)

	return d
}

// image builds the image record, starting from the defaults.
func (fc *fileConfig) image() *config.Image {
	i := config.NewImage()

	f := fc.Image
	if f == nil {
		return i
	}

	if f.Type != "" {
		i.SetType(f.Type)
	}
	if f.Quality != nil {
		i.SetQuality(*f.Quality)
	}
	if f.Scale != nil {
		i.SetScale(*f.Scale)
	}
	if f.Area != nil {
		i.SetArea(*f.Area)
	}
	if f.Optimize != nil {
		i.SetOptimize(*f.Optimize)
	}
	if f.ViewportOnly != nil {
		i.SetCaptureViewportOnly(*f.ViewportOnly)
	}
	if f.Surface != nil {
		i.SetCaptureSurface(*f.Surface)
	}
	if f.Page != nil {
		i.SetCapturePage(*f.Page)
	}
	if f.Transparent != nil {
		i.SetDisplayTransparent(*f.Transparent)
	}

	return i
}
