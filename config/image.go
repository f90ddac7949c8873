package config

import (
	"encoding/json"
	"slices"
	"strings"
)

// Image types understood by the rendering service.
const (
	TypePNG  = "png"
	TypeJPG  = "jpg"
	TypeJPEG = "jpeg"
	TypeWEBP = "webp"
)

// Types lists every accepted image type.
var Types = []string{TypePNG, TypeJPG, TypeJPEG, TypeWEBP}

// Quality limits of a lossy image.
const (
	QualityMin = 0
	QualityMax = 100
)

// Area is the clip rectangle of a screenshot, in pixels.
type Area struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Image holds the screenshot options of a render request. Use [NewImage]
// to obtain a record carrying the service defaults.
type Image struct {
	typ                 *string
	quality             *int
	scale               *int
	area                *Area
	optimize            bool
	captureViewportOnly bool
	captureSurface      bool
	capturePage         bool
	displayTransparent  bool
}

// NewImage returns an Image producing a png of the rendered surface.
func NewImage() *Image {
	typ := TypePNG

	return &Image{
		typ:            &typ,
		captureSurface: true,
	}
}

// Type returns the lower-cased image type and whether one is set.
func (i *Image) Type() (string, bool) {
	if i.typ == nil {
		return "", false
	}

	return *i.typ, true
}

// SetType sets the image type, matched case-insensitively against [Types].
// Unknown types are ignored.
func (i *Image) SetType(typ string) {
	typ = strings.ToLower(typ)
	if !slices.Contains(Types, typ) {
		return
	}

	i.typ = &typ
}

// UnsetType removes the type, leaving the choice to the service.
func (i *Image) UnsetType() {
	i.typ = nil
}

// Quality returns the quality and whether one is set.
func (i *Image) Quality() (int, bool) {
	if i.quality == nil {
		return 0, false
	}

	return *i.quality, true
}

// SetQuality sets the quality of lossy types, made absolute and clamped
// to [QualityMin, QualityMax].
func (i *Image) SetQuality(q int) {
	if q < 0 {
		q = -q
	}
	q = min(max(q, QualityMin), QualityMax)
	i.quality = &q
}

func (i *Image) UnsetQuality() { i.quality = nil }

// Scale returns the device scale factor and whether one is set.
func (i *Image) Scale() (int, bool) {
	if i.scale == nil {
		return 0, false
	}

	return *i.scale, true
}

// SetScale sets the device scale factor, made absolute.
func (i *Image) SetScale(scale int) {
	if scale < 0 {
		scale = -scale
	}
	i.scale = &scale
}

func (i *Image) UnsetScale() { i.scale = nil }

// Area returns the clip rectangle and whether one is set.
func (i *Image) Area() (Area, bool) {
	if i.area == nil {
		return Area{}, false
	}

	return *i.area, true
}

func (i *Image) SetArea(a Area) { i.area = &a }
func (i *Image) UnsetArea()     { i.area = nil }

func (i *Image) Optimize() bool                { return i.optimize }
func (i *Image) SetOptimize(v bool)            { i.optimize = v }
func (i *Image) CaptureViewportOnly() bool     { return i.captureViewportOnly }
func (i *Image) SetCaptureViewportOnly(v bool) { i.captureViewportOnly = v }
func (i *Image) CaptureSurface() bool          { return i.captureSurface }
func (i *Image) SetCaptureSurface(v bool)      { i.captureSurface = v }
func (i *Image) CapturePage() bool             { return i.capturePage }
func (i *Image) SetCapturePage(v bool)         { i.capturePage = v }
func (i *Image) DisplayTransparent() bool      { return i.displayTransparent }
func (i *Image) SetDisplayTransparent(v bool)  { i.displayTransparent = v }

type imageJSON struct {
	Type                *string `json:"type"`
	Quality             *int    `json:"quality"`
	Scale               *int    `json:"scale"`
	Area                *Area   `json:"area"`
	Optimize            bool    `json:"optimize"`
	CaptureViewportOnly bool    `json:"captureViewportOnly"`
	CaptureSurface      bool    `json:"captureSurface"`
	CapturePage         bool    `json:"capturePage"`
	DisplayTransparent  bool    `json:"displayTransparent"`
}

// MarshalJSON implements [json.Marshaler].
func (i *Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(imageJSON{
		Type:                i.typ,
		Quality:             i.quality,
		Scale:               i.scale,
		Area:                i.area,
		Optimize:            i.optimize,
		CaptureViewportOnly: i.captureViewportOnly,
		CaptureSurface:      i.captureSurface,
		CapturePage:         i.capturePage,
		DisplayTransparent:  i.displayTransparent,
	})
}
