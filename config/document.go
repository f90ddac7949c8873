package config

import (
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strings"
)

// Scale limits of a document.
const (
	ScaleMin     = 0.1
	ScaleMax     = 2.0
	ScaleDefault = 1.0
)

// Orientation is the page orientation of a document.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Paper formats understood by the rendering service.
const (
	FormatLetter  = "Letter"
	FormatLegal   = "Legal"
	FormatTabloid = "Tabloid"
	FormatLedger  = "Ledger"
	FormatA0      = "A0"
	FormatA1      = "A1"
	FormatA2      = "A2"
	FormatA3      = "A3"
	FormatA4      = "A4"
	FormatA5      = "A5"
	FormatA6      = "A6"
)

// Formats lists every accepted paper format.
var Formats = []string{
	FormatLetter, FormatLegal, FormatTabloid, FormatLedger,
	FormatA0, FormatA1, FormatA2, FormatA3, FormatA4, FormatA5, FormatA6,
}

const (
	templateHeader = "header"
	templateFooter = "footer"
)

// Document holds the PDF options of a render request. Use [NewDocument]
// to obtain a record carrying the service defaults. The zero value is
// sent with portrait orientation and every boolean option off.
type Document struct {
	scale                    *float64
	displayContentOnly       bool
	displayBackgroundGraphic bool
	displayTransparent       bool
	template                 map[string]string
	pageOrientation          Orientation
	pageFormat               *string
	pageWidth                Length
	pageHeight               Length
	pageRange                string
	pageOverride             bool
	margin                   map[string]Length
}

// NewDocument returns a Document with scale 1.0, background graphics on,
// portrait A4 pages and CSS page size override enabled.
func NewDocument() *Document {
	scale := ScaleDefault
	format := strings.ToUpper(FormatA4)

	return &Document{
		scale:                    &scale,
		displayBackgroundGraphic: true,
		pageOrientation:          Portrait,
		pageFormat:               &format,
		pageOverride:             true,
	}
}

// Scale returns the render scale and whether one is set.
func (d *Document) Scale() (float64, bool) {
	if d.scale == nil {
		return 0, false
	}

	return *d.scale, true
}

// SetScale sets the render scale, made absolute and clamped to
// [ScaleMin, ScaleMax].
func (d *Document) SetScale(scale float64) {
	scale = min(max(math.Abs(scale), ScaleMin), ScaleMax)
	d.scale = &scale
}

// UnsetScale removes the scale, leaving the choice to the service.
func (d *Document) UnsetScale() {
	d.scale = nil
}

// ResetScale restores ScaleDefault.
func (d *Document) ResetScale() {
	d.SetScale(ScaleDefault)
}

func (d *Document) DisplayContentOnly() bool           { return d.displayContentOnly }
func (d *Document) SetDisplayContentOnly(v bool)       { d.displayContentOnly = v }
func (d *Document) DisplayBackgroundGraphic() bool     { return d.displayBackgroundGraphic }
func (d *Document) SetDisplayBackgroundGraphic(v bool) { d.displayBackgroundGraphic = v }
func (d *Document) DisplayTransparent() bool           { return d.displayTransparent }
func (d *Document) SetDisplayTransparent(v bool)       { d.displayTransparent = v }

// Template returns a copy of the header and footer templates, or nil.
func (d *Document) Template() map[string]string {
	return maps.Clone(d.template)
}

// SetTemplate replaces the header and footer templates. Keys other than
// "header" and "footer" are dropped; an empty result unsets the template.
func (d *Document) SetTemplate(tmpl map[string]string) {
	d.template = nil

	for _, key := range []string{templateHeader, templateFooter} {
		if v, ok := tmpl[key]; ok {
			if d.template == nil {
				d.template = make(map[string]string)
			}
			d.template[key] = v
		}
	}
}

// SetTemplateHeader sets the HTML of the print header.
func (d *Document) SetTemplateHeader(html string) {
	d.setTemplateKey(templateHeader, html)
}

// SetTemplateFooter sets the HTML of the print footer.
func (d *Document) SetTemplateFooter(html string) {
	d.setTemplateKey(templateFooter, html)
}

// UnsetTemplateHeader removes the header, unsetting the template when no
// footer remains.
func (d *Document) UnsetTemplateHeader() {
	d.deleteTemplateKey(templateHeader)
}

// UnsetTemplateFooter removes the footer, unsetting the template when no
// header remains.
func (d *Document) UnsetTemplateFooter() {
	d.deleteTemplateKey(templateFooter)
}

func (d *Document) setTemplateKey(key, html string) {
	tmpl := d.Template()
	if tmpl == nil {
		tmpl = make(map[string]string)
	}
	tmpl[key] = html
	d.SetTemplate(tmpl)
}

func (d *Document) deleteTemplateKey(key string) {
	tmpl := d.Template()
	delete(tmpl, key)
	d.SetTemplate(tmpl)
}

func (d *Document) PageOrientation() Orientation { return d.pageOrientation }

// SetPageOrientation sets the orientation. Values other than Portrait and
// Landscape are ignored.
func (d *Document) SetPageOrientation(o Orientation) {
	if o != Portrait && o != Landscape {
		return
	}

	d.pageOrientation = o
}

// PageFormat returns the upper-cased paper format and whether one is set.
func (d *Document) PageFormat() (string, bool) {
	if d.pageFormat == nil {
		return "", false
	}

	return *d.pageFormat, true
}

// SetPageFormat sets the paper format, matched case-insensitively against
// [Formats]. Unknown formats are ignored. A set format takes priority over
// the page width and height.
func (d *Document) SetPageFormat(format string) {
	format = strings.ToUpper(format)

	if !slices.ContainsFunc(Formats, func(f string) bool { return strings.ToUpper(f) == format }) {
		return
	}

	d.pageFormat = &format
}

// UnsetPageFormat removes the paper format so the page width and height apply.
func (d *Document) UnsetPageFormat() {
	d.pageFormat = nil
}

func (d *Document) PageWidth() Length      { return d.pageWidth }
func (d *Document) SetPageWidth(l Length)  { d.pageWidth = l }
func (d *Document) PageHeight() Length     { return d.pageHeight }
func (d *Document) SetPageHeight(l Length) { d.pageHeight = l }
func (d *Document) PageRange() string      { return d.pageRange }
func (d *Document) SetPageRange(r string)  { d.pageRange = r }
func (d *Document) PageOverride() bool     { return d.pageOverride }
func (d *Document) SetPageOverride(v bool) { d.pageOverride = v }

// Margin returns a copy of the page margins, keyed by side, or nil.
func (d *Document) Margin() map[string]Length {
	return maps.Clone(d.margin)
}

// SetMargin merges the given sides into the current margins. Empty sides
// are skipped, so SetMargin(Length{}, Pixels(10), Length{}, Length{}) only
// changes the right margin.
func (d *Document) SetMargin(top, right, bottom, left Length) {
	sides := map[string]Length{
		"top":    top,
		"right":  right,
		"bottom": bottom,
		"left":   left,
	}
	maps.DeleteFunc(sides, func(_ string, l Length) bool { return l.empty() })

	if len(sides) == 0 {
		d.margin = nil
		return
	}

	if d.margin == nil {
		d.margin = make(map[string]Length, len(sides))
	}
	maps.Copy(d.margin, sides)
}

// UnsetMargin removes all margins.
func (d *Document) UnsetMargin() {
	d.margin = nil
}

type documentJSON struct {
	Scale                    *float64          `json:"scale"`
	DisplayContentOnly       bool              `json:"displayContentOnly"`
	DisplayBackgroundGraphic bool              `json:"displayBackgroundGraphic"`
	DisplayTransparent       bool              `json:"displayTransparent"`
	Template                 map[string]string `json:"template"`
	PageOrientation          Orientation       `json:"pageOrientation"`
	PageFormat               *string           `json:"pageFormat"`
	PageWidth                *Length           `json:"pageWidth,omitempty"`
	PageHeight               *Length           `json:"pageHeight,omitempty"`
	PageRange                string            `json:"pageRange"`
	PageOverride             bool              `json:"pageOverride"`
	Margin                   map[string]Length `json:"margin"`
}

// MarshalJSON implements [json.Marshaler]. Page width and height are only
// sent when both are set.
func (d *Document) MarshalJSON() ([]byte, error) {
	v := documentJSON{
		Scale:                    d.scale,
		DisplayContentOnly:       d.displayContentOnly,
		DisplayBackgroundGraphic: d.displayBackgroundGraphic,
		DisplayTransparent:       d.displayTransparent,
		Template:                 d.template,
		PageOrientation:          d.pageOrientation,
		PageFormat:               d.pageFormat,
		PageRange:                d.pageRange,
		PageOverride:             d.pageOverride,
		Margin:                   d.margin,
	}

	if v.PageOrientation == "" {
		v.PageOrientation = Portrait
	}

	if !d.pageWidth.IsZero() && !d.pageHeight.IsZero() {
		v.PageWidth = &d.pageWidth
		v.PageHeight = &d.pageHeight
	}

	return json.Marshal(v)
}
