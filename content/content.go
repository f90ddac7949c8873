// Package content prepares the HTML sent as the content of a render
// request. Callers that hold Markdown convert it with a [Converter].
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	// ErrConversion indicates the Markdown could not be converted.
	ErrConversion = errors.New("markdown conversion failed")

	// ErrInvalidOption is returned by [NewConverter] for a rejected option.
	ErrInvalidOption = errors.New("invalid converter option")
)

const defaultStyle = "github"

// page wraps goldmark's fragment output in a complete HTML5 document.
const page = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
%s</style>
</head>
<body>
%s
</body>
</html>`

// Converter turns Markdown into a standalone HTML document with GFM
// extensions, footnotes and syntax highlighted code blocks.
type Converter struct {
	md    goldmark.Markdown
	title string
	css   string
}

// NewConverter builds a Converter. The highlight style defaults to
// "github" and falls back to chroma's default for unknown names.
func NewConverter(optFns ...Option) (*Converter, error) {
	opts := options{
		title: "Document",
		style: defaultStyle,
	}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying converter option: %w", err)
		}
	}

	var css bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&css, styles.Get(opts.style)); err != nil {
		return nil, fmt.Errorf("writing highlight css: %w", err)
	}
	css.WriteString(opts.css)

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)

	return &Converter{
		md:    md,
		title: opts.title,
		css:   css.String(),
	}, nil
}

// ToHTML converts Markdown to a standalone HTML5 document. goldmark has no
// notion of cancellation, so the conversion runs apart and ctx only bounds
// the wait for it.
func (c *Converter) ToHTML(ctx context.Context, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %w", ErrConversion, err)}
			return
		}
		done <- result{html: fmt.Sprintf(page, html.EscapeString(c.title), c.css, buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// FromMarkdown converts markdown with a default Converter.
func FromMarkdown(ctx context.Context, markdown string) (string, error) {
	c, err := NewConverter()
	if err != nil {
		return "", err
	}

	return c.ToHTML(ctx, markdown)
}

// Option configures a [Converter].
type Option func(*options) error

type options struct {
	title string
	style string
	css   string
}

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(o *options) error {
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("%w: title must not be empty", ErrInvalidOption)
		}
		o.title = title
		return nil
	}
}

// WithStyle selects the chroma style used for code blocks.
func WithStyle(name string) Option {
	return func(o *options) error {
		if name == "" {
			return fmt.Errorf("%w: style must not be empty", ErrInvalidOption)
		}
		o.style = name
		return nil
	}
}

// WithCSS appends a stylesheet after the highlight rules.
func WithCSS(css string) Option {
	return func(o *options) error {
		o.css = css
		return nil
	}
}
