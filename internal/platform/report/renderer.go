package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
)

const (
	pageMargin   = 50.0
	headerBottom = 90.0
	logoX        = 50.0
	logoY        = 30.0
	logoWidth    = 80.0
	titleX       = 140.0
	titleY       = 40.0
	titleSize    = 18.0
	headingSize  = 13.0
	bodySize     = 11.0
	lineFactor   = 1.25
	fontFamily   = "Helvetica"

	DefaultPlaceholder = "—"
	bullet             = "• "
)

// Options configures a Renderer.
type Options struct {
	Title string
	// LogoPath points to a basic SVG (numeric width/height, path elements).
	// A missing file is skipped silently; a malformed one with a warning.
	LogoPath    string
	Placeholder string
	// Compress toggles stream compression. Tests turn it off to inspect text.
	Compress bool
}

// Renderer turns Documents into A4 PDFs. It is safe for concurrent use;
// every Render call builds its own fpdf instance.
type Renderer struct {
	opts   Options
	logo   *fpdf.SVGBasicType
	logger zerolog.Logger
}

func NewRenderer(opts Options, logger zerolog.Logger) *Renderer {
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	r := &Renderer{opts: opts, logger: logger}
	r.logo = loadLogo(opts.LogoPath, logger)
	return r
}

func loadLogo(path string, logger zerolog.Logger) *fpdf.SVGBasicType {
	if path == "" {
		return nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("path", path).Msg("report logo unreadable, rendering without it")
		}
		return nil
	}
	sig, err := fpdf.SVGBasicParse(buf)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("report logo is not a basic SVG, rendering without it")
		return nil
	}
	return &sig
}

// Render writes doc as a PDF to w. Nothing is written to w unless the whole
// document was laid out successfully.
func (r *Renderer) Render(ctx context.Context, w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCompression(r.opts.Compress)
	pdf.SetCreator("intake", true)
	if doc.Subject != "" {
		pdf.SetTitle(doc.Subject, true)
	}
	if !doc.Date.IsZero() {
		pdf.SetCreationDate(doc.Date)
		pdf.SetModificationDate(doc.Date)
	}

	l := &layout{
		pdf:         pdf,
		tr:          pdf.UnicodeTranslatorFromDescriptor(""),
		placeholder: r.opts.Placeholder,
	}

	pdf.AddPage()
	l.header(r.opts.Title, r.logo)

	for _, sec := range doc.Sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.section(sec)
	}
	if doc.Footer != "" {
		l.footer(doc.Footer)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("layout report: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
