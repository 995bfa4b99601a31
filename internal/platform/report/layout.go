package report

import (
	"github.com/go-pdf/fpdf"
)

// layout tracks one document being drawn.
type layout struct {
	pdf         *fpdf.Fpdf
	tr          func(string) string
	placeholder string
}

func lineHeight(size float64) float64 {
	return size * lineFactor
}

func (l *layout) header(title string, logo *fpdf.SVGBasicType) {
	pdf := l.pdf
	if logo != nil && logo.Wd > 0 {
		pdf.SetXY(logoX, logoY)
		pdf.SVGBasicWrite(logo, logoWidth/logo.Wd)
	}
	if title != "" {
		pdf.SetFont(fontFamily, "", titleSize)
		pdf.SetXY(titleX, titleY)
		pdf.CellFormat(0, lineHeight(titleSize), l.tr(title), "", 0, "L", false, 0, "")
	}
	pageW, _ := pdf.GetPageSize()
	pdf.Line(pageMargin, headerBottom, pageW-pageMargin, headerBottom)
	pdf.SetXY(pageMargin, headerBottom+lineHeight(bodySize)/2)
}

// ensureSpace starts a new page when h more points would run past the
// bottom margin. Blocks taller than a page fall back to fpdf's auto break.
func (l *layout) ensureSpace(h float64) {
	_, pageH := l.pdf.GetPageSize()
	_, _, _, bottom := l.pdf.GetMargins()
	if l.pdf.GetY()+h > pageH-bottom {
		l.pdf.AddPage()
	}
}

// textLines estimates how many lines s occupies at the current font when
// written from the left margin.
func (l *layout) textLines(s string, width float64) int {
	n := len(l.pdf.SplitLines([]byte(s), width))
	if n < 1 {
		return 1
	}
	return n
}

func (l *layout) contentWidth() float64 {
	pageW, _ := l.pdf.GetPageSize()
	left, _, right, _ := l.pdf.GetMargins()
	return pageW - left - right
}

func (l *layout) section(sec Section) {
	hh := lineHeight(headingSize)
	bh := lineHeight(bodySize)

	// Keep the heading with at least its first line of content.
	l.ensureSpace(hh*2.5 + bh)
	l.pdf.Ln(hh)
	l.pdf.SetFont(fontFamily, "U", headingSize)
	l.pdf.Write(hh, l.tr(sec.Heading))
	l.pdf.Ln(hh)
	l.pdf.Ln(hh / 2)

	for _, b := range sec.Blocks {
		switch b := b.(type) {
		case Field:
			l.field(b)
		case List:
			l.list(b)
		}
	}
}

func (l *layout) value(v string) string {
	if v == "" {
		return l.tr(l.placeholder)
	}
	return l.tr(v)
}

func (l *layout) field(f Field) {
	bh := lineHeight(bodySize)
	label := l.tr(f.Label + ": ")
	value := l.value(f.Value)

	l.pdf.SetFont(fontFamily, "", bodySize)
	l.ensureSpace(bh * float64(l.textLines(label+value, l.contentWidth())))

	l.pdf.SetFont(fontFamily, "B", bodySize)
	l.pdf.Write(bh, label)
	l.pdf.SetFont(fontFamily, "", bodySize)
	l.pdf.Write(bh, value)
	l.pdf.Ln(bh)
}

func (l *layout) list(list List) {
	bh := lineHeight(bodySize)

	l.ensureSpace(bh * 2)
	l.pdf.SetFont(fontFamily, "B", bodySize)
	l.pdf.Write(bh, l.tr(list.Label))
	l.pdf.Ln(bh)

	l.pdf.SetFont(fontFamily, "", bodySize)
	if len(list.Items) == 0 {
		l.pdf.Write(bh, l.tr(l.placeholder))
		l.pdf.Ln(bh)
		return
	}
	for _, item := range list.Items {
		line := l.tr(bullet + item)
		l.ensureSpace(bh * float64(l.textLines(line, l.contentWidth())))
		l.pdf.Write(bh, line)
		l.pdf.Ln(bh)
	}
}

func (l *layout) footer(text string) {
	bh := lineHeight(bodySize)
	l.ensureSpace(bh * 3)
	l.pdf.Ln(bh * 2)
	l.pdf.SetFont(fontFamily, "", bodySize)
	l.pdf.Write(bh, l.tr(text))
	l.pdf.Ln(bh)
}
