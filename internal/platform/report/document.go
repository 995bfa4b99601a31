// Package report lays out structured documents as single-column PDF pages.
package report

import "time"

// Block is one vertically stacked element of a Section.
type Block interface {
	block()
}

// Field renders as "Label: value" on one or more lines. An empty Value is
// rendered as the renderer's placeholder.
type Field struct {
	Label string
	Value string
}

// List renders Label on its own line followed by one bulleted line per item,
// or the placeholder when Items is empty.
type List struct {
	Label string
	Items []string
}

func (Field) block() {}
func (List) block()  {}

// Section is a headed group of blocks.
type Section struct {
	Heading string
	Blocks  []Block
}

// Document is the input to Renderer.Render.
type Document struct {
	// Subject goes into the PDF info dictionary.
	Subject  string
	Sections []Section
	// Footer is written once after the last section.
	Footer string
	// Date pins the PDF creation and modification dates.
	Date time.Time
}
