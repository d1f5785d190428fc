package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// StatusPrinter writes per-item status lines, green when an item is in sync and red otherwise.
type StatusPrinter struct {
	writer        io.Writer
	matchColor    *color.Color
	mismatchColor *color.Color
}

// NewStatusPrinter constructs a StatusPrinter. Colors are only emitted when colorEnabled is true.
func NewStatusPrinter(writer io.Writer, colorEnabled bool) *StatusPrinter {
	matchColor := color.New(color.FgGreen)
	mismatchColor := color.New(color.FgRed)
	if colorEnabled {
		matchColor.EnableColor()
		mismatchColor.EnableColor()
	} else {
		matchColor.DisableColor()
		mismatchColor.DisableColor()
	}
	return &StatusPrinter{writer: writer, matchColor: matchColor, mismatchColor: mismatchColor}
}

// PrintHeading writes an uncolored line.
func (printer *StatusPrinter) PrintHeading(text string) error {
	_, writeError := fmt.Fprintln(printer.writer, text)
	return writeError
}

// PrintStatus writes text in the color matching the inSync flag.
func (printer *StatusPrinter) PrintStatus(text string, inSync bool) error {
	selectedColor := printer.mismatchColor
	if inSync {
		selectedColor = printer.matchColor
	}
	_, writeError := selectedColor.Fprintln(printer.writer, text)
	return writeError
}
