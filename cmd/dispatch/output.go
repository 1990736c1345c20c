package main

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (

	// termenv output for consistent terminal styling
	output = termenv.NewOutput(os.Stdout)

	// Style helpers - initialized in initColors()
	highlightStyle termenv.Style
	errorStyle     termenv.Style
	successStyle   termenv.Style
	dimStyle       termenv.Style
	boldStyle      termenv.Style
)

// initColors initializes color styles based on terminal background
func initColors() {
	if termenv.HasDarkBackground() {
		highlightStyle = output.String().Foreground(output.Color("179")).Bold() // Muted yellow
		errorStyle = output.String().Foreground(output.Color("124"))            // Muted red
		successStyle = output.String().Foreground(output.Color("65"))           // Muted green
		dimStyle = output.String().Faint()
		boldStyle = output.String().Bold()
	} else {
		highlightStyle = output.String().Foreground(output.Color("136")).Bold() // Dark orange/brown
		errorStyle = output.String().Foreground(output.Color("160"))            // Dark red
		successStyle = output.String().Foreground(output.Color("28"))           // Dark green
		dimStyle = output.String().Foreground(output.Color("240"))              // Dark gray
		boldStyle = output.String().Bold()
	}
}

// isTerminal checks if output is going to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// outputWidth returns how many columns a single result line may use
func outputWidth() int {
	if !isTerminal() {
		return 120
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	return width - 20
}

// fit flattens s to one line and truncates it to width columns
func fit(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
