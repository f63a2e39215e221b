package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// MessageOptions configures a formatted message
type MessageOptions struct {
	Level        Level
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatMessage renders a message with optional suggestions and help commands.
//
// Example output:
//
//	❌ CATALOG NOT FOUND: Cannot find catalog 'blg'.
//
//	   Did you mean: blog?
//
//	   → List catalogs: entitymodel inspect --help
func FormatMessage(opts MessageOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string
	switch opts.Level {
	case LevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case LevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	default:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	}
	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		b.WriteString("\n")
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}
	return b.String()
}

// WriteMessage writes a formatted message to w
func WriteMessage(w io.Writer, opts MessageOptions) {
	fmt.Fprint(w, FormatMessage(opts))
}

// FormatSuccess creates a success line
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// CatalogNotFound reports an unknown catalog name with close matches from known
func CatalogNotFound(name string, known []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelError,
		Context:     "catalog not found",
		Problem:     fmt.Sprintf("Cannot find catalog '%s'.", name),
		Suggestions: FindSimilar(name, known, nil),
		HelpCommands: []string{
			"Available catalogs: " + strings.Join(known, ", "),
		},
		NoColor: noColor,
	})
}

// ModelError reports a model that failed to build
func ModelError(message string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:        LevelError,
		Context:      "model error",
		Problem:      message,
		HelpCommands: []string{"Get help: entitymodel inspect --help"},
		NoColor:      noColor,
	})
}

// DestructiveWarning reports operations that may lose data
func DestructiveWarning(operations []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelWarning,
		Context:     "destructive changes",
		Problem:     fmt.Sprintf("%d operation(s) may lose data.", len(operations)),
		Consequence: strings.Join(operations, "\n   "),
		NoColor:     noColor,
	})
}
