package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMessage(t *testing.T) {
	out := FormatMessage(MessageOptions{
		Level:        LevelError,
		Context:      "model error",
		Problem:      "The entity 'Post' was not found.",
		Suggestions:  []string{"Posts"},
		HelpCommands: []string{"entitymodel inspect"},
		NoColor:      true,
	})

	assert.Equal(t, "❌ MODEL ERROR: The entity 'Post' was not found.\n"+
		"\n   Did you mean: Posts?\n"+
		"\n   → entitymodel inspect\n", out)
}

func TestFormatMessage_Levels(t *testing.T) {
	assert.Contains(t, FormatMessage(MessageOptions{Level: LevelWarning, Problem: "careful", NoColor: true}), "⚠️ careful")
	assert.Contains(t, FormatMessage(MessageOptions{Level: LevelInfo, Problem: "note", NoColor: true}), "ℹ️ note")
}

func TestCatalogNotFound(t *testing.T) {
	out := CatalogNotFound("blgo", []string{"blog", "blog-v1", "shop"}, true)

	assert.Contains(t, out, "CATALOG NOT FOUND: Cannot find catalog 'blgo'.")
	assert.Contains(t, out, "Did you mean: blog?")
	assert.Contains(t, out, "Available catalogs: blog, blog-v1, shop")
}

func TestDestructiveWarning(t *testing.T) {
	out := DestructiveWarning([]string{"DropColumn Author.Email", "DropTable Tag"}, true)

	assert.Contains(t, out, "DESTRUCTIVE CHANGES: 2 operation(s) may lose data.")
	assert.Contains(t, out, "   DropColumn Author.Email\n   DropTable Tag\n")
}

func TestFormatSuccess(t *testing.T) {
	assert.Equal(t, "✓ no changes", FormatSuccess("no changes", true))
}
