package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoColorStyles_RenderPlainText(t *testing.T) {
	styles := NoColorStyles()

	assert.Equal(t, "hello", styles.Header.Render("hello"))
	assert.Equal(t, "hello", styles.Success.Render("hello"))
	assert.Equal(t, "hello", styles.Warning.Render("hello"))
	assert.Equal(t, "hello", styles.Label.Render("hello"))
}

func TestDefaultStyles_HeaderIsBold(t *testing.T) {
	assert.True(t, DefaultStyles().Header.GetBold())
}

func TestDefaultStyles_PanelHasBorder(t *testing.T) {
	panel := DefaultStyles().Panel

	assert.True(t, panel.GetBorderTop())
	assert.True(t, panel.GetBorderLeft())
}

func TestGetStyles(t *testing.T) {
	assert.False(t, GetStyles(true).Header.GetBold())
	assert.True(t, GetStyles(false).Header.GetBold())
}
