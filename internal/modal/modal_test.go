package modal

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleParity(t *testing.T) {
	c := New(Options{})
	require.False(t, c.IsOpen(), "overlay starts closed")

	for n := 1; n <= 6; n++ {
		c.Toggle()
		assert.Equal(t, n%2 == 1, c.IsOpen(), "after %d toggles", n)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	c := New(Options{})

	assert.True(t, c.Open())
	assert.False(t, c.Open(), "opening an open overlay must not change state")
	assert.True(t, c.IsOpen())

	assert.True(t, c.Close())
	assert.False(t, c.Close())
	assert.False(t, c.IsOpen())
}

func TestDismissalAffordances(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		c := New(Options{CloseOnOverlayClick: true, CloseOnEscape: true})
		c.Open()
		assert.True(t, c.OverlayClick())
		assert.False(t, c.IsOpen())

		c.Open()
		assert.True(t, c.Escape())
		assert.False(t, c.IsOpen())
	})

	t.Run("explicit close only", func(t *testing.T) {
		c := New(Options{})
		c.Open()
		assert.False(t, c.OverlayClick())
		assert.False(t, c.Escape())
		assert.True(t, c.IsOpen())
		assert.True(t, c.Close())
	})
}

func TestRender(t *testing.T) {
	const content = template.HTML(`<iframe src="https://www.youtube.com/embed/abc?rel=0&amp;autoplay=1"></iframe>`)

	c := New(Options{CloseOnOverlayClick: true, CloseURL: "/?v=abc"})
	assert.Empty(t, c.Render(content), "closed overlay must not mount its content")

	c.Toggle()
	out := string(c.Render(content))
	assert.Contains(t, out, string(content))
	assert.Contains(t, out, `aria-label="Close modal"`)
	assert.Contains(t, out, `class="modal-backdrop"`)
	assert.Contains(t, out, `href="/?v=abc"`)

	c.Toggle()
	assert.Empty(t, c.Render(content))
}

func TestRenderWithoutOverlayClose(t *testing.T) {
	c := New(Options{})
	c.Open()

	out := string(c.Render("<p>hi</p>"))
	assert.False(t, strings.Contains(out, "modal-backdrop"))
	assert.Contains(t, out, `href="#"`)
}
