// Package modal implements a single-slot overlay that gates the visibility of
// arbitrary content. Instances are meant to be scoped to one view; open two
// overlays with two controllers.
package modal

import (
	"bytes"
	"html/template"
	"sync"
)

type Options struct {
	CloseOnOverlayClick bool
	CloseOnEscape       bool
	// CloseURL is where the close control navigates when scripting is off.
	CloseURL string
}

type Controller struct {
	mu     sync.RWMutex
	isOpen bool
	opts   Options
}

func New(opts Options) *Controller {
	return &Controller{opts: opts}
}

func (c *Controller) Options() Options {
	return c.opts
}

func (c *Controller) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.isOpen
}

// Toggle flips the state and returns the new one.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isOpen = !c.isOpen
	return c.isOpen
}

func (c *Controller) Open() bool {
	return c.set(true)
}

func (c *Controller) Close() bool {
	return c.set(false)
}

func (c *Controller) OverlayClick() bool {
	if !c.opts.CloseOnOverlayClick {
		return false
	}

	return c.set(false)
}

func (c *Controller) Escape() bool {
	if !c.opts.CloseOnEscape {
		return false
	}

	return c.set(false)
}

// set reports whether the state changed.
func (c *Controller) set(open bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isOpen == open {
		return false
	}

	c.isOpen = open
	return true
}

var overlayTmpl = template.Must(template.New("overlay").Parse(`<div class="modal-overlay" role="presentation"{{if .CloseOnOverlayClick}} data-close-on-click="true"{{end}}{{if .CloseOnEscape}} data-close-on-escape="true"{{end}}>
{{- if .CloseOnOverlayClick}}<a class="modal-backdrop" href="{{.CloseURL}}" aria-hidden="true" tabindex="-1"></a>{{end -}}
<div class="modal" role="dialog" aria-modal="true"><div class="modal-content">
<a class="modal-close" href="{{.CloseURL}}" aria-label="Close modal" title="Close modal" data-action="close">X</a>
{{.Content}}
</div></div></div>`))

// Render returns content wrapped in the overlay markup while open, and nothing
// while closed so the content is never mounted.
func (c *Controller) Render(content template.HTML) template.HTML {
	if !c.IsOpen() {
		return ""
	}

	closeURL := c.opts.CloseURL
	if closeURL == "" {
		closeURL = "#"
	}

	var buf bytes.Buffer
	if err := overlayTmpl.Execute(&buf, struct {
		CloseOnOverlayClick bool
		CloseOnEscape       bool
		CloseURL            string
		Content             template.HTML
	}{
		CloseOnOverlayClick: c.opts.CloseOnOverlayClick,
		CloseOnEscape:       c.opts.CloseOnEscape,
		CloseURL:            closeURL,
		Content:             content,
	}); err != nil {
		// the template is static, only a writer failure could land here
		return ""
	}

	return template.HTML(buf.String())
}
