package controller

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/sharetube/thumbpreview/internal/modal"
	"github.com/sharetube/thumbpreview/internal/service/preview"
	"github.com/sharetube/thumbpreview/pkg/validator"
	"github.com/sharetube/thumbpreview/pkg/ytthumb"
)

//go:embed templates/*.html
var templatesFS embed.FS

func mustParseTemplates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

type viewData struct {
	Input    string
	HasVideo bool
	VideoId  string
	Gallery  []ytthumb.Thumbnail
	Copied   bool
	PlayURL  string
	Modal    template.HTML
}

func pageURL(input string, play bool) string {
	q := url.Values{}
	if input != "" {
		q.Set("v", input)
	}
	if play {
		q.Set("play", "1")
	}
	if len(q) == 0 {
		return "/"
	}

	return "/?" + q.Encode()
}

func (c *controller) renderPlayer(playerURL string) template.HTML {
	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, "player", playerURL); err != nil {
		return ""
	}

	return template.HTML(buf.String())
}

func (c *controller) renderView(data viewData) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, "view", data); err != nil {
		return "", err
	}

	return template.HTML(buf.String()), nil
}

// stateView maps live session state onto the view. Links fall back to page
// navigation so the markup stays usable without the socket.
func (c *controller) stateView(state *preview.State) viewData {
	var videoId string
	if state.VideoId != nil {
		videoId = *state.VideoId
	}

	opts := c.previewService.ModalOptions()
	opts.CloseURL = pageURL(state.Input, false)
	overlay := modal.New(opts)
	if state.ModalOpen {
		overlay.Open()
	}

	data := viewData{
		Input:    state.Input,
		HasVideo: videoId != "",
		VideoId:  videoId,
		Gallery:  state.Gallery,
		Copied:   state.Copied,
		PlayURL:  pageURL(state.Input, !state.ModalOpen),
	}
	if state.PlayerURL != "" {
		data.Modal = overlay.Render(c.renderPlayer(state.PlayerURL))
	}

	return data
}

type getPageQuery struct {
	Input string `json:"v" validate:"max=2048"`
	Play  string `json:"play" validate:"omitempty,oneof=0 1"`
}

func (c *controller) getPage(w http.ResponseWriter, r *http.Request) {
	query := getPageQuery{
		Input: r.URL.Query().Get("v"),
		Play:  r.URL.Query().Get("play"),
	}

	if validationErrors, ok := c.validate.Validate(query); !ok {
		c.logger.InfoContext(r.Context(), "invalid page query", "errors", validationErrors)
		http.Error(w, validator.Error(validationErrors).Error(), http.StatusBadRequest)
		return
	}

	var input *string
	if r.URL.Query().Has("v") {
		input = &query.Input
	}

	p := c.previewService.Preview(input)

	state := preview.State{
		Input:     query.Input,
		VideoId:   p.VideoId,
		ModalOpen: query.Play == "1" && p.PlayerURL != "",
		Gallery:   p.Thumbnails,
		EmbedURL:  p.EmbedURL,
		PlayerURL: p.PlayerURL,
	}

	view, err := c.renderView(c.stateView(&state))
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to render view", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := c.templates.ExecuteTemplate(&buf, "index", struct {
		Input string
		View  template.HTML
	}{
		Input: query.Input,
		View:  view,
	}); err != nil {
		c.logger.ErrorContext(r.Context(), "failed to render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
