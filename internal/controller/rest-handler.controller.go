package controller

import (
	"net/http"

	"github.com/sharetube/thumbpreview/pkg/rest"
)

type getPreviewQuery struct {
	Input string `json:"input" validate:"max=2048"`
}

func (c *controller) getPreview(w http.ResponseWriter, r *http.Request) {
	query := getPreviewQuery{
		Input: r.URL.Query().Get("input"),
	}

	if validationErrors, ok := c.validate.Validate(query); !ok {
		c.logger.InfoContext(r.Context(), "invalid preview query", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	var input *string
	if r.URL.Query().Has("input") {
		input = &query.Input
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": c.previewService.Preview(input)})
}
