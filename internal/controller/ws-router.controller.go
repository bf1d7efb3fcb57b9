package controller

import "github.com/sharetube/thumbpreview/pkg/wsrouter"

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	r := wsrouter.New()
	r.Use(c.wsRequestIdWSMw(), c.loggerWSMw())
	r.OnError(c.writeError)

	wsrouter.Handle(r, "ALIVE", c.handleAlive)
	wsrouter.Handle(r, "GET_STATE", c.handleGetState)
	wsrouter.Handle(r, "UPDATE_INPUT", c.handleUpdateInput)
	wsrouter.Handle(r, "TOGGLE_MODAL", c.handleToggleModal)
	wsrouter.Handle(r, "OPEN_MODAL", c.handleOpenModal)
	wsrouter.Handle(r, "CLOSE_MODAL", c.handleCloseModal)
	wsrouter.Handle(r, "COPY_EMBED_URL", c.handleCopyEmbedURL)
	wsrouter.Handle(r, "TOGGLE_FULLSCREEN", c.handleToggleFullscreen)
	wsrouter.Handle(r, "FULLSCREEN_FAILED", c.handleFullscreenFailed)
	wsrouter.Handle(r, "FULLSCREEN_EXITED", c.handleFullscreenExited)
	wsrouter.Handle(r, "END_SESSION", c.handleEndSession)

	return r
}
