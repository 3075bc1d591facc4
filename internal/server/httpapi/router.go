package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/julienschmidt/httprouter"
)

// Routes returns the complete HTTP handler, middleware included.
func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.GET("/", h.root)

	router.POST("/auth/register", h.register)
	router.POST("/auth/login", h.login)
	router.POST("/auth/logout", h.logout)
	router.GET("/auth/profile", h.requireUser(h.getProfile))
	router.PUT("/auth/profile", h.requireUser(h.updateProfile))
	router.POST("/auth/profile/photo", h.requireUser(h.uploadPhoto))

	router.GET("/posts", h.listPosts)
	router.POST("/posts", h.requireUser(h.createPost))
	router.GET("/posts/:post_id", h.getPost)
	router.PUT("/posts/:post_id", h.requireUser(h.updatePost))
	router.DELETE("/posts/:post_id", h.requireUser(h.deletePost))

	router.GET("/comments/posts/:post_id", h.listComments)
	router.POST("/comments/posts/:post_id", h.requireUser(h.createComment))
	router.DELETE("/comments/:comment_id", h.requireUser(h.deleteComment))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, common.ErrorNotFound)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Kind: "MethodNotAllowed", Message: "method not allowed"})
	})
	router.PanicHandler = h.rescue

	return h.tracing(h.logging(router))
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "MediaBox API is running"})
}
