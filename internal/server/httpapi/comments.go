package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/mediabox/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	postID, err := pathID(ps.ByName("post_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var in commentRequest
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.comments.Create(r.Context(), currentUser(r), postID, in.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	postID, err := pathID(ps.ByName("post_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.comments.ListForPost(r.Context(), postID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Comment{}
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps.ByName("comment_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.comments.Delete(r.Context(), currentUser(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
