package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/mediabox/internal/server/models"
	"github.com/dmitrijs2005/mediabox/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

// createPost accepts multipart (title, content, optional image) or a JSON
// body without an image.
func (h *Handler) createPost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var (
		in    services.PostInput
		image *services.Upload
	)

	if isMultipart(r) {
		if err := h.parseMultipart(w, r); err != nil {
			h.writeError(w, r, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		in.Title = r.FormValue("title")
		in.Content = r.FormValue("content")

		up, closeFile, err := formUpload(r, "image")
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		defer closeFile()
		image = up
	} else if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.posts.Create(r.Context(), currentUser(r), in, image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.posts.View(r.Context(), p))
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.posts.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.views(r, list))
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps.ByName("post_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.posts.View(r.Context(), p))
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps.ByName("post_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var in services.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.posts.Update(r.Context(), currentUser(r), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.posts.View(r.Context(), p))
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps.ByName("post_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.posts.Delete(r.Context(), currentUser(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Post deleted"})
}

func (h *Handler) views(r *http.Request, list []*models.Post) []models.PostView {
	out := make([]models.PostView, 0, len(list))
	for _, p := range list {
		out = append(out, h.posts.View(r.Context(), p))
	}
	return out
}
