package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/mediabox/internal/server/models"
	"github.com/dmitrijs2005/mediabox/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.users.Project(r.Context(), u))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.users.Logout(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, h.users.Project(r.Context(), currentUser(r)))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var patch models.ProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), currentUser(r), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.users.Project(r.Context(), u))
}

func (h *Handler) uploadPhoto(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.parseMultipart(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	up, closeFile, err := formUpload(r, "file")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer closeFile()
	if up == nil {
		h.writeError(w, r, badRequest("file is required"))
		return
	}

	u, err := h.users.UploadPhoto(r.Context(), currentUser(r), *up)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.users.Project(r.Context(), u))
}
