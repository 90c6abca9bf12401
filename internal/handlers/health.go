package handlers

import (
	"net/http"

	"chatbot-backend/internal/models"
	"chatbot-backend/internal/services"
)

type engineInfo interface {
	Mode() services.Mode
	Handle() *services.ModelHandle
}

type HealthHandler struct {
	engine engineInfo
}

func NewHealthHandler(engine engineInfo) *HealthHandler {
	return &HealthHandler{engine: engine}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:  "ok",
		Mode:    string(h.engine.Mode()),
		Backend: "rules",
	}
	if handle := h.engine.Handle(); handle != nil {
		resp.Backend = handle.Backend
		resp.Model = handle.ModelName
		resp.Device = handle.Device
	}

	writeJSON(w, http.StatusOK, resp)
}
