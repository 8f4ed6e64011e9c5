package handlers

import (
	"net/http"

	"github.com/amine-mosbah/genesis-multimodal-ai/pkg/api"
)

// ListPipelines handles GET /pipelines.
// It returns the supported pipeline types for frontend discovery.
func (h *Handlers) ListPipelines(w http.ResponseWriter, r *http.Request) {
	defs := h.registry.List()

	resp := api.PipelinesResponse{
		Pipelines: make([]api.PipelineInfo, 0, len(defs)),
	}
	for _, def := range defs {
		resp.Pipelines = append(resp.Pipelines, api.PipelineInfo{
			Type:        def.Type,
			Description: def.Description,
		})
	}

	h.respondJson(w, http.StatusOK, resp)
}
