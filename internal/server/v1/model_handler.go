package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kasuboski/openai-gateway/internal/registry"
	"github.com/kasuboski/openai-gateway/pkg/api"
)

type ModelHandler struct {
	registry *registry.Registry
}

func NewModelHandler(reg *registry.Registry) *ModelHandler {
	return &ModelHandler{registry: reg}
}

// ListProviders returns the provider namespaces currently routable. Model
// names are free-form under each namespace, so only the namespaces are
// enumerable.
func (h *ModelHandler) ListProviders(c *gin.Context) {
	ids, err := h.registry.Providers(c.Request.Context())
	if err != nil {
		_ = c.Error(api.NewProblem(http.StatusServiceUnavailable,
			"Service Unavailable",
			"provider configuration is currently unavailable",
			api.WithLog(err)))
		return
	}

	list := api.ModelList{Object: "list", Data: make([]api.ModelInfo, 0, len(ids))}
	for _, id := range ids {
		list.Data = append(list.Data, api.ModelInfo{
			ID:      id,
			Object:  "provider",
			OwnedBy: "system",
		})
	}

	c.JSON(http.StatusOK, list)
}
