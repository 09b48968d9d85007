package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/services"
)

// contractEventPayload is the Eventarc-style body delivered for a store
// document-created trigger: the full resource name plus the created
// document's field map.
type contractEventPayload struct {
	Value struct {
		Name   string `json:"name"`
		Fields map[string]struct {
			StringValue string `json:"stringValue"`
		} `json:"fields"`
	} `json:"value"`
}

type ContractEventHandler struct {
	log      *logger.Logger
	contract services.ContractService
}

func NewContractEventHandler(log *logger.Logger, contract services.ContractService) *ContractEventHandler {
	return &ContractEventHandler{
		log:      log.With("handler", "ContractEventHandler"),
		contract: contract,
	}
}

func (h *ContractEventHandler) Handle(c *gin.Context) {
	var payload contractEventPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Value.Name == "" {
		// A malformed event will never become valid; acknowledge and drop
		// rather than trigger redelivery.
		h.log.Warn("Malformed contract event, dropping", "error", err)
		c.Status(http.StatusNoContent)
		return
	}

	ev := services.ContractEvent{Resource: payload.Value.Name}
	if f, ok := payload.Value.Fields["gcsPath"]; ok {
		ev.GCSPath = f.StringValue
	}
	h.contract.HandleCreated(c.Request.Context(), ev)

	c.JSON(http.StatusOK, gin.H{"processed": true})
}
