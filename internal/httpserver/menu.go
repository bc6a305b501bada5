package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) getMenu(c *gin.Context) {
	categories, err := h.deps.Menu.GetMenu(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
