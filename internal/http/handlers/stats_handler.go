// Platform statistics handler.
//
// GET /base-info returns public aggregate numbers for the landing page.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-marketplace-backend/internal/repo"
)

// BaseInfo godoc
// @ID          baseInfo
// @Summary     Platform statistics
// @Description Returns the total offer count, review count, average rating across all reviews (null when there are none), and the number of business profiles.
// @Tags        Stats
// @Produce     json
//
// @Success     200  {object}  repo.PlatformStats
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /base-info [get]
func (h *Handlers) BaseInfo(c *gin.Context) {
	stats, err := repo.GetPlatformStats(c.Request.Context(), h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
