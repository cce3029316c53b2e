package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ledger/internal/dashboard"
)

// DashboardSource computes the dashboard figures.
type DashboardSource interface {
	Stats(ctx context.Context, asOf time.Time) (*dashboard.Stats, error)
}

type DashboardController struct {
	source DashboardSource
}

func NewDashboardController(source DashboardSource) *DashboardController {
	return &DashboardController{source: source}
}

// Stats returns cash on hand and outstanding invoices. Without as_of the
// latest statement on file sets the reference date.
// GET /api/dashboard/stats?as_of=YYYY-MM-DD
func (dc *DashboardController) Stats(c *gin.Context) {
	var asOf time.Time
	if s := c.Query("as_of"); s != "" {
		day, err := time.Parse(dateLayout, s)
		if err != nil {
			respondBadRequest(c, "invalid as_of date, expected YYYY-MM-DD")
			return
		}
		asOf = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	stats, err := dc.source.Stats(c.Request.Context(), asOf)
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
