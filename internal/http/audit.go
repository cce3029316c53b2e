package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/ledger/internal/database"
	auditRepo "github.com/mrlokans/ledger/internal/database/audit"
	"github.com/mrlokans/ledger/internal/entities"
)

type AuditStore interface {
	GetByID(ctx context.Context, id uint) (*entities.AuditEvent, error)
	List(ctx context.Context, filter auditRepo.Filter, opts database.ListOptions) (database.Page[entities.AuditEvent], error)
}

type AuditController struct {
	store AuditStore
}

func NewAuditController(store AuditStore) *AuditController {
	return &AuditController{store: store}
}

// List returns audit events, newest first.
// GET /api/audit-events?action=&entity_type=&entity_id=&since=
func (ac *AuditController) List(c *gin.Context) {
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	filter := auditRepo.Filter{
		Action:     entities.AuditAction(c.Query("action")),
		EntityType: c.Query("entity_type"),
	}
	if filter.EntityID, ok = parseOptionalQueryID(c, "entity_id"); !ok {
		return
	}
	if s := c.Query("since"); s != "" {
		since, err := time.Parse(dateLayout, s)
		if err != nil {
			respondBadRequest(c, "invalid since date, expected YYYY-MM-DD")
			return
		}
		filter.Since = &since
	}

	page, err := ac.store.List(c.Request.Context(), filter, opts)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	c.JSON(http.StatusOK, newPaginatedResponse(page, opts))
}

// GET /api/audit-events/:id
func (ac *AuditController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	event, err := ac.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "audit event", "get audit event")
		return
	}
	c.JSON(http.StatusOK, event)
}
