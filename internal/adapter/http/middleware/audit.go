package middleware

import (
	"encoding/json"
	"time"

	"storefront-core/internal/core/domain"
	"storefront-core/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware for successful wallet write
// operations. The approval engine audits its own transitions with richer
// detail, so only routes outside it are mapped here.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, entityName := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var actorID *uuid.UUID
		if aid, exists := c.Get(CtxActorID); exists {
			if id, ok := aid.(uuid.UUID); ok {
				actorID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:         uuid.New(),
			ActorID:    actorID,
			Action:     action,
			EntityName: entityName,
			SourceAddr: c.ClientIP(),
			Details:    string(details),
			CreatedAt:  time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	if path == "/api/v1/wallets/credit" && method == "POST" {
		return domain.AuditActionCredit, "wallet"
	}
	return "", ""
}
