package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/platform/apierr"
	"github.com/yungbote/execudex-backend/internal/platform/ctxutil"
)

func profileParams(c *gin.Context) (profiles.Kind, int64, error) {
	kind, err := profiles.ParseKind(c.Param("kind"))
	if err != nil {
		return "", 0, apierr.BadRequest("invalid_kind", err)
	}
	id, err := profiles.ParseID(c.Param("id"))
	if err != nil {
		return "", 0, apierr.BadRequest("invalid_id", err)
	}
	return kind, id, nil
}

func currentUser(c *gin.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
	}
	return rd.UserID, nil
}

func traceID(c *gin.Context) string {
	return ctxutil.TraceID(c.Request.Context())
}
