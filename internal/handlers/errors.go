// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/artfolio/artfolio-backend/internal/services"
	"github.com/artfolio/artfolio-backend/internal/utils"
)

// respondServiceError maps the services error taxonomy onto the HTTP
// response envelope. Anything untyped is a 500 and gets logged with the
// request path; the client only sees a generic message.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var forbiddenErr *services.ForbiddenError
	var notFoundErr *services.NotFoundError
	var conflictErr *services.ConflictError

	switch {
	case errors.As(err, &validationErr):
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Message, nil)
	case errors.As(err, &forbiddenErr):
		utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", forbiddenErr.Message, nil)
	case errors.As(err, &notFoundErr):
		utils.NotFoundResponse(c, notFoundErr.Resource)
	case errors.As(err, &conflictErr):
		utils.ConflictResponse(c, conflictErr.Message)
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}

// currentUserID pulls the authenticated user's id out of the gin context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	return userID, true
}

// optionalUserID returns the viewer's id when a valid token was presented.
func optionalUserID(c *gin.Context) *uuid.UUID {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return nil
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil
	}
	return &userID
}

// pathUUID parses a uuid path parameter, answering 400 on garbage.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
