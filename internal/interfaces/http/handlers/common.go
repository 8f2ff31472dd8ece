package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examforge/examforge/internal/interfaces/http/middleware"
	"github.com/examforge/examforge/internal/shared/constants"
	"github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/utils"
)

// requireUser writes a 401 and returns false when the request is anonymous.
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return 0, false
	}
	return userID, true
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("invalid "+name, raw)
	}
	return uint(id), nil
}

func parsePagination(c *gin.Context) (int, int) {
	page := constants.DefaultPage
	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	pageSize := constants.DefaultPageSize
	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		if ps, err := strconv.Atoi(pageSizeStr); err == nil && ps > 0 && ps <= constants.MaxPageSize {
			pageSize = ps
		}
	}
	return page, pageSize
}

// bindError turns a gin binding failure into a validation AppError.
func bindError(err error) error {
	return errors.NewValidationError("invalid request body", err.Error())
}
