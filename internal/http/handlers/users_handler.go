// Whitelist HTTP handlers.
//
//   - GET    /api/users       (list, newest first, weak ETag)
//   - POST   /api/users       (create, optional Idempotency-Key)
//   - DELETE /api/users/{id}  (remove)
//
// All routes sit behind AdminAuth.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/cfbot/internal/http/middleware"
	"github.com/tbourn/cfbot/internal/services"
)

// CreateUserRequest is the payload of POST /api/users. At least one field is
// required; a leading "@" on Username is dropped.
type CreateUserRequest struct {
	Username   string `json:"username,omitempty" example:"@alice"`
	TelegramID *int64 `json:"telegramId,omitempty" example:"123456789"`
}

// DeleteUserResponse acknowledges a deletion.
type DeleteUserResponse struct {
	Success bool `json:"success" example:"true"`
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List whitelisted users
// @Description Returns every whitelist entry, newest first. Supports weak ETag via If-None-Match.
// @Tags        Users
// @Produce     json
// @Security    AdminKey
//
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
//
// @Success     200  {array}   domain.WhitelistEntry
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	if count, latest, err := h.users.Stats(ctx); err == nil {
		var ts int64
		if latest != nil {
			ts = latest.UnixNano()
		}
		etag := fmt.Sprintf(`W/"users:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.users.List(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "failed to list users")
		return
	}
	ok(c, http.StatusOK, items)
}

// CreateUser godoc
// @ID          createUser
// @Summary     Whitelist a user
// @Description Adds a user by Telegram username and/or numeric id. Retrying with the same Idempotency-Key returns the original entry.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    AdminKey
//
// @Param       Idempotency-Key  header  string                      false  "Retry-safe creation key"
// @Param       body             body    handlers.CreateUserRequest  true   "User identity"
//
// @Success     201  {object}  domain.WhitelistEntry
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     409  {object}  handlers.ErrorResponse  "Already whitelisted"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/users [post]
func (h *Handlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	entry, replayed, err := h.users.Create(c.Request.Context(), services.CreateInput{
		Username:       req.Username,
		TelegramID:     req.TelegramID,
		IdempotencyKey: key,
	})
	switch {
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		return
	case err != nil:
		middleware.LoggerFrom(c).Error().Err(err).Msg("create whitelist entry")
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "failed to create user")
		return
	}

	if replayed {
		c.Header("Idempotent-Replay", "true")
	}
	ok(c, http.StatusCreated, entry)
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Remove a user from the whitelist
// @Tags        Users
// @Produce     json
// @Security    AdminKey
//
// @Param       id  path  string  true  "Entry ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.DeleteUserResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	err := h.users.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case err != nil:
		middleware.LoggerFrom(c).Error().Err(err).Msg("delete whitelist entry")
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "failed to delete user")
	default:
		ok(c, http.StatusOK, DeleteUserResponse{Success: true})
	}
}
