package handler

import (
	"net/http"
	"strconv"
	"time"

	"bookmarket/internal/config"
	"bookmarket/internal/domain/model"
	"bookmarket/internal/middleware"
	"bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/usersのHTTP
type AdminUserHandler struct {
	uc     *usecase.AdminUserUsecase
	authUC *usecase.AuthUsecase
}

// DI
func NewAdminUserHandler(uc *usecase.AdminUserUsecase, authUC *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc, authUC: authUC}
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.GET("/users", h.list)
	g.GET("/users/:id", h.detail)
	g.PATCH("/users/:id/active", h.setActive)
	g.POST("/users/:id/force-logout", h.forceLogout)
	g.DELETE("/users/:id", h.delete)
	g.GET("/actions", h.listActions)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid page")
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid limit")
		}
		limit = l
	}

	out, err := h.uc.List(c.Request().Context(), page, limit, c.QueryParam("q"))
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "users retrieved", out)
}

func (h *AdminUserHandler) detail(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.uc.GetDetail(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "user retrieved", out)
}

func (h *AdminUserHandler) setActive(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.SetActive(c.Request().Context(), adminID, userID, req.IsActive); err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "user updated", nil)
}

// token_versionを+1して既存JWTを全て無効化する
func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.authUC.ForceLogout(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}

	return okJSON(c, http.StatusOK, "user logged out", out)
}

func (h *AdminUserHandler) delete(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, userID); err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "user deleted", nil)
}

// 監査ログの一覧
func (h *AdminUserHandler) listActions(c echo.Context) error {
	f := repository.AdminActionFilter{Limit: 50}

	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid limit")
		}
		f.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid offset")
		}
		f.Offset = o
	}
	if v := c.QueryParam("admin_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid admin_id")
		}
		f.AdminID = &x
	}
	if v := c.QueryParam("action_type"); v != "" {
		t := model.AdminActionType(v)
		f.ActionType = &t
	}
	if v := c.QueryParam("target_table"); v != "" {
		f.TargetTable = &v
	}
	if v := c.QueryParam("target_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid target_id")
		}
		f.TargetID = &x
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid from date")
		}
		f.CreatedFrom = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid to date")
		}
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		f.CreatedTo = &end
	}

	out, err := h.uc.ListActions(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "actions retrieved", out)
}
