package handler

import (
	"net/http"
	"strconv"

	"bookmarket/internal/config"
	"bookmarket/internal/middleware"
	"bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/booksのHTTP（モデレーション）
type AdminBookHandler struct {
	uc       *usecase.AdminBookUsecase
	reviewUC *usecase.ReviewUsecase
}

// DI
func NewAdminBookHandler(uc *usecase.AdminBookUsecase, reviewUC *usecase.ReviewUsecase) *AdminBookHandler {
	return &AdminBookHandler{uc: uc, reviewUC: reviewUC}
}

func (h *AdminBookHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.GET("/books", h.list)
	g.POST("/books/:id/approve", h.approve)
	g.POST("/books/:id/reject", h.reject)
	g.DELETE("/books/:id", h.delete)
	g.DELETE("/reviews/:id", h.deleteReview)
}

// ステータス別の出品一覧（default: pending）
func (h *AdminBookHandler) list(c echo.Context) error {
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

	status := c.QueryParam("status")
	if status == "" {
		status = "pending"
	}

	out, err := h.uc.ListByStatus(c.Request().Context(), status, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "books retrieved", out)
}

func (h *AdminBookHandler) approve(c echo.Context) error {
	return h.moderate(c, true)
}

func (h *AdminBookHandler) reject(c echo.Context) error {
	return h.moderate(c, false)
}

func (h *AdminBookHandler) moderate(c echo.Context, approve bool) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.Moderate(c.Request().Context(), adminID, bookID, approve); err != nil {
		return writeError(c, err)
	}

	msg := "book approved"
	if !approve {
		msg = "book rejected"
	}
	return okJSON(c, http.StatusOK, msg, nil)
}

func (h *AdminBookHandler) delete(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, bookID); err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "book deleted", nil)
}

// モデレーションとしてのレビュー削除
func (h *AdminBookHandler) deleteReview(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	reviewID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.reviewUC.AdminDelete(c.Request().Context(), adminID, reviewID); err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "review deleted", nil)
}
