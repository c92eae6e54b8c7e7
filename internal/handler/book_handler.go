package handler

import (
	"net/http"
	"strconv"

	"bookmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 全エンドポイント共通のレスポンス形式
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func okJSON(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func failJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, Response{Success: false, Message: message})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return failJSON(c, he.Status, he.Message)
	}

	//500
	return failJSON(c, http.StatusInternalServerError, "internal error")
}

// /books の公開API
type BookHandler struct {
	uc       *usecase.BookUsecase
	reviewUC *usecase.ReviewUsecase
}

// DI
func NewBookHandler(uc *usecase.BookUsecase, reviewUC *usecase.ReviewUsecase) *BookHandler {
	return &BookHandler{uc: uc, reviewUC: reviewUC}
}

// 公開カタログのルートを登録（認証不要）
func (h *BookHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/books", h.list)
	e.GET("/books/:id", h.detail)
	e.GET("/books/:id/reviews", h.reviews)
	e.GET("/categories", h.categories)
}

func (h *BookHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid page")
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid limit")
		}
		limit = l
	}

	q := c.QueryParam("q")
	sort := c.QueryParam("sort")
	condition := c.QueryParam("condition")

	var categoryID *int64
	if v := c.QueryParam("category_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid category_id")
		}
		categoryID = &x
	}

	var minPrice *int64
	if v := c.QueryParam("min_price"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid min_price")
		}
		minPrice = &x
	}

	var maxPrice *int64
	if v := c.QueryParam("max_price"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid max_price")
		}
		maxPrice = &x
	}

	out, err := h.uc.Browse(c.Request().Context(), usecase.BrowseBooksInput{
		Page:       page,
		Limit:      limit,
		Q:          q,
		CategoryID: categoryID,
		Condition:  condition,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       sort,
	})
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "books retrieved", out)
}

func (h *BookHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	b, err := h.uc.GetDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "book retrieved", b)
}

func (h *BookHandler) reviews(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	out, err := h.reviewUC.ListByBook(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "reviews retrieved", out)
}

func (h *BookHandler) categories(c echo.Context) error {
	cats, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return okJSON(c, http.StatusOK, "categories retrieved", cats)
}
