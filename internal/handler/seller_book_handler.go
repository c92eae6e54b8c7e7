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

// 出品者向けの /my/books
type SellerBookHandler struct {
	uc       *usecase.BookUsecase
	uploadUC *usecase.UploadUsecase
}

// DI
func NewSellerBookHandler(uc *usecase.BookUsecase, uploadUC *usecase.UploadUsecase) *SellerBookHandler {
	return &SellerBookHandler{uc: uc, uploadUC: uploadUC}
}

type SellBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Condition   string `json:"condition"`
	CategoryID  int64  `json:"category_id"`
}

func (h *SellerBookHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/my/books")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.list)
	g.POST("", h.sell)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/images", h.uploadImage)
}

func (h *SellerBookHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

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

	out, err := h.uc.ListOwn(c.Request().Context(), userID, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "books retrieved", out)
}

// 出品。承認されるまで公開されない。
func (h *SellerBookHandler) sell(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req SellBookRequest
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}

	b, err := h.uc.Sell(c.Request().Context(), userID, usecase.SellBookInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Price:       req.Price,
		Condition:   req.Condition,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusCreated, "book listed for approval", b)
}

func (h *SellerBookHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	var req SellBookRequest
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}

	err = h.uc.UpdateOwn(c.Request().Context(), userID, bookID, usecase.SellBookInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Price:       req.Price,
		Condition:   req.Condition,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "book updated", nil)
}

func (h *SellerBookHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	if err := h.uc.DeleteOwn(c.Request().Context(), userID, bookID); err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "book removed", nil)
}

// multipartの"image"を保存して本に紐付ける。
// kind=cover（default）か kind=additional。
func (h *SellerBookHandler) uploadImage(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid id")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "image file required")
	}

	f, err := fh.Open()
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "cannot read file")
	}
	defer f.Close()

	saved, err := h.uploadUC.SaveImage(f, fh.Filename)
	if err != nil {
		return writeError(c, err)
	}

	kind := c.QueryParam("kind")
	var cover, additional string
	if kind == "additional" {
		additional = saved.Path
	} else {
		cover = saved.Path
	}

	if err := h.uc.SetImages(c.Request().Context(), userID, bookID, cover, additional); err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "image uploaded", saved)
}
