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

// 売上レポートのHTTP。
// 管理者は全体、出品者は自分の売上だけ見られる。
type ReportHandler struct {
	uc *usecase.ReportUsecase
}

// DI
func NewReportHandler(uc *usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func (h *ReportHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin/reports")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())
	admin.GET("/sales", h.adminSales)

	my := e.Group("/my/reports")
	my.Use(middleware.AuthJWT(cfg))
	my.Use(middleware.TokenVersionGuard(userRepo))
	my.GET("/sales", h.mySales)
}

// 全体の売上レポート。seller_idで出品者スコープにも絞れる。
func (h *ReportHandler) adminSales(c echo.Context) error {
	var sellerID *int64
	if v := c.QueryParam("seller_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "invalid seller_id")
		}
		sellerID = &x
	}

	return h.render(c, sellerID)
}

// 自分（出品者）の売上レポート
func (h *ReportHandler) mySales(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	return h.render(c, &userID)
}

func (h *ReportHandler) render(c echo.Context, sellerID *int64) error {
	from, to, err := usecase.ParseReportRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return writeError(c, err)
	}

	report, err := h.uc.Generate(c.Request().Context(), usecase.ReportInput{
		From:     from,
		To:       to,
		SellerID: sellerID,
	})
	if err != nil {
		return writeError(c, err)
	}

	format := c.QueryParam("format")
	if format == "" || format == "json" {
		return okJSON(c, http.StatusOK, "report generated", report)
	}

	body, contentType, err := h.uc.Export(report, format)
	if err != nil {
		return writeError(c, err)
	}
	return c.Blob(http.StatusOK, contentType, body)
}
