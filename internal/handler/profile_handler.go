package handler

import (
	"net/http"

	"bookmarket/internal/config"
	"bookmarket/internal/middleware"
	"bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /profileのHTTP
type ProfileHandler struct {
	uc       *usecase.ProfileUsecase
	uploadUC *usecase.UploadUsecase
}

// DI
func NewProfileHandler(uc *usecase.ProfileUsecase, uploadUC *usecase.UploadUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc, uploadUC: uploadUC}
}

type UpdateProfileRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

func (h *ProfileHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/profile")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.get)
	g.PUT("", h.update)
	g.PUT("/password", h.changePassword)
	g.POST("/image", h.uploadImage)
	g.DELETE("", h.deleteAccount)
}

func (h *ProfileHandler) get(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.uc.Get(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "profile retrieved", out)
}

func (h *ProfileHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}

	out, err := h.uc.Update(c.Request().Context(), userID, usecase.UpdateProfileInput{
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "profile updated", out)
}

func (h *ProfileHandler) changePassword(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}

	err := h.uc.ChangePassword(c.Request().Context(), userID, usecase.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return writeError(c, err)
	}

	//password変更後は再ログインが必要
	return okJSON(c, http.StatusOK, "password changed, please log in again", nil)
}

func (h *ProfileHandler) uploadImage(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
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

	if err := h.uc.SetProfileImage(c.Request().Context(), userID, saved.Path); err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "image uploaded", saved)
}

func (h *ProfileHandler) deleteAccount(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return failJSON(c, http.StatusUnauthorized, "unauthorized")
	}

	var req DeleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.uc.DeleteAccount(c.Request().Context(), userID, req.Password); err != nil {
		return writeError(c, err)
	}

	return okJSON(c, http.StatusOK, "account deleted", nil)
}
