package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type BookUsecase struct {
	bookRepo     repo.BookRepository
	categoryRepo repo.CategoryRepository
}

// DI
func NewBookUsecase(bookRepo repo.BookRepository, categoryRepo repo.CategoryRepository) *BookUsecase {
	return &BookUsecase{
		bookRepo:     bookRepo,
		categoryRepo: categoryRepo,
	}
}

// GET /booksの入力DTO
type BrowseBooksInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	Condition  string
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

type BookListOutput struct {
	Items []model.Book `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

func validCondition(s string) bool {
	switch model.BookCondition(s) {
	case model.ConditionNew, model.ConditionExcellent, model.ConditionGood,
		model.ConditionFair, model.ConditionPoor:
		return true
	}
	return false
}

// 公開側の一覧。approvedの本だけが出る。
func (u *BookUsecase) Browse(ctx context.Context, in BrowseBooksInput) (BookListOutput, error) {
	if in.Page < 1 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.Condition != "" && !validCondition(in.Condition) {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid condition")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "newest", "oldest", "price_asc", "price_desc", "title_asc", "title_desc":
	default:
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.bookRepo.ListBrowse(ctx, repo.BookListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		Condition:  in.Condition,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Sort:       in.Sort,
	})
	if err != nil {
		return BookListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return BookListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 公開側の詳細。approved以外は存在しない扱い。閲覧数を+1する。
func (u *BookUsecase) GetDetail(ctx context.Context, bookID int64) (model.Book, error) {
	if bookID <= 0 {
		return model.Book{}, NewHTTPError(http.StatusBadRequest, "invalid book id")
	}

	b, err := u.bookRepo.FindByID(ctx, bookID)
	if err == repo.ErrNotFound {
		return model.Book{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Book{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if b.Status != model.BookStatusApproved {
		return model.Book{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	//閲覧数は失敗しても詳細は返す
	if err := u.bookRepo.IncrementViews(ctx, bookID); err == nil {
		b.ViewsCount++
	}

	return b, nil
}

func (u *BookUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats, err := u.categoryRepo.List(ctx)
	if err != nil {
		return []model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cats, nil
}

type SellBookInput struct {
	Title       string
	Author      string
	ISBN        string
	Description string
	Price       int64
	Condition   string
	CategoryID  int64
}

func (u *BookUsecase) validateSellInput(ctx context.Context, in SellBookInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if strings.TrimSpace(in.Author) == "" {
		return NewHTTPError(http.StatusBadRequest, "author required")
	}
	if in.Price <= 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be > 0")
	}
	if !validCondition(in.Condition) {
		return NewHTTPError(http.StatusBadRequest, "invalid condition")
	}
	if in.CategoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}

	//カテゴリの存在確認
	if _, err := u.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 出品。承認されるまでpendingのまま公開されない。
func (u *BookUsecase) Sell(ctx context.Context, sellerID int64, in SellBookInput) (model.Book, error) {
	if sellerID <= 0 {
		return model.Book{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.validateSellInput(ctx, in); err != nil {
		return model.Book{}, err
	}

	b, err := u.bookRepo.Create(ctx, model.Book{
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		ISBN:        strings.TrimSpace(in.ISBN),
		Description: in.Description,
		Price:       in.Price,
		Condition:   model.BookCondition(in.Condition),
		SellerID:    sellerID,
		CategoryID:  in.CategoryID,
		Status:      model.BookStatusPending,
	})
	if err != nil {
		return model.Book{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return b, nil
}

// 出品者による編集。編集すると再承認待ち（pending）に戻る。
func (u *BookUsecase) UpdateOwn(ctx context.Context, sellerID int64, bookID int64, in SellBookInput) error {
	if sellerID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid book id")
	}

	b, err := u.bookRepo.FindByID(ctx, bookID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//他人の出品は「存在しない扱い」にする
	if b.SellerID != sellerID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	//売却済みは編集できない
	if b.Status == model.BookStatusSold {
		return NewHTTPError(http.StatusBadRequest, "book already sold")
	}

	if err := u.validateSellInput(ctx, in); err != nil {
		return err
	}

	b.Title = strings.TrimSpace(in.Title)
	b.Author = strings.TrimSpace(in.Author)
	b.ISBN = strings.TrimSpace(in.ISBN)
	b.Description = in.Description
	b.Price = in.Price
	b.Condition = model.BookCondition(in.Condition)
	b.CategoryID = in.CategoryID
	//編集後は再承認が必要
	b.Status = model.BookStatusPending

	if err := u.bookRepo.Update(ctx, b); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 出品者による取り下げ。売却済みは消せない。
func (u *BookUsecase) DeleteOwn(ctx context.Context, sellerID int64, bookID int64) error {
	if sellerID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if bookID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid book id")
	}

	b, err := u.bookRepo.FindByID(ctx, bookID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if b.SellerID != sellerID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if b.Status == model.BookStatusSold {
		return NewHTTPError(http.StatusBadRequest, "book already sold")
	}

	if err := u.bookRepo.DeleteByID(ctx, bookID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 自分の出品一覧（全ステータス）
func (u *BookUsecase) ListOwn(ctx context.Context, sellerID int64, page int, limit int) (BookListOutput, error) {
	if sellerID <= 0 {
		return BookListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return BookListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.bookRepo.ListBySellerID(ctx, sellerID, page, limit)
	if err != nil {
		return BookListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return BookListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// 画像アップロード後にパスを反映する（カバー or 追加画像）。
func (u *BookUsecase) SetImages(ctx context.Context, sellerID int64, bookID int64, coverImage string, additionalImages string) error {
	if sellerID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	b, err := u.bookRepo.FindByID(ctx, bookID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if b.SellerID != sellerID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if coverImage != "" {
		b.CoverImage = coverImage
	}
	if additionalImages != "" {
		b.AdditionalImages = additionalImages
	}

	if err := u.bookRepo.Update(ctx, b); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
