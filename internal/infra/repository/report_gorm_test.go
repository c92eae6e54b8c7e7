package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookmarket/internal/config"
	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedOrder(t *testing.T, db *gorm.DB, userID int64, status model.OrderStatus, createdAt time.Time, items []model.OrderItem) model.Order {
	o := model.Order{
		OrderNumber: fmt.Sprintf("ORD-%s-%05d", createdAt.Format("20060102150405"), userID),
		UserID:      userID,
		Status:      status,
		CreatedAt:   createdAt,
	}
	for _, it := range items {
		o.TotalAmount += it.Quantity * it.PricePerItem
	}
	require.NoError(t, db.Create(&o).Error)

	for _, it := range items {
		it.OrderID = o.ID
		require.NoError(t, db.Create(&it).Error)
	}
	return o
}

func reportRange(fromDay string, toDay string) (time.Time, time.Time) {
	from, _ := time.Parse("2006-01-02", fromDay)
	to, _ := time.Parse("2006-01-02", toDay)
	//終端は日末まで含める
	return from, to.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func TestReportGormRepository_Totals(t *testing.T) {
	db := setupTestDB(t)
	r := NewReportGormRepository(db)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	//1注文に明細2行。注文数はDISTINCTで1とカウントされる。
	seedOrder(t, db, 1, model.OrderStatusDelivered, day1, []model.OrderItem{
		{BookID: 1, SellerID: 7, TitleSnapshot: "A", Quantity: 1, PricePerItem: 500},
		{BookID: 2, SellerID: 8, TitleSnapshot: "B", Quantity: 2, PricePerItem: 300},
	})
	seedOrder(t, db, 2, model.OrderStatusPending, day2, []model.OrderItem{
		{BookID: 3, SellerID: 7, TitleSnapshot: "C", Quantity: 1, PricePerItem: 1000},
	})

	from, to := reportRange("2026-03-01", "2026-03-31")
	totals, err := r.Totals(ctx, repo.ReportFilter{From: from, To: to})
	require.NoError(t, err)

	assert.Equal(t, int64(2), totals.TotalOrders)
	assert.Equal(t, int64(4), totals.TotalBooksSold)
	assert.Equal(t, int64(2100), totals.TotalSales)
}

// キャンセル済み注文は売上に入らない
func TestReportGormRepository_Totals_ExcludesCancelled(t *testing.T) {
	db := setupTestDB(t)
	r := NewReportGormRepository(db)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	seedOrder(t, db, 1, model.OrderStatusDelivered, day1, []model.OrderItem{
		{BookID: 1, SellerID: 7, TitleSnapshot: "A", Quantity: 1, PricePerItem: 500},
	})
	seedOrder(t, db, 2, model.OrderStatusCancelled, day1, []model.OrderItem{
		{BookID: 2, SellerID: 7, TitleSnapshot: "B", Quantity: 1, PricePerItem: 9999},
	})

	from, to := reportRange("2026-03-01", "2026-03-31")
	totals, err := r.Totals(ctx, repo.ReportFilter{From: from, To: to})
	require.NoError(t, err)

	assert.Equal(t, int64(1), totals.TotalOrders)
	assert.Equal(t, int64(500), totals.TotalSales)
}

func TestReportGormRepository_Totals_SellerScope(t *testing.T) {
	db := setupTestDB(t)
	r := NewReportGormRepository(db)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	seedOrder(t, db, 1, model.OrderStatusDelivered, day1, []model.OrderItem{
		{BookID: 1, SellerID: 7, TitleSnapshot: "A", Quantity: 1, PricePerItem: 500},
		{BookID: 2, SellerID: 8, TitleSnapshot: "B", Quantity: 1, PricePerItem: 300},
	})

	sellerID := int64(7)
	from, to := reportRange("2026-03-01", "2026-03-31")
	totals, err := r.Totals(ctx, repo.ReportFilter{From: from, To: to, SellerID: &sellerID})
	require.NoError(t, err)

	assert.Equal(t, int64(1), totals.TotalOrders)
	assert.Equal(t, int64(1), totals.TotalBooksSold)
	assert.Equal(t, int64(500), totals.TotalSales)
}

func TestReportGormRepository_Totals_OutOfRangeExcluded(t *testing.T) {
	db := setupTestDB(t)
	r := NewReportGormRepository(db)
	ctx := context.Background()

	inRange := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	outOfRange := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	seedOrder(t, db, 1, model.OrderStatusDelivered, inRange, []model.OrderItem{
		{BookID: 1, SellerID: 7, TitleSnapshot: "A", Quantity: 1, PricePerItem: 500},
	})
	seedOrder(t, db, 2, model.OrderStatusDelivered, outOfRange, []model.OrderItem{
		{BookID: 2, SellerID: 7, TitleSnapshot: "B", Quantity: 1, PricePerItem: 800},
	})

	from, to := reportRange("2026-03-01", "2026-03-31")
	totals, err := r.Totals(ctx, repo.ReportFilter{From: from, To: to})
	require.NoError(t, err)

	assert.Equal(t, int64(1), totals.TotalOrders)
	assert.Equal(t, int64(500), totals.TotalSales)
}

// 期間は両端を含む。終端日の日中の注文もusecase経由の集計に入る。
func TestReportUsecase_Generate_IncludesEndDateOrders(t *testing.T) {
	db := setupTestDB(t)
	r := NewReportGormRepository(db)
	ctx := context.Background()

	seedOrder(t, db, 1, model.OrderStatusDelivered, time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), []model.OrderItem{
		{BookID: 1, SellerID: 7, TitleSnapshot: "A", Quantity: 2, PricePerItem: 500},
	})

	from, to, err := usecase.ParseReportRange("2026-03-01", "2026-03-15")
	require.NoError(t, err)

	uc := usecase.NewReportUsecase(config.Config{CommissionRateAdmin: 0.30, CommissionRateSeller: 0.05}, r)
	report, err := uc.Generate(ctx, usecase.ReportInput{From: from, To: to})
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.TotalOrders)
	assert.Equal(t, int64(2), report.TotalBooksSold)
	assert.Equal(t, int64(1000), report.TotalSales)
	assert.Equal(t, int64(15), report.Days)
}

func TestReportGormRepository_DailyBreakdown(t *testing.T) {
	db := setupTestDB(t)
	r := NewReportGormRepository(db)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	seedOrder(t, db, 1, model.OrderStatusDelivered, day1, []model.OrderItem{
		{BookID: 1, SellerID: 7, TitleSnapshot: "A", Quantity: 1, PricePerItem: 500},
	})
	seedOrder(t, db, 2, model.OrderStatusDelivered, day1, []model.OrderItem{
		{BookID: 2, SellerID: 7, TitleSnapshot: "B", Quantity: 2, PricePerItem: 300},
	})
	seedOrder(t, db, 3, model.OrderStatusDelivered, day2, []model.OrderItem{
		{BookID: 3, SellerID: 7, TitleSnapshot: "C", Quantity: 1, PricePerItem: 1000},
	})

	from, to := reportRange("2026-03-01", "2026-03-31")
	daily, err := r.DailyBreakdown(ctx, repo.ReportFilter{From: from, To: to})
	require.NoError(t, err)

	require.Equal(t, 2, len(daily))
	assert.Equal(t, "2026-03-01", daily[0].Day)
	assert.Equal(t, int64(2), daily[0].Orders)
	assert.Equal(t, int64(3), daily[0].Units)
	assert.Equal(t, int64(1100), daily[0].Sales)

	assert.Equal(t, "2026-03-02", daily[1].Day)
	assert.Equal(t, int64(1), daily[1].Orders)
	assert.Equal(t, int64(1000), daily[1].Sales)
}
