package repository

import (
	"context"

	"bookmarket/internal/domain/model"
	repo "bookmarket/internal/repository"

	"gorm.io/gorm"
)

type ReportGormRepository struct {
	db *gorm.DB
}

func NewReportGormRepository(db *gorm.DB) *ReportGormRepository {
	return &ReportGormRepository{db: db}
}

// 共通の絞り込み。キャンセル済み注文は集計に入れない。
func (r *ReportGormRepository) base(ctx context.Context, f repo.ReportFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Where("o.status <> ?", model.OrderStatusCancelled).
		Where("o.created_at >= ? AND o.created_at <= ?", f.From, f.To)

	if f.SellerID != nil {
		q = q.Where("oi.seller_id = ?", *f.SellerID)
	}
	return q
}

func (r *ReportGormRepository) Totals(ctx context.Context, f repo.ReportFilter) (repo.ReportTotals, error) {
	var row struct {
		TotalOrders    int64
		TotalBooksSold int64
		TotalSales     int64
	}

	err := r.base(ctx, f).
		Select("COUNT(DISTINCT o.id) AS total_orders, " +
			"COALESCE(SUM(oi.quantity), 0) AS total_books_sold, " +
			"COALESCE(SUM(oi.quantity * oi.price_per_item), 0) AS total_sales").
		Scan(&row).Error
	if err != nil {
		return repo.ReportTotals{}, err
	}

	return repo.ReportTotals{
		TotalOrders:    row.TotalOrders,
		TotalBooksSold: row.TotalBooksSold,
		TotalSales:     row.TotalSales,
	}, nil
}

func (r *ReportGormRepository) DailyBreakdown(ctx context.Context, f repo.ReportFilter) ([]repo.DailySales, error) {
	var rows []struct {
		Day    string
		Orders int64
		Units  int64
		Sales  int64
	}

	err := r.base(ctx, f).
		Select("DATE(o.created_at) AS day, "+
			"COUNT(DISTINCT o.id) AS orders, "+
			"COALESCE(SUM(oi.quantity), 0) AS units, "+
			"COALESCE(SUM(oi.quantity * oi.price_per_item), 0) AS sales").
		Group("DATE(o.created_at)").
		Order("day asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.DailySales{}, err
	}

	out := make([]repo.DailySales, 0, len(rows))
	for _, row := range rows {
		out = append(out, repo.DailySales{
			Day:    row.Day,
			Orders: row.Orders,
			Units:  row.Units,
			Sales:  row.Sales,
		})
	}
	return out, nil
}
