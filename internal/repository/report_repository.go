package repository

import (
	"context"
	"time"
)

// 集計の範囲。SellerIDがあれば出品者スコープ、なければ全体。
type ReportFilter struct {
	From     time.Time
	To       time.Time
	SellerID *int64
}

// 期間全体の生の集計値。派生KPIはusecase側で計算する。
type ReportTotals struct {
	TotalOrders    int64
	TotalBooksSold int64
	TotalSales     int64
}

// 日別の内訳1行
type DailySales struct {
	Day    string
	Orders int64
	Units  int64
	Sales  int64
}

// 注文・明細行からSQL集計でKPIの元データを出す。
// キャッシュは持たない。毎回再集計する。
type ReportRepository interface {
	Totals(ctx context.Context, f ReportFilter) (ReportTotals, error)
	DailyBreakdown(ctx context.Context, f ReportFilter) ([]DailySales, error)
}
