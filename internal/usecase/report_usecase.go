package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"bookmarket/internal/config"
	repo "bookmarket/internal/repository"

	"github.com/shopspring/decimal"
)

type ReportUsecase struct {
	cfg        config.Config
	reportRepo repo.ReportRepository
}

func NewReportUsecase(cfg config.Config, reportRepo repo.ReportRepository) *ReportUsecase {
	return &ReportUsecase{cfg: cfg, reportRepo: reportRepo}
}

type ReportInput struct {
	From     time.Time
	To       time.Time
	SellerID *int64 // nilなら全体（管理者）、ありなら出品者スコープ
}

type SalesReport struct {
	From string `json:"from"`
	To   string `json:"to"`
	Days int64  `json:"days"`

	TotalOrders    int64 `json:"total_orders"`
	TotalBooksSold int64 `json:"total_books_sold"`
	TotalSales     int64 `json:"total_sales"`

	AvgOrderValue  string `json:"avg_order_value"`
	UnitsPerOrder  string `json:"units_per_order"`
	AvgDailyOrders string `json:"avg_daily_orders"`
	AvgDailySales  string `json:"avg_daily_sales"`

	CommissionRate string `json:"commission_rate"`
	Commission     string `json:"commission"`

	Daily []repo.DailySales `json:"daily"`
}

// Generate は期間のKPIレポートを作る。
// Cancelledの注文は集計から除外済み（repository側のJOIN条件）。
// 金額の割り算はdecimalで行い、小数2桁で丸める。
func (u *ReportUsecase) Generate(ctx context.Context, in ReportInput) (SalesReport, error) {
	if in.From.IsZero() || in.To.IsZero() {
		return SalesReport{}, NewHTTPError(http.StatusBadRequest, "from and to required")
	}
	if in.To.Before(in.From) {
		return SalesReport{}, NewHTTPError(http.StatusBadRequest, "to must be >= from")
	}
	if in.SellerID != nil && *in.SellerID <= 0 {
		return SalesReport{}, NewHTTPError(http.StatusBadRequest, "invalid seller_id")
	}

	//範囲は両端を含む。終端は日末まで広げてからDBに渡す。
	f := repo.ReportFilter{
		From:     dateOnly(in.From),
		To:       dateOnly(in.To).AddDate(0, 0, 1).Add(-time.Nanosecond),
		SellerID: in.SellerID,
	}

	totals, err := u.reportRepo.Totals(ctx, f)
	if err != nil {
		return SalesReport{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	daily, err := u.reportRepo.DailyBreakdown(ctx, f)
	if err != nil {
		return SalesReport{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//日数は両端を含む
	days := int64(dateOnly(in.To).Sub(dateOnly(in.From)).Hours()/24) + 1

	orders := decimal.NewFromInt(totals.TotalOrders)
	units := decimal.NewFromInt(totals.TotalBooksSold)
	sales := decimal.NewFromInt(totals.TotalSales)
	dayCount := decimal.NewFromInt(days)

	zero := decimal.Zero.StringFixed(2)
	avgOrderValue := zero
	unitsPerOrder := zero
	if totals.TotalOrders > 0 {
		avgOrderValue = sales.Div(orders).StringFixed(2)
		unitsPerOrder = units.Div(orders).StringFixed(2)
	}

	//手数料率はスコープで変わる（全体=管理者、seller_idあり=出品者）
	rate := decimal.NewFromFloat(u.cfg.CommissionRateAdmin)
	if in.SellerID != nil {
		rate = decimal.NewFromFloat(u.cfg.CommissionRateSeller)
	}

	return SalesReport{
		From:           dateOnly(in.From).Format("2006-01-02"),
		To:             dateOnly(in.To).Format("2006-01-02"),
		Days:           days,
		TotalOrders:    totals.TotalOrders,
		TotalBooksSold: totals.TotalBooksSold,
		TotalSales:     totals.TotalSales,
		AvgOrderValue:  avgOrderValue,
		UnitsPerOrder:  unitsPerOrder,
		AvgDailyOrders: orders.Div(dayCount).StringFixed(2),
		AvgDailySales:  sales.Div(dayCount).StringFixed(2),
		CommissionRate: rate.StringFixed(2),
		Commission:     sales.Mul(rate).StringFixed(2),
		Daily:          daily,
	}, nil
}

// Export はレポートを指定フォーマットのバイト列にする。
// excel/pdfは専用バイナリを作らず、表計算ソフトで開けるCSVを返す。
func (u *ReportUsecase) Export(report SalesReport, format string) ([]byte, string, error) {
	switch format {
	case "", "json":
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, "", NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		return b, "application/json", nil
	case "csv", "excel", "pdf":
		b, err := reportCSV(report)
		if err != nil {
			return nil, "", NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		//excel/pdfも中身はCSV。content typeだけ合わせる。
		switch format {
		case "excel":
			return b, "application/vnd.ms-excel", nil
		case "pdf":
			return b, "application/pdf", nil
		}
		return b, "text/csv", nil
	case "html":
		b, err := reportHTML(report)
		if err != nil {
			return nil, "", NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		return b, "text/html; charset=utf-8", nil
	default:
		return nil, "", NewHTTPError(http.StatusBadRequest, "invalid format")
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func reportCSV(r SalesReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"metric", "value"},
		{"from", r.From},
		{"to", r.To},
		{"days", strconv.FormatInt(r.Days, 10)},
		{"total_orders", strconv.FormatInt(r.TotalOrders, 10)},
		{"total_books_sold", strconv.FormatInt(r.TotalBooksSold, 10)},
		{"total_sales", strconv.FormatInt(r.TotalSales, 10)},
		{"avg_order_value", r.AvgOrderValue},
		{"units_per_order", r.UnitsPerOrder},
		{"avg_daily_orders", r.AvgDailyOrders},
		{"avg_daily_sales", r.AvgDailySales},
		{"commission_rate", r.CommissionRate},
		{"commission", r.Commission},
		{},
		{"day", "orders", "units", "sales"},
	}
	for _, d := range r.Daily {
		rows = append(rows, []string{
			d.Day,
			strconv.FormatInt(d.Orders, 10),
			strconv.FormatInt(d.Units, 10),
			strconv.FormatInt(d.Sales, 10),
		})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Sales Report {{.From}} - {{.To}}</title></head>
<body>
<h1>Sales Report</h1>
<p>{{.From}} to {{.To}} ({{.Days}} days)</p>
<table border="1">
<tr><th>Total Orders</th><td>{{.TotalOrders}}</td></tr>
<tr><th>Total Books Sold</th><td>{{.TotalBooksSold}}</td></tr>
<tr><th>Total Sales</th><td>{{.TotalSales}}</td></tr>
<tr><th>Avg Order Value</th><td>{{.AvgOrderValue}}</td></tr>
<tr><th>Units / Order</th><td>{{.UnitsPerOrder}}</td></tr>
<tr><th>Avg Daily Orders</th><td>{{.AvgDailyOrders}}</td></tr>
<tr><th>Avg Daily Sales</th><td>{{.AvgDailySales}}</td></tr>
<tr><th>Commission ({{.CommissionRate}})</th><td>{{.Commission}}</td></tr>
</table>
<h2>Daily</h2>
<table border="1">
<tr><th>Day</th><th>Orders</th><th>Units</th><th>Sales</th></tr>
{{range .Daily}}<tr><td>{{.Day}}</td><td>{{.Orders}}</td><td>{{.Units}}</td><td>{{.Sales}}</td></tr>
{{end}}</table>
</body>
</html>
`))

func reportHTML(r SalesReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseReportRange はクエリの日付文字列を期間に変換する。
// 省略時は直近30日。
func ParseReportRange(fromStr string, toStr string) (time.Time, time.Time, error) {
	//明示指定はUTCでparseされるので、defaultもUTCに揃える
	now := time.Now().UTC()
	from := dateOnly(now.AddDate(0, 0, -29))
	to := dateOnly(now)

	if fromStr != "" {
		t, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		from = t
	}
	if toStr != "" {
		t, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		to = t
	}
	return from, to, nil
}
