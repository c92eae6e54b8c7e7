package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"bookmarket/internal/config"
	repo "bookmarket/internal/repository"
	"bookmarket/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type ReportRepoMock struct{ mock.Mock }

func (m *ReportRepoMock) Totals(ctx context.Context, f repo.ReportFilter) (repo.ReportTotals, error) {
	args := m.Called(ctx, f)
	t, _ := args.Get(0).(repo.ReportTotals)
	return t, args.Error(1)
}

func (m *ReportRepoMock) DailyBreakdown(ctx context.Context, f repo.ReportFilter) ([]repo.DailySales, error) {
	args := m.Called(ctx, f)
	d, _ := args.Get(0).([]repo.DailySales)
	return d, args.Error(1)
}

func testReportConfig() config.Config {
	return config.Config{
		CommissionRateAdmin:  0.30,
		CommissionRateSeller: 0.05,
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// 1注文で500円の本を2冊 → 売上1000、平均注文額1000、1注文あたり2冊
func TestReportUsecase_Generate_KPIs(t *testing.T) {
	ctx := context.Background()

	rRepo := new(ReportRepoMock)
	uc := usecase.NewReportUsecase(testReportConfig(), rRepo)

	rRepo.On("Totals", mock.Anything, mock.Anything).
		Return(repo.ReportTotals{TotalOrders: 1, TotalBooksSold: 2, TotalSales: 1000}, nil)
	rRepo.On("DailyBreakdown", mock.Anything, mock.Anything).
		Return([]repo.DailySales{{Day: "2026-03-01", Orders: 1, Units: 2, Sales: 1000}}, nil)

	out, err := uc.Generate(ctx, usecase.ReportInput{
		From: day("2026-03-01"),
		To:   day("2026-03-01"),
	})
	assert.NoError(t, err)

	assert.Equal(t, int64(1), out.TotalOrders)
	assert.Equal(t, int64(2), out.TotalBooksSold)
	assert.Equal(t, int64(1000), out.TotalSales)
	assert.Equal(t, "1000.00", out.AvgOrderValue)
	assert.Equal(t, "2.00", out.UnitsPerOrder)

	//全体レポートなので手数料は30%
	assert.Equal(t, "0.30", out.CommissionRate)
	assert.Equal(t, "300.00", out.Commission)
}

// 日数は両端を含む（3/1〜3/10は10日）
func TestReportUsecase_Generate_InclusiveDayCount(t *testing.T) {
	ctx := context.Background()

	rRepo := new(ReportRepoMock)
	uc := usecase.NewReportUsecase(testReportConfig(), rRepo)

	rRepo.On("Totals", mock.Anything, mock.Anything).
		Return(repo.ReportTotals{TotalOrders: 5, TotalBooksSold: 5, TotalSales: 2500}, nil)
	rRepo.On("DailyBreakdown", mock.Anything, mock.Anything).
		Return([]repo.DailySales{}, nil)

	out, err := uc.Generate(ctx, usecase.ReportInput{
		From: day("2026-03-01"),
		To:   day("2026-03-10"),
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.Days)
	assert.Equal(t, "0.50", out.AvgDailyOrders)
	assert.Equal(t, "250.00", out.AvgDailySales)
}

// DBへ渡す終端は日末まで広がる（終端日の日中の注文を落とさない）
func TestReportUsecase_Generate_WidensEndDateForFilter(t *testing.T) {
	ctx := context.Background()

	rRepo := new(ReportRepoMock)
	uc := usecase.NewReportUsecase(testReportConfig(), rRepo)

	endOfDay := day("2026-03-15").AddDate(0, 0, 1).Add(-time.Nanosecond)
	rRepo.On("Totals", mock.Anything, mock.MatchedBy(func(f repo.ReportFilter) bool {
		return f.From.Equal(day("2026-03-01")) && f.To.Equal(endOfDay)
	})).Return(repo.ReportTotals{}, nil)
	rRepo.On("DailyBreakdown", mock.Anything, mock.Anything).
		Return([]repo.DailySales{}, nil)

	_, err := uc.Generate(ctx, usecase.ReportInput{
		From: day("2026-03-01"),
		To:   day("2026-03-15"),
	})
	assert.NoError(t, err)

	rRepo.AssertExpectations(t)
}

func TestReportUsecase_Generate_ZeroOrders(t *testing.T) {
	ctx := context.Background()

	rRepo := new(ReportRepoMock)
	uc := usecase.NewReportUsecase(testReportConfig(), rRepo)

	rRepo.On("Totals", mock.Anything, mock.Anything).
		Return(repo.ReportTotals{}, nil)
	rRepo.On("DailyBreakdown", mock.Anything, mock.Anything).
		Return([]repo.DailySales{}, nil)

	out, err := uc.Generate(ctx, usecase.ReportInput{
		From: day("2026-03-01"),
		To:   day("2026-03-01"),
	})
	assert.NoError(t, err)

	//0除算にならない
	assert.Equal(t, "0.00", out.AvgOrderValue)
	assert.Equal(t, "0.00", out.UnitsPerOrder)
	assert.Equal(t, "0.00", out.Commission)
}

// 出品者スコープは手数料5%
func TestReportUsecase_Generate_SellerScopeUsesSellerRate(t *testing.T) {
	ctx := context.Background()

	rRepo := new(ReportRepoMock)
	uc := usecase.NewReportUsecase(testReportConfig(), rRepo)

	sellerID := int64(7)
	rRepo.On("Totals", mock.Anything, mock.MatchedBy(func(f repo.ReportFilter) bool {
		return f.SellerID != nil && *f.SellerID == sellerID
	})).Return(repo.ReportTotals{TotalOrders: 2, TotalBooksSold: 2, TotalSales: 2000}, nil)
	rRepo.On("DailyBreakdown", mock.Anything, mock.Anything).
		Return([]repo.DailySales{}, nil)

	out, err := uc.Generate(ctx, usecase.ReportInput{
		From:     day("2026-03-01"),
		To:       day("2026-03-02"),
		SellerID: &sellerID,
	})
	assert.NoError(t, err)
	assert.Equal(t, "0.05", out.CommissionRate)
	assert.Equal(t, "100.00", out.Commission)
}

func TestReportUsecase_Generate_InvalidRange(t *testing.T) {
	uc := usecase.NewReportUsecase(testReportConfig(), new(ReportRepoMock))

	_, err := uc.Generate(context.Background(), usecase.ReportInput{
		From: day("2026-03-10"),
		To:   day("2026-03-01"),
	})
	assertErrContains(t, err, "to must be >= from")
}

// =====================
// Export tests
// =====================

func sampleReport() usecase.SalesReport {
	return usecase.SalesReport{
		From:           "2026-03-01",
		To:             "2026-03-01",
		Days:           1,
		TotalOrders:    1,
		TotalBooksSold: 2,
		TotalSales:     1000,
		AvgOrderValue:  "1000.00",
		UnitsPerOrder:  "2.00",
		AvgDailyOrders: "1.00",
		AvgDailySales:  "1000.00",
		CommissionRate: "0.30",
		Commission:     "300.00",
		Daily:          []repo.DailySales{{Day: "2026-03-01", Orders: 1, Units: 2, Sales: 1000}},
	}
}

func TestReportUsecase_Export_CSV(t *testing.T) {
	uc := usecase.NewReportUsecase(testReportConfig(), new(ReportRepoMock))

	body, contentType, err := uc.Export(sampleReport(), "csv")
	assert.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	s := string(body)
	assert.True(t, strings.Contains(s, "total_sales,1000"))
	assert.True(t, strings.Contains(s, "2026-03-01,1,2,1000"))
}

// excel/pdfは中身がCSVでcontent typeだけ専用のもの
func TestReportUsecase_Export_ExcelAndPdfFallBackToCSV(t *testing.T) {
	uc := usecase.NewReportUsecase(testReportConfig(), new(ReportRepoMock))

	cases := map[string]string{
		"excel": "application/vnd.ms-excel",
		"pdf":   "application/pdf",
	}
	for format, wantType := range cases {
		body, contentType, err := uc.Export(sampleReport(), format)
		assert.NoError(t, err)
		assert.Equal(t, wantType, contentType)
		assert.True(t, strings.Contains(string(body), "metric,value"))
	}
}

func TestReportUsecase_Export_HTML(t *testing.T) {
	uc := usecase.NewReportUsecase(testReportConfig(), new(ReportRepoMock))

	body, contentType, err := uc.Export(sampleReport(), "html")
	assert.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", contentType)
	assert.True(t, strings.Contains(string(body), "<h1>Sales Report</h1>"))
}

func TestReportUsecase_Export_InvalidFormat(t *testing.T) {
	uc := usecase.NewReportUsecase(testReportConfig(), new(ReportRepoMock))

	_, _, err := uc.Export(sampleReport(), "xml")
	assertErrContains(t, err, "invalid format")
}
