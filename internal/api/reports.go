package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/report"
	"github.com/safar/go-pos-store/internal/store"
	"github.com/shopspring/decimal"
)

// defaultReportDays is the window used when a report request omits start.
const defaultReportDays = 30

type summaryResponse struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func toSummaryResponse(summaries []models.DailySummary) []summaryResponse {
	out := make([]summaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, summaryResponse{
			Date:  s.Date.Format(time.DateOnly),
			Total: s.Total,
			Count: s.Count,
		})
	}
	return out
}

// dateRange reads start and end as YYYY-MM-DD. A missing end means today and
// a missing start means defaultReportDays days ending at end.
func (s *Server) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	end := store.TruncateDay(s.now())
	if v := c.Query("end"); v != "" {
		parsed, err := time.Parse(time.DateOnly, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date", "details": err.Error()})
			return time.Time{}, time.Time{}, false
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -(defaultReportDays - 1))
	if v := c.Query("start"); v != "" {
		parsed, err := time.Parse(time.DateOnly, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date", "details": err.Error()})
			return time.Time{}, time.Time{}, false
		}
		start = parsed
	}

	return start, end, true
}

func queryLimit(c *gin.Context) (int, bool) {
	v := c.Query("limit")
	if v == "" {
		return report.DefaultTopProductsLimit, true
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit", "details": v})
		return 0, false
	}
	return limit, true
}

// DailyReport handles GET /api/v1/reports/daily?start=&end=.
func (s *Server) DailyReport(c *gin.Context) {
	start, end, ok := s.dateRange(c)
	if !ok {
		return
	}

	summaries, err := s.reports.DailySummary(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err, "summarize sales")
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(summaries))
}

// PeriodReport handles GET /api/v1/reports/periods?period=week|month.
func (s *Server) PeriodReport(c *gin.Context) {
	period, err := report.ParsePeriod(c.Query("period"))
	if err != nil {
		respondError(c, err, "summarize sales")
		return
	}

	start, end, ok := s.dateRange(c)
	if !ok {
		return
	}

	summaries, err := s.reports.PeriodSummary(c.Request.Context(), period, start, end)
	if err != nil {
		respondError(c, err, "summarize sales")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"period":    period,
		"summaries": toSummaryResponse(summaries),
	})
}

func (s *Server) SaleItemsReport(c *gin.Context) {
	start, end, ok := s.dateRange(c)
	if !ok {
		return
	}

	rows, err := s.store.Sales().SaleItemsBetween(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err, "list sale items")
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) TopProductsReport(c *gin.Context) {
	start, end, ok := s.dateRange(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	top, err := s.reports.TopProducts(c.Request.Context(), start, end, limit)
	if err != nil {
		respondError(c, err, "rank products")
		return
	}
	c.JSON(http.StatusOK, top)
}

func (s *Server) InventoryReport(c *gin.Context) {
	valuation, err := s.reports.Inventory(c.Request.Context())
	if err != nil {
		respondError(c, err, "value inventory")
		return
	}
	c.JSON(http.StatusOK, valuation)
}

func (s *Server) DashboardReport(c *gin.Context) {
	start, end, ok := s.dateRange(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	dash, err := s.reports.Dashboard(c.Request.Context(), start, end, limit)
	if err != nil {
		respondError(c, err, "build dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"start":       start.Format(time.DateOnly),
		"end":         end.Format(time.DateOnly),
		"daily":       toSummaryResponse(dash.Daily),
		"topProducts": dash.TopProducts,
		"inventory":   dash.Inventory,
		"lowStock":    dash.LowStock,
	})
}
