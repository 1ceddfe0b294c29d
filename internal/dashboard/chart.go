package dashboard

import (
	"sort"
	"strconv"
	"time"

	"interiors-erp/internal/auth"
	"interiors-erp/internal/billing"
	"interiors-erp/internal/httpx"
	"interiors-erp/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ChartPoint struct {
	Label      string  `json:"label"` // day, week start or month start
	Invoiced   float64 `json:"invoiced"`
	LabourPaid float64 `json:"labourPaid"`
}

type ChartTotals struct {
	Invoiced   float64 `json:"invoiced"`
	LabourPaid float64 `json:"labourPaid"`
}

type ChartResponse struct {
	Period      string       `json:"period"` // daily | weekly | monthly
	From        string       `json:"from"`
	To          string       `json:"to"`
	Points      []ChartPoint `json:"points"`
	GrandTotals ChartTotals  `json:"grandTotals"`
}

// chartWindow resolves the period, bucket count and [start, end] date range
// ending today. Unknown periods fall back to daily.
func chartWindow(period string, count int, now time.Time) (string, time.Time, time.Time) {
	if count <= 0 {
		switch period {
		case "weekly":
			count = 8
		case "monthly":
			count = 12
		default:
			count = 7
		}
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	switch period {
	case "weekly":
		end := today
		return period, bucketStart(period, end.AddDate(0, 0, -7*(count-1))), end
	case "monthly":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		start := first.AddDate(0, -(count - 1), 0)
		return period, start, first.AddDate(0, 1, -1)
	default:
		return "daily", today.AddDate(0, 0, -(count - 1)), today
	}
}

// bucketStart truncates t to its bucket, weeks starting on Monday as
// Postgres date_trunc('week') does.
func bucketStart(period string, t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch period {
	case "weekly":
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case "monthly":
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

type bucketAgg struct {
	Invoiced   float64
	LabourPaid float64
}

func chartPoints(buckets map[time.Time]*bucketAgg) ([]ChartPoint, ChartTotals) {
	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	points := make([]ChartPoint, 0, len(keys))
	var grand ChartTotals
	for _, k := range keys {
		b := buckets[k]
		points = append(points, ChartPoint{Label: k.Format(httpx.DateLayout), Invoiced: b.Invoiced, LabourPaid: b.LabourPaid})
		grand.Invoiced += b.Invoiced
		grand.LabourPaid += b.LabourPaid
	}
	return points, grand
}

// GET /api/dashboard/chart?period=daily&count=7
// Invoiced net payable and labour payments per day, week or month.
func ChartHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		count := 0
		if raw := c.Query("count"); raw != "" {
			if count, err = strconv.Atoi(raw); err != nil || count <= 0 || count > 366 {
				return fiber.NewError(fiber.StatusBadRequest, "count must be between 1 and 366")
			}
		}
		period, start, end := chartWindow(c.Query("period", "daily"), count, time.Now())
		until := end.AddDate(0, 0, 1)

		buckets := make(map[time.Time]*bucketAgg)
		at := func(t time.Time) *bucketAgg {
			k := bucketStart(period, t)
			b, ok := buckets[k]
			if !ok {
				b = &bucketAgg{}
				buckets[k] = b
			}
			return b
		}

		// net payable is only defined by the calculator, so bills are summed here
		var bills []models.Bill
		err = db.Preload("Items").
			Where("company_id = ? AND bill_type = ? AND status <> ? AND bill_date >= ? AND bill_date < ?",
				user.CompanyID, models.BillInvoice, models.BillCancelled, start, until).
			Find(&bills).Error
		if err != nil {
			return err
		}
		for i := range bills {
			at(bills[i].BillDate).Invoiced += billing.Calculate(billing.InputFromBill(&bills[i])).NetPayable
		}

		type row struct {
			Date  time.Time
			Total float64
		}
		var rows []row
		err = db.Table("labour_payments").
			Select("labour_payments.date::date AS date, SUM(labour_payments.amount) AS total").
			Joins("JOIN labours ON labours.id = labour_payments.labour_id").
			Where("labours.company_id = ? AND labour_payments.date >= ? AND labour_payments.date < ?", user.CompanyID, start, until).
			Group("labour_payments.date::date").
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, r := range rows {
			at(r.Date).LabourPaid += r.Total
		}

		points, grand := chartPoints(buckets)
		for i := range points {
			points[i].Invoiced = billing.Totals{NetPayable: points[i].Invoiced}.Rounded().NetPayable
		}
		grand.Invoiced = billing.Totals{NetPayable: grand.Invoiced}.Rounded().NetPayable

		return httpx.OK(c, ChartResponse{
			Period:      period,
			From:        start.Format(httpx.DateLayout),
			To:          end.Format(httpx.DateLayout),
			Points:      points,
			GrandTotals: grand,
		})
	}
}
