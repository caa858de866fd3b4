package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	dbpkg "beaconmarket/db"
	"beaconmarket/models"
	"beaconmarket/tools"

	"github.com/gin-gonic/gin"
)

const maxEventsPage = 500

// GET /api/events (admin)
// Query params:
// - status=pending|processing|done|ignored|failed (optional)
// - recipient=phone (optional, any format)
// - q=text (optional) -> searched in text and reply_text
// - limit (optional, default: 200, max: 500)
func GetEvents(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	limit := QueryInt(c, "limit", 200)
	if limit > maxEventsPage {
		limit = maxEventsPage
	}

	tx := db.Order("id desc").Limit(limit)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		tx = tx.Where("status = ?", status)
	}
	if recipient := strings.TrimSpace(c.Query("recipient")); recipient != "" {
		tx = tx.Where("recipient = ?", tools.NormalizePhoneWithCode(recipient, conf.Bot.DialingCode))
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(text) LIKE ? OR LOWER(reply_text) LIKE ?", like, like)
	}

	var events []models.Event
	if err := tx.Find(&events).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"events": events})
}

// GET /api/events/:id (admin)
func GetEventByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	var event models.Event
	if err := db.First(&event, id).Error; err != nil {
		RespondError(c, "event not found", http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"event": event})
}

type statusCountRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type repliesPerDayRow struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// GET /api/events/stats (admin)
// Query params:
// - days (optional, default: 7, max: 90) -> length of the daily series
// Returns the number of events per status and the replies sent per day,
// including days without replies.
func GetEventStats(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db not configured in context", http.StatusInternalServerError)
		return
	}

	days := QueryInt(c, "days", 7)
	if days > 90 {
		days = 90
	}

	var byStatus []statusCountRow
	if err := db.Table("events").
		Select("status, count(*) as count").
		Group("status").
		Order("status asc").
		Scan(&byStatus).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	from := to.AddDate(0, 0, -(days - 1))

	dayExpr := "date(processed_at)"
	dialect := strings.ToLower(db.Dialect().GetName())
	if strings.Contains(dialect, "sqlite") {
		dayExpr = "strftime('%Y-%m-%d', processed_at, 'localtime')"
	} else if strings.Contains(dialect, "postgres") {
		dayExpr = "to_char(date_trunc('day', processed_at), 'YYYY-MM-DD')"
	}

	var rows []repliesPerDayRow
	if err := db.Table("events").
		Select(fmt.Sprintf("%s as day, count(*) as count", dayExpr)).
		Where("status = ? AND processed_at IS NOT NULL AND processed_at >= ? AND processed_at < ?",
			models.EVENT_STATUS_DONE, from, to.AddDate(0, 0, 1)).
		Group("day").
		Order("day asc").
		Scan(&rows).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{
		"by_status": byStatus,
		"from":      from.Format("2006-01-02"),
		"to":        to.Format("2006-01-02"),
		"replies":   fillDailySeries(from, to, rows),
	})
}

// fillDailySeries returns one row per day between from and to, with zero
// for the days missing in rows.
func fillDailySeries(from, to time.Time, rows []repliesPerDayRow) []repliesPerDayRow {
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Day] = r.Count
	}
	var out []repliesPerDayRow
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		day := d.Format("2006-01-02")
		out = append(out, repliesPerDayRow{Day: day, Count: counts[day]})
	}
	return out
}
