package chart

import (
	"net/http"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/identity"
	"github.com/SlpAus/nutrition-ledger-backend/internal/meal"
	"github.com/gin-gonic/gin"
)

// parseChartQuery 解析图表接口公共的range/date查询参数。
func parseChartQuery(c *gin.Context) (Range, time.Time, bool) {
	rng := Range(c.DefaultQuery("range", string(RangeWeek)))
	if !ValidRange(rng) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的图表粒度: " + string(rng)})
		return "", time.Time{}, false
	}

	ref := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的日期: " + raw})
			return "", time.Time{}, false
		}
		ref = parsed
	}
	return rng, ref, true
}

// GetChartHandler 返回给定窗口的聚合图表桶。
func GetChartHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	rng, ref, ok := parseChartQuery(c)
	if !ok {
		return
	}

	start := WindowStart(rng, ref)
	facts, err := meal.FactsInRange(userID, start, windowEnd(rng, start))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取餐食账本失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"range":   rng,
		"start":   start.Format("2006-01-02"),
		"buckets": Aggregate(rng, ref, facts),
	})
}

// StepChartHandler 把窗口向前或向后移动一个单位并返回新的参考日期。
// 越过当前时刻的前进是无操作，返回原参考日期。
func StepChartHandler(c *gin.Context) {
	if _, ok := identity.CurrentUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	rng, ref, ok := parseChartQuery(c)
	if !ok {
		return
	}

	dir := 1
	if c.DefaultQuery("dir", "forward") == "backward" {
		dir = -1
	}

	next := Step(rng, ref, dir)
	c.JSON(http.StatusOK, gin.H{
		"range": rng,
		"date":  next.Format("2006-01-02"),
		"start": WindowStart(rng, next).Format("2006-01-02"),
		"moved": !next.Equal(ref),
	})
}
