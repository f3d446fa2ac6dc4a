package weight

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/identity"
	"github.com/gin-gonic/gin"
)

// RecordRequestBody 定义了记录体重时请求体的JSON结构。
type RecordRequestBody struct {
	WeightKG  float64    `json:"weight_kg" binding:"required,gt=0"`
	Timestamp *time.Time `json:"timestamp"`
}

// RecordWeightHandler 处理新的体重记录。
func RecordWeightHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	var body RecordRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	var at time.Time
	if body.Timestamp != nil {
		at = *body.Timestamp
	}

	s, err := RecordWeight(userID, body.WeightKG, at)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "记录体重失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, s)
}

// ListWeightHandler 返回该用户的体重账本（时间倒序）。
func ListWeightHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	samples, err := ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取体重账本失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, samples)
}

// DeleteWeightHandler 删除一条体重样本。
func DeleteWeightHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的样本ID"})
		return
	}

	if err := DeleteSample(userID, uint(id)); err != nil {
		if errors.Is(err, ErrSampleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "体重记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除体重样本失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}
