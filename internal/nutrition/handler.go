package nutrition

import (
	"errors"
	"net/http"

	"github.com/SlpAus/nutrition-ledger-backend/internal/identity"
	"github.com/SlpAus/nutrition-ledger-backend/internal/profile"
	"github.com/gin-gonic/gin"
)

// GetTargetsHandler 返回当前目标与手动覆盖旗标。
func GetTargetsHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	t, manual, err := CurrentTargets(userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "尚未完成问卷"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取营养目标失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"targets": t, "manually_edited": manual})
}

// OverrideRequestBody 定义了手动覆盖目标的JSON结构。
type OverrideRequestBody struct {
	Calories int     `json:"calories" binding:"required"`
	ProteinG float64 `json:"protein_g" binding:"required"`
	CarbsG   float64 `json:"carbs_g" binding:"required"`
	FatG     float64 `json:"fat_g" binding:"required"`
}

// SetOverrideHandler 写入手动覆盖目标。
func SetOverrideHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	var body OverrideRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	t := Targets{Calories: body.Calories, ProteinG: body.ProteinG, CarbsG: body.CarbsG, FatG: body.FatG}
	if err := SetOverride(userID, t); err != nil {
		var be *BoundsError
		if errors.As(err, &be) {
			c.JSON(http.StatusBadRequest, gin.H{"error": be.Error(), "field": be.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入覆盖目标失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"targets": t, "manually_edited": true})
}

// RecalculateHandler 放弃手动覆盖并重算：删除覆盖行后立刻回到自动计算值。
func RecalculateHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	if err := ClearOverride(userID); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "尚未完成问卷"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "重算营养目标失败: " + err.Error()})
		return
	}

	t, manual, err := CurrentTargets(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取营养目标失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"targets": t, "manually_edited": manual})
}

// GetProgressHandler 返回体重目标进度。
func GetProgressHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	gp, err := GoalProgressFor(userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "尚未完成问卷"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取目标进度失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gp)
}
