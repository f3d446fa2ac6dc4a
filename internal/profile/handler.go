package profile

import (
	"errors"
	"net/http"

	"github.com/SlpAus/nutrition-ledger-backend/internal/identity"
	"github.com/gin-gonic/gin"
)

// OnboardingRequestBody 定义了完成问卷时请求体的JSON结构。
// birth_date与age二选一：历史客户端只上报年龄数字。
type OnboardingRequestBody struct {
	Goal            string  `json:"goal" binding:"required"`
	BirthDate       string  `json:"birth_date"`
	Age             int     `json:"age"`
	Sex             string  `json:"sex" binding:"required"`
	HeightCM        float64 `json:"height_cm" binding:"required,gt=0"`
	WeightKG        float64 `json:"weight_kg" binding:"required,gt=0"`
	ActivityLevel   string  `json:"activity_level" binding:"required"`
	ActivityType    string  `json:"activity_type"`
	ExperienceLevel string  `json:"experience_level"`
	TargetWeightKG  float64 `json:"target_weight_kg"`
	WeeklyRateKG    float64 `json:"weekly_rate_kg"`
}

// CompleteOnboardingHandler 处理问卷完成（账户创建）。
func CompleteOnboardingHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	var body OnboardingRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	p, err := CompleteOnboarding(c.Request.Context(), userID, OnboardingInput{
		Goal:            body.Goal,
		BirthDate:       body.BirthDate,
		Age:             body.Age,
		Sex:             body.Sex,
		HeightCM:        body.HeightCM,
		WeightKG:        body.WeightKG,
		ActivityLevel:   body.ActivityLevel,
		ActivityType:    body.ActivityType,
		ExperienceLevel: body.ExperienceLevel,
		TargetWeightKG:  body.TargetWeightKG,
		WeeklyRateKG:    body.WeeklyRateKG,
	})
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
			return
		}
		// 部分提交已被补偿，对用户呈现单一的失败信息
		c.JSON(http.StatusInternalServerError, gin.H{"error": "账户创建失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, p)
}

// GetProfileHandler 返回当前用户的档案。
func GetProfileHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	p, err := GetByUserID(userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "用户档案不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取档案失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdateRequestBody 定义了设置页部分更新的JSON结构，缺失字段保持不变。
type UpdateRequestBody struct {
	Goal            *string  `json:"goal"`
	BirthDate       *string  `json:"birth_date"`
	Age             *int     `json:"age"`
	Sex             *string  `json:"sex"`
	HeightCM        *float64 `json:"height_cm"`
	ActivityLevel   *string  `json:"activity_level"`
	ActivityType    *string  `json:"activity_type"`
	ExperienceLevel *string  `json:"experience_level"`
	TargetWeightKG  *float64 `json:"target_weight_kg"`
	WeeklyRateKG    *float64 `json:"weekly_rate_kg"`
}

// UpdateProfileHandler 处理设置页对档案的修改。
func UpdateProfileHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	var body UpdateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	p, err := UpdateProfile(userID, UpdateInput{
		Goal:            body.Goal,
		BirthDate:       body.BirthDate,
		Age:             body.Age,
		Sex:             body.Sex,
		HeightCM:        body.HeightCM,
		ActivityLevel:   body.ActivityLevel,
		ActivityType:    body.ActivityType,
		ExperienceLevel: body.ExperienceLevel,
		TargetWeightKG:  body.TargetWeightKG,
		WeeklyRateKG:    body.WeeklyRateKG,
	})
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
			return
		}
		if errors.Is(err, ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "用户档案不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "更新档案失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, p)
}
