package meal

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/identity"
	"github.com/gin-gonic/gin"
)

// ManualRequestBody 定义了手动录入一餐的JSON结构。
type ManualRequestBody struct {
	Name        string       `json:"name" binding:"required"`
	Calories    int          `json:"calories" binding:"required,gte=0"`
	ProteinG    float64      `json:"protein_g" binding:"gte=0"`
	CarbsG      float64      `json:"carbs_g" binding:"gte=0"`
	FatG        float64      `json:"fat_g" binding:"gte=0"`
	Timestamp   *time.Time   `json:"timestamp"`
	PortionSize float64      `json:"portion_size"`
	PortionUnit string       `json:"portion_unit"`
	Ingredients []Ingredient `json:"ingredients"`
}

// LogManualHandler 处理手动录入。
func LogManualHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	var body ManualRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	in := ManualInput{
		Name:        body.Name,
		Calories:    body.Calories,
		ProteinG:    body.ProteinG,
		CarbsG:      body.CarbsG,
		FatG:        body.FatG,
		PortionSize: body.PortionSize,
		PortionUnit: body.PortionUnit,
		Ingredients: body.Ingredients,
	}
	if body.Timestamp != nil {
		in.Timestamp = *body.Timestamp
	}

	f, err := LogManual(userID, in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "记录餐食失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, f)
}

// BarcodeRequestBody 定义了条码录入的JSON结构。
type BarcodeRequestBody struct {
	Barcode     string  `json:"barcode" binding:"required"`
	PortionSize float64 `json:"portion_size"`
}

// LogBarcodeHandler 处理条码录入。
func LogBarcodeHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	var body BarcodeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	f, err := LogBarcode(c.Request.Context(), userID, body.Barcode, body.PortionSize)
	if err != nil {
		switch {
		case errors.Is(err, ErrCollaboratorUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "商品库服务未配置"})
		case errors.Is(err, ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "商品未找到"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "条码录入失败: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, f)
}

// AnalysisRequestBody 定义了图像分析录入的JSON结构。
type AnalysisRequestBody struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	Description string `json:"description"`
}

// LogAnalysisHandler 处理图像分析录入。
// 请求会阻塞直到分析完成或轮询预算耗尽；超时不提交任何记录。
func LogAnalysisHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	var body AnalysisRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	image, err := base64.StdEncoding.DecodeString(body.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的图像编码"})
		return
	}

	f, err := LogAnalysis(c.Request.Context(), userID, image, body.Description)
	if err != nil {
		switch {
		case errors.Is(err, ErrCollaboratorUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "分析服务未配置"})
		case errors.Is(err, ErrAnalysisTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "餐食分析超时，请稍后重试"})
		case errors.Is(err, ErrAnalysisFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "餐食分析失败，请稍后重试"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "分析录入失败: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, f)
}

// ListMealsHandler 返回该用户的餐食账本（时间倒序）。
func ListMealsHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	facts, err := ListByUser(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取餐食账本失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, facts)
}

// DeleteMealHandler 整条删除一条餐食记录。
func DeleteMealHandler(c *gin.Context) {
	userID, ok := identity.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少用户身份"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的记录ID"})
		return
	}

	if err := DeleteMeal(userID, uint(id)); err != nil {
		if errors.Is(err, ErrMealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "餐食记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除餐食记录失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}
