package api

import (
	"github.com/SlpAus/nutrition-ledger-backend/internal/chart"
	"github.com/SlpAus/nutrition-ledger-backend/internal/identity"
	"github.com/SlpAus/nutrition-ledger-backend/internal/meal"
	"github.com/SlpAus/nutrition-ledger-backend/internal/nutrition"
	"github.com/SlpAus/nutrition-ledger-backend/internal/profile"
	"github.com/SlpAus/nutrition-ledger-backend/internal/weight"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 档案相关的路由组 /api/profile
		// 问卷入口负责签发身份Cookie，其余路由只加载已有身份
		profileRoutes := api.Group("/profile")
		{
			profileRoutes.POST("", identity.EnsureUserCookieMiddleware(), identity.LoadUserMiddleware(), profile.CompleteOnboardingHandler)
			profileRoutes.GET("", identity.LoadUserMiddleware(), profile.GetProfileHandler)
			profileRoutes.PUT("", identity.LoadUserMiddleware(), profile.UpdateProfileHandler)
		}

		// 体重账本相关的路由组 /api/weight
		weightRoutes := api.Group("/weight", identity.LoadUserMiddleware())
		{
			weightRoutes.POST("", weight.RecordWeightHandler)
			weightRoutes.GET("", weight.ListWeightHandler)
			weightRoutes.DELETE("/:id", weight.DeleteWeightHandler)
		}

		// 餐食账本相关的路由组 /api/meals
		mealRoutes := api.Group("/meals", identity.LoadUserMiddleware())
		{
			mealRoutes.POST("", meal.LogManualHandler)
			mealRoutes.POST("/barcode", meal.LogBarcodeHandler)
			mealRoutes.POST("/analysis", meal.LogAnalysisHandler)
			mealRoutes.GET("", meal.ListMealsHandler)
			mealRoutes.DELETE("/:id", meal.DeleteMealHandler)

			// 图表是餐食账本上的只读聚合视图
			mealRoutes.GET("/chart", chart.GetChartHandler)
			mealRoutes.GET("/chart/step", chart.StepChartHandler)
		}

		// 营养目标相关的路由组 /api/targets
		targetRoutes := api.Group("/targets", identity.LoadUserMiddleware())
		{
			targetRoutes.GET("", nutrition.GetTargetsHandler)
			targetRoutes.PUT("", nutrition.SetOverrideHandler)
			targetRoutes.POST("/recalculate", nutrition.RecalculateHandler)
			targetRoutes.GET("/progress", nutrition.GetProgressHandler)
		}
	}
}
