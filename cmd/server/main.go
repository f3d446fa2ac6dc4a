package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/api"
	"github.com/SlpAus/nutrition-ledger-backend/internal/meal"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/config"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/health"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/mirror"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/shutdown"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/startup"
	"github.com/SlpAus/nutrition-ledger-backend/pkg/lifecycle"
	"github.com/SlpAus/nutrition-ledger-backend/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	token.GenerateSecretKey()

	// 1. 加载配置；缺省值足以让应用以纯本地模式启动
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	// 2. 初始化本地库（致命）与镜像、Redis（均可降级）
	database.InitDB(cfg.Database.Sqlite)
	database.InitMirror(cfg.Database.Mirror)
	database.InitRedis(cfg.Database.Redis)

	// 3. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 4. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 5. 启动后台服务：镜像同步器、餐食推送订阅器、持续健康检查器
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	mirrorHandle, err := gracefulManager.NewServiceHandle("mirror-writer")
	if err != nil {
		panic(err)
	}
	go mirror.StartWorker(mirrorHandle)

	feedHandle, err := gracefulManager.NewServiceHandle("meal-feed")
	if err != nil {
		panic(err)
	}
	go meal.StartFeedSubscriber(feedHandle)

	healthHandle, err := forcefulManager.NewServiceHandle("health-checker")
	if err != nil {
		panic(err)
	}
	go health.StartHealthCheck(healthHandle)

	// 6. 组装HTTP层
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 7. 阻塞等待停机信号并编排两阶段优雅停机
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
