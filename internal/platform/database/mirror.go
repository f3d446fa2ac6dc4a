package database

import (
	"fmt"
	"log"
	"os"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MirrorDB 是远程镜像(Postgres)的全局句柄。
// 镜像被禁用时它保持为nil，应用以纯本地模式运行。
// 任何关键路径都不允许同步读取镜像，它只接收双写和后台同步。
var MirrorDB *gorm.DB

// InitMirror 初始化与远程镜像数据库的连接。
// 与本地库不同，镜像不可用不是致命错误：打印警告并继续以本地模式运行。
func InitMirror(cfg config.MirrorConfig) {
	if !cfg.Enabled {
		fmt.Println("远程镜像未启用，以纯本地模式运行。")
		return
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		fmt.Printf("连接远程镜像失败，降级为纯本地模式: %v\n", err)
		UpdateMirrorStatus(false)
		return
	}

	MirrorDB = db
	fmt.Println("远程镜像连接成功！")
}

// IsMirrorEnabled 返回远程镜像是否已经建立连接。
func IsMirrorEnabled() bool {
	return MirrorDB != nil
}
