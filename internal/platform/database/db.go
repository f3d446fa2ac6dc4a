package database

import (
	"fmt"
	"log"
	"os"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是本地嵌入式数据库的全局句柄。
// 所有派生指标和展示逻辑都以它作为唯一的同步读取来源。
var DB *gorm.DB

// InitDB 初始化本地SQLite数据库连接
func InitDB(cfg config.SqliteConfig) {
	var err error

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent,
			Colorful:      true,
		},
	)

	DB, err = gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: newLogger,
	})

	if err != nil {
		fmt.Println("连接本地数据库失败", err)
		panic(err)
	}

	fmt.Println("本地数据库连接成功！")
}

// EnsureColumn 实现可追加、幂等的列迁移契约：
// 启动时先检查列是否存在，不存在才添加，并用给定的默认值回填旧行。
// 列已存在时本函数是无操作，重复执行是安全的。
func EnsureColumn(model interface{}, column string, defaultValue interface{}) error {
	migrator := DB.Migrator()
	if migrator.HasColumn(model, column) {
		return nil
	}
	if err := migrator.AddColumn(model, column); err != nil {
		return fmt.Errorf("无法添加列 %s: %w", column, err)
	}
	if defaultValue != nil {
		if err := DB.Model(model).Where(column + " IS NULL").Update(column, defaultValue).Error; err != nil {
			return fmt.Errorf("无法回填列 %s 的默认值: %w", column, err)
		}
	}
	fmt.Printf("追加迁移: 列 %s 已添加并回填默认值。\n", column)
	return nil
}
