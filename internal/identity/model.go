package identity

import (
	"time"

	"gorm.io/gorm"
)

// Identity 定义了已激活用户身份在SQLite数据库中的持久化模型。
// 身份提供方对外是不透明的：上层只拿到一个稳定的用户ID字符串。
type Identity struct {
	// UUID 是用户的主键，来自客户端Cookie。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// MirrorIdentity 是远程镜像中的身份记录。
// 它是账户创建Saga中第一个被提交、最后一个被补偿的对象。
type MirrorIdentity struct {
	UserID    string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MirrorIdentity) TableName() string { return "mirror_identities" }

// KnownUsersKey 是一个 Redis Set 的键，缓存所有已激活的用户UUID，
// 用于在请求路径上快速判断身份是否有效。
const KnownUsersKey = "identity:known"
