package identity

import (
	"fmt"
	"net/http"

	"github.com/SlpAus/nutrition-ledger-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

const (
	CookieName    = "user-id"
	SigCookieName = "user-sig"
	CookieMaxAge  = 365 * 24 * 60 * 60
	UserIDKey     = "userID"
)

// EnsureUserCookieMiddleware 确保客户端持有一个格式正确且签名有效的user-id cookie。
// 如果没有或签名不匹配，它会生成一个新的临时ID并重新下发cookie。
func EnsureUserCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := c.Cookie(CookieName)
		sig, _ := c.Cookie(SigCookieName)

		if err != nil || !IsValidUUID(userID) || !token.ValidateIdentity(token.IdentityPayload{UserID: userID}, sig) {
			if err != http.ErrNoCookie {
				fmt.Printf("检测到无效的用户Cookie: %s\n", userID)
			}
			provisionalID, err := CreateProvisionalID()
			if err != nil {
				fmt.Printf("创建临时用户ID时发生错误: %v\n", err)
			} else {
				issueCookies(c, provisionalID)
			}
		}

		c.Next()
	}
}

// LoadUserMiddleware 验证cookie签名并将用户ID放入Gin上下文中。
// 签名无效时视为没有身份：上层会看到“无远程同步可能”的纯本地语义。
func LoadUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Cookie(CookieName)
		sig, _ := c.Cookie(SigCookieName)
		if IsValidUUID(userID) && token.ValidateIdentity(token.IdentityPayload{UserID: userID}, sig) {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// CurrentUserID 从Gin上下文中取出当前用户ID。
// 这是身份提供方对其余模块暴露的唯一查询：拿不到ID即为匿名请求。
func CurrentUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func issueCookies(c *gin.Context, userID string) {
	sig, err := token.SignIdentity(token.IdentityPayload{UserID: userID})
	if err != nil {
		fmt.Printf("签发用户Cookie签名失败: %v\n", err)
		return
	}
	c.SetCookie(CookieName, userID, CookieMaxAge, "/", "", false, true)
	c.SetCookie(SigCookieName, sig, CookieMaxAge, "/", "", false, true)
	// 同一请求内后续中间件立即可见
	c.Set(UserIDKey, userID)
}
