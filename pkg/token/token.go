package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// secretKey 是服务器在启动时生成的32字节密钥。
var secretKey []byte

// IdentityPayload 定义了身份cookie中被签名的数据结构。
// 它在下发cookie时被序列化，在每个请求的中间件中被重建并验证，
// 因此只能包含验证方能够从请求中还原的字段。
type IdentityPayload struct {
	UserID string `json:"u"`
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已成功生成。")
}

// SignIdentity 为一个给定的IdentityPayload生成HMAC签名。
// 返回签名的Base64编码字符串。
func SignIdentity(payload IdentityPayload) (string, error) {
	// 1. 将payload序列化为JSON字符串
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.New("无法序列化身份payload")
	}

	// 2. 使用HMAC-SHA256和密钥对payload进行签名
	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	// 3. 对签名进行Base64编码
	return base64.RawURLEncoding.EncodeToString(signature), nil
}

// ValidateIdentity 验证一个给定的payload和签名是否匹配。
func ValidateIdentity(payload IdentityPayload, signatureB64 string) bool {
	// 重新序列化以确保与签名时的数据格式完全一致
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	expectedSig, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	return hmac.Equal(mac.Sum(nil), expectedSig)
}
