package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ParseToken 从 Bearer Token 中解析业务 Claims
//
// 签名校验由服务端完成，客户端不持有签名密钥，这里只做
// 结构解析与过期检查，用于确定本端用户身份。
func ParseToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("token 解析失败: %w", err)
	}

	if claims.UserID == 0 {
		return nil, errors.New("token 缺少 user_id")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, errors.New("token 已过期")
	}

	return claims, nil
}
