// Package token реализует разбор JWT-токена на стороне клиента.
//
// Клиент не знает секретного ключа сервера, поэтому подпись не проверяется:
// токен разбирается только для чтения claims (срок действия, субъект).
// Решение о валидности токена всегда остаётся за сервером.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims содержит интересующие клиента поля JWT.
type Claims struct {
	Subject   string    // Идентификатор пользователя (claim sub)
	ExpiresAt time.Time // Срок действия токена (claim exp), нулевое время если не задан
}

// Parse разбирает токен без проверки подписи и возвращает его claims.
func Parse(tokenStr string) (*Claims, error) {
	const op = "token.Parse"

	parsed, _, err := jwt.NewParser().ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	claims := &Claims{}
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

// Expired сообщает, истёк ли срок действия токена на момент now.
// Токен без claim exp считается бессрочным.
func Expired(tokenStr string, now time.Time) bool {
	claims, err := Parse(tokenStr)
	if err != nil {
		return false
	}
	if claims.ExpiresAt.IsZero() {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
