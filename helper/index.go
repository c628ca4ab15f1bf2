package helper

import (
	"cinema_booking/model"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func GenerateAccessToken(secret []byte, tokenClaim model.TokenClaim, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["username"] = tokenClaim.Username
	claims["customerId"] = tokenClaim.CustomerId
	claims["accountId"] = tokenClaim.AccountId
	claims["role"] = tokenClaim.Role
	claims["exp"] = time.Now().Add(ttl).Unix()

	return token.SignedString(secret)
}

func ParseToken(secret []byte, tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Xác thực thuật toán ký là HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
}

func ClaimFromToken(token *jwt.Token) model.TokenClaim {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.TokenClaim{}
	}
	var claim model.TokenClaim
	if v, ok := claims["customerId"].(float64); ok {
		claim.CustomerId = uint(v)
	}
	if v, ok := claims["accountId"].(float64); ok {
		claim.AccountId = uint(v)
	}
	claim.Username, _ = claims["username"].(string)
	claim.Role, _ = claims["role"].(string)
	return claim
}

// GetClaim đọc thông tin người dùng do middleware Protected lưu lại
func GetClaim(c *fiber.Ctx) model.TokenClaim {
	claim, _ := c.Locals("claims").(model.TokenClaim)
	return claim
}
