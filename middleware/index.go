package middleware

import (
	"cinema_booking/constants"
	"cinema_booking/helper"
	"cinema_booking/utils"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func Protected(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("access_token")

		if token == "" {
			// check header Authorization: Bearer xxx
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Missing token", errors.New("no token"))
		}

		jwtToken, err := helper.ParseToken(secret, token)
		if err != nil || !jwtToken.Valid {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token", err)
		}

		c.Locals("user", jwtToken)
		c.Locals("claims", helper.ClaimFromToken(jwtToken))
		return c.Next()
	}
}

// CustomerOnly yêu cầu token của khách hàng
func CustomerOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if helper.GetClaim(c).CustomerId == 0 {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.FORBIDDEN, errors.New("customer token required"))
		}
		return c.Next()
	}
}

func StaffOnly() fiber.Handler {
	return RequireRole(constants.STAFF_ROLES...)
}

// RequireRole chỉ cho tài khoản nội bộ có role nằm trong danh sách
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claim := helper.GetClaim(c)
		if claim.AccountId == 0 || !utils.IsValidValueOfConstant(claim.Role, roles) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.FORBIDDEN, errors.New("role not allowed"))
		}
		return c.Next()
	}
}
