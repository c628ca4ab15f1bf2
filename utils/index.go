package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	var errMsg interface{}
	if err != nil {
		errMsg = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   errMsg,
	})
}

// ErrorResponseWith thêm các trường chi tiết (code, seatIds, reason) vào body lỗi
func ErrorResponseWith(c *fiber.Ctx, status int, message string, err error, extra fiber.Map) error {
	body := fiber.Map{"message": message, "error": nil}
	if err != nil {
		body["error"] = err.Error()
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

func SuccessResponse(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

// ParseUintParam đọc tham số route dạng số dương
func ParseUintParam(c *fiber.Ctx, key string) (uint, bool) {
	v, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func Ptr[T any](v T) *T {
	return &v
}
