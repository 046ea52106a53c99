package handlers

import (
	"errors"
	"fmt"
	"strconv"

	errprocess "watch_earn_service/pkg/err"
	"watch_earn_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ConnectCheck check api connect start
func ConnectCheck(c *fiber.Ctx) error {
	return c.SendString("watch earn service start!")
}

// DebugLogFlag toggle debug log flag, ?status=true|false
func DebugLogFlag(c *fiber.Ctx) error {
	statusStr := c.Query("status")
	logger.Log.Info("debug", zap.String("status", statusStr))
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("debug mode is : %t", status))
}

// errorStatus 將錯誤種類對應到 HTTP status
func errorStatus(err error) int {
	switch {
	case errors.Is(err, errprocess.ErrDuplicateEmail):
		return fiber.StatusConflict
	case errors.Is(err, errprocess.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errprocess.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, errprocess.ErrInsufficientBalance):
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusInternalServerError
	}
}

func sendError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		logger.Log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func invalidRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
}
