package handlers

import (
	engagement "watch_earn_service/internal/engagement/app"
	ledger "watch_earn_service/internal/ledger/app"
	"watch_earn_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AccountHandler 處理帳號相關的 HTTP 請求
type AccountHandler struct {
	ledgerUC ledger.LedgerUseCase
	sessions *engagement.Sessions
}

// NewAccountHandler 建立新的 AccountHandler
func NewAccountHandler(ledgerUC ledger.LedgerUseCase, sessions *engagement.Sessions) *AccountHandler {
	return &AccountHandler{
		ledgerUC: ledgerUC,
		sessions: sessions,
	}
}

// Signup 註冊並登入
func (h *AccountHandler) Signup(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return invalidRequest(c)
	}
	logger.Log.Debug("Signup request", zap.String("email", req.Email), zap.String("username", req.Username))

	account, err := h.ledgerUC.Signup(c.UserContext(), req.Email, req.Password, req.Username)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

// Login 登入 (password is not verified)
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return invalidRequest(c)
	}
	logger.Log.Debug("Login request", zap.String("email", req.Email))

	account, err := h.ledgerUC.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(account)
}

// Logout 登出並停止觀看 session
func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	h.sessions.Release()
	if err := h.ledgerUC.Logout(c.UserContext()); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{"message": "logout success"})
}

// Me 目前登入帳號
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	account, err := h.ledgerUC.CurrentAccount()
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(account)
}

// Dashboard 餘額與影片統計
func (h *AccountHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.ledgerUC.Dashboard(c.UserContext())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"account":         dash.Account,
		"videoCount":      dash.VideoCount,
		"totalViews":      dash.TotalViews,
		"totalLikes":      dash.TotalLikes,
		"totalSubscribes": dash.TotalSubscribes,
		"freeUploads":     dash.FreeUploads,
		"videos":          toVideoViews(dash.Videos),
	})
}
