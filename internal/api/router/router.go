package router

import (
	"watch_earn_service/internal/api/handlers"
	"watch_earn_service/internal/ledger/repository"
	"watch_earn_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// Handlers 所有 route 需要的 handler
type Handlers struct {
	Account *handlers.AccountHandler
	Video   *handlers.VideoHandler
	Watch   *handlers.WatchHandler
}

// RegisterRoutes 注册路由
func RegisterRoutes(app *fiber.App, h Handlers, active middlewares.ActiveAccountFunc) {
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	accountRoutes := app.Group("/account")
	accountRoutes.Post("/signup", h.Account.Signup)
	accountRoutes.Post("/login", h.Account.Login)
	accountRoutes.Post("/logout", h.Account.Logout)
	accountRoutes.Get("/me", middlewares.RequireActiveAccount(active), h.Account.Me)

	app.Get("/dashboard", middlewares.RequireActiveAccount(active), h.Account.Dashboard)

	videoRoutes := app.Group("/videos", middlewares.RequireActiveAccount(active))
	videoRoutes.Post("/", h.Video.Upload)
	videoRoutes.Get("/mine", h.Video.Mine)
	videoRoutes.Get("/watch", h.Video.Watchable)
	videoRoutes.Get("/history", h.Video.History)

	watchRoutes := app.Group("/watch", middlewares.RequireActiveAccount(active))
	watchRoutes.Post("/select/:videoID", h.Watch.Select)
	watchRoutes.Post("/like", h.Watch.Like)
	watchRoutes.Post("/subscribe", h.Watch.Subscribe)
	watchRoutes.Post("/claim", h.Watch.Claim)
	watchRoutes.Post("/stop", h.Watch.Stop)
	watchRoutes.Get("/state", h.Watch.State)
	watchRoutes.Get("/ws", h.Watch.UpgradeCheck, h.Watch.Websocket())
}

// ActiveAccount 由 store 取得目前登入帳號
func ActiveAccount(store repository.LedgerStore) middlewares.ActiveAccountFunc {
	return func() (string, bool) {
		account, ok := store.ActiveAccount()
		if !ok {
			return "", false
		}
		return account.ID, true
	}
}
