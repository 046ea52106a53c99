package handlers

import (
	"watch_earn_service/internal/ledger/app"
	"watch_earn_service/internal/ledger/domain"
	"watch_earn_service/internal/ledger/repository"
	"watch_earn_service/pkg/logger"
	"watch_earn_service/pkg/middlewares"
	"watch_earn_service/pkg/videoref"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// VideoView 影片加上播放器與縮圖網址
type VideoView struct {
	domain.VideoPost
	EmbedURL     string `json:"embedUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

func toVideoViews(videos []domain.VideoPost) []VideoView {
	res := make([]VideoView, 0, len(videos))
	for _, v := range videos {
		res = append(res, VideoView{
			VideoPost:    v,
			EmbedURL:     videoref.EmbedURL(v.VideoID),
			ThumbnailURL: videoref.ThumbnailURL(v.VideoID),
		})
	}
	return res
}

// VideoHandler 處理影片上傳與列表
type VideoHandler struct {
	ledgerUC app.LedgerUseCase
	store    repository.LedgerStore
}

// NewVideoHandler 建立新的 VideoHandler
func NewVideoHandler(ledgerUC app.LedgerUseCase, store repository.LedgerStore) *VideoHandler {
	return &VideoHandler{
		ledgerUC: ledgerUC,
		store:    store,
	}
}

// Upload 上傳影片連結, first upload is free then 5 coins each
func (h *VideoHandler) Upload(c *fiber.Ctx) error {
	var req domain.UploadVideoReq
	if err := c.BodyParser(&req); err != nil {
		return invalidRequest(c)
	}
	logger.Log.Debug("Upload request", zap.String("url", req.URL), zap.String("title", req.Title))

	video, err := h.ledgerUC.UploadVideo(c.UserContext(), req)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toVideoViews([]domain.VideoPost{*video})[0])
}

// Mine 自己上傳的影片
func (h *VideoHandler) Mine(c *fiber.Ctx) error {
	return c.JSON(toVideoViews(h.store.ListOwnedVideos(middlewares.AccountID(c))))
}

// Watchable 其他使用者的影片
func (h *VideoHandler) Watchable(c *fiber.Ctx) error {
	videos, err := h.ledgerUC.WatchableVideos(c.UserContext())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(toVideoViews(videos))
}

// History 自己的互動紀錄
func (h *VideoHandler) History(c *fiber.Ctx) error {
	return c.JSON(h.store.ListEngagements(middlewares.AccountID(c)))
}
