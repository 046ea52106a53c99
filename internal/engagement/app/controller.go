package app

import (
	"context"
	"sync"
	"time"

	"watch_earn_service/internal/engagement/domain"
	ledgerapp "watch_earn_service/internal/ledger/app"
	ledger "watch_earn_service/internal/ledger/domain"
	"watch_earn_service/internal/ledger/repository"
	errprocess "watch_earn_service/pkg/err"
	"watch_earn_service/pkg/logger"

	"go.uber.org/zap"
)

// Controller 觀看中影片的 session state machine.
// Disallowed transitions return the unchanged state and a nil error.
type Controller interface {
	ViewerID() string
	SelectVideo(ctx context.Context, videoID string) (domain.State, error)
	Tick() domain.State
	Like(ctx context.Context) (domain.State, error)
	Subscribe(ctx context.Context) (domain.State, error)
	ClaimWatchReward(ctx context.Context) (domain.State, error)
	State() domain.State
	// Updates state pushed after every change; call cancel to unsubscribe
	Updates() (<-chan domain.State, func())
	Stop()
}

type controller struct {
	viewerID string
	store    repository.LedgerStore
	events   *ledgerapp.EventSink
	interval time.Duration

	mu    sync.Mutex
	state domain.State
	// watched videos whose watch reward was granted by this controller
	watched map[string]bool
	// gen 每次換影片或停止時遞增, stale ticks are dropped
	gen    uint64
	stopCh chan struct{}

	subID       int
	subscribers map[int]chan domain.State
}

// NewController 建立一個綁定 viewerID 的 controller; interval 0 disables the automatic ticker
func NewController(viewerID string, store repository.LedgerStore, events *ledgerapp.EventSink, interval time.Duration) Controller {
	return &controller{
		viewerID:    viewerID,
		store:       store,
		events:      events,
		interval:    interval,
		state:       domain.State{ViewerID: viewerID, Phase: domain.Idle},
		watched:     map[string]bool{},
		subscribers: map[int]chan domain.State{},
	}
}

func (c *controller) ViewerID() string {
	return c.viewerID
}

// SelectVideo 切換影片: 停掉舊 ticker, 重置, 累計一次觀看, 還原過去的互動
func (c *controller) SelectVideo(ctx context.Context, videoID string) (domain.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	video, err := c.store.GetVideo(videoID)
	if err != nil {
		return c.state, err
	}
	// 只能觀看其他使用者的影片
	if video.UserID == c.viewerID {
		return c.state, errprocess.Wrap(errprocess.ErrValidation, "viewer[%s] owns video[%s]", c.viewerID, videoID)
	}

	c.stopTickerLocked()
	c.state = domain.State{
		ViewerID: c.viewerID,
		Phase:    domain.Watching,
		VideoID:  videoID,
	}

	if _, err := c.store.IncrementVideoCounter(ctx, videoID, ledger.CounterView); err != nil {
		c.state.Phase, c.state.VideoID = domain.Idle, ""
		c.publishLocked()
		return c.state, err
	}

	if rec, ok := c.store.FindEngagement(c.state.ViewerID, videoID); ok {
		c.state.WatchTime = rec.WatchTime
		c.state.HasLiked = rec.HasLiked
		c.state.HasSubscribed = rec.HasSubscribed
	}
	c.state.WatchRewardClaimed = c.watched[videoID]

	c.startTickerLocked()
	c.publishLocked()

	logger.Log.Info("select video",
		zap.String("viewerID", c.state.ViewerID),
		zap.String("videoID", videoID),
		zap.Int("watchTime", c.state.WatchTime),
	)
	return c.state, nil
}

// Tick 觀看秒數 +1, no upper bound
func (c *controller) Tick() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickLocked()
}

func (c *controller) tickLocked() domain.State {
	if !c.state.IsWatching() {
		return c.state
	}
	c.state.WatchTime++
	c.publishLocked()
	return c.state
}

func (c *controller) Like(ctx context.Context) (domain.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanLike() {
		return c.state, nil
	}
	err := c.grantLocked(ctx, ledger.LikeReward, ledger.CounterLike, "like", func(s *domain.State) {
		s.HasLiked = true
	})
	return c.state, err
}

func (c *controller) Subscribe(ctx context.Context) (domain.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanSubscribe() {
		return c.state, nil
	}
	err := c.grantLocked(ctx, ledger.SubscribeReward, ledger.CounterSubscribe, "subscribe", func(s *domain.State) {
		s.HasSubscribed = true
	})
	return c.state, err
}

// ClaimWatchReward 觀看滿門檻後領取一次
func (c *controller) ClaimWatchReward(ctx context.Context) (domain.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanClaimWatchReward() {
		return c.state, nil
	}
	videoID := c.state.VideoID
	err := c.grantLocked(ctx, ledger.WatchReward, "", "watch", func(s *domain.State) {
		s.WatchRewardClaimed = true
		c.watched[videoID] = true
	})
	return c.state, err
}

// grantLocked 入帳 -> 設旗標 -> 計數 -> 寫互動紀錄.
// The flag is set once the coins land, before the counter and record writes.
func (c *controller) grantLocked(ctx context.Context, reward int, counter ledger.CounterKind, reason string, mark func(*domain.State)) error {
	viewerID, videoID := c.state.ViewerID, c.state.VideoID

	account, err := c.store.AdjustBalance(ctx, viewerID, reward)
	if err != nil {
		logger.Log.Error("credit reward failed",
			zap.String("viewerID", viewerID),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return err
	}
	mark(&c.state)
	defer c.publishLocked()

	c.events.Emit(ctx, ledger.LedgerEvent{
		Type:      ledger.EventCoinsCredited,
		AccountID: viewerID,
		VideoID:   videoID,
		Delta:     reward,
		Balance:   account.Coins,
		Reason:    reason,
	})

	if counter != "" {
		if _, err := c.store.IncrementVideoCounter(ctx, videoID, counter); err != nil {
			return err
		}
	}

	_, err = c.store.RecordEngagement(ctx, repository.EngagementParams{
		ViewerID:      viewerID,
		VideoID:       videoID,
		WatchSeconds:  c.state.WatchTime,
		HasLiked:      c.state.HasLiked,
		HasSubscribed: c.state.HasSubscribed,
		CoinsAwarded:  reward,
	})
	if err != nil {
		return err
	}

	logger.Log.Info("reward granted",
		zap.String("viewerID", viewerID),
		zap.String("videoID", videoID),
		zap.String("reason", reason),
		zap.Int("coins", reward),
		zap.Int("balance", account.Coins),
	)
	return nil
}

func (c *controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *controller) Updates() (<-chan domain.State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subID++
	id := c.subID
	ch := make(chan domain.State, 1)
	c.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if _, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(ch)
			}
		})
	}
}

// Stop 停止 ticker 並回到 Idle
func (c *controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTickerLocked()
	c.state = domain.State{ViewerID: c.viewerID, Phase: domain.Idle}
	c.publishLocked()
}

// publishLocked 只保留最新狀態, slow readers never block the ticker
func (c *controller) publishLocked() {
	for _, ch := range c.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c.state:
		default:
		}
	}
}

func (c *controller) stopTickerLocked() {
	c.gen++
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
}

func (c *controller) startTickerLocked() {
	if c.interval <= 0 {
		return
	}
	stop := make(chan struct{})
	c.stopCh = stop
	go c.runTicker(c.gen, stop)
}

func (c *controller) runTicker(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			if c.gen != gen {
				c.mu.Unlock()
				return
			}
			c.tickLocked()
			c.mu.Unlock()
		case <-stop:
			return
		}
	}
}
