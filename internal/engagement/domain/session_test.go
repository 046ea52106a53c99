package domain

import (
	"testing"

	ledger "watch_earn_service/internal/ledger/domain"

	"github.com/stretchr/testify/assert"
)

func TestStateGuards(t *testing.T) {
	idle := State{Phase: Idle}
	assert.False(t, idle.CanLike())
	assert.False(t, idle.CanSubscribe())
	assert.False(t, idle.CanClaimWatchReward())

	s := State{Phase: Watching, VideoID: "v1", WatchTime: ledger.WatchRewardThreshold - 1}
	assert.True(t, s.CanLike())
	assert.True(t, s.CanSubscribe())
	assert.False(t, s.CanClaimWatchReward())
	assert.Equal(t, 1, s.RemainingWatchSeconds())

	s.WatchTime++
	assert.True(t, s.CanClaimWatchReward())
	assert.Equal(t, 0, s.RemainingWatchSeconds())

	s.HasLiked, s.HasSubscribed, s.WatchRewardClaimed = true, true, true
	assert.False(t, s.CanLike())
	assert.False(t, s.CanSubscribe())
	assert.False(t, s.CanClaimWatchReward())
}
