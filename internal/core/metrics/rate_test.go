package metrics

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

// TestRateMeter_Window 测试滑动窗口
func TestRateMeter_Window(t *testing.T) {
	mock := clock.NewMock()
	r := NewRateMeter(mock)

	r.Add(60)
	mock.Add(time.Second)
	r.Add(60)

	assert.Equal(t, int64(120), r.Window())
	assert.InDelta(t, 2.0, r.Rate(), 0.0001)

	// 第一个桶在 60 秒后滑出窗口
	mock.Add(59 * time.Second)
	assert.Equal(t, int64(60), r.Window())

	mock.Add(2 * time.Minute)
	assert.Equal(t, int64(0), r.Window())
}

// TestRateMeter_Reset 测试重置
func TestRateMeter_Reset(t *testing.T) {
	mock := clock.NewMock()
	r := NewRateMeter(mock)
	r.Add(100)
	mock.Add(1500 * time.Millisecond)

	r.Reset()
	assert.Equal(t, int64(0), r.Window())
	assert.Equal(t, mock.Now(), r.LastUpdate())
}
