package forwarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-fabric/internal/message"
	"github.com/dep2p/go-fabric/pkg/types"
)

var testFeed = types.FeedDescriptor{Platform: "p", Service: "s", Feed: "f"}

func testMessage(id string) *message.FeedMessage {
	return &message.FeedMessage{ID: types.MessageID(id), Feed: testFeed, Payload: []byte(id)}
}

// TestQueue_FIFO 测试先进先出
func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(0)

	require.NoError(t, q.Enqueue(NewForward(testMessage("m1"), "B", testFeed, types.QoSDefault)))
	require.NoError(t, q.Enqueue(NewForward(testMessage("m2"), "B", testFeed, types.QoSDefault)))
	assert.Equal(t, 2, q.Len())

	assert.Equal(t, types.MessageID("m1"), q.Dequeue().Message.ID)
	assert.Equal(t, types.MessageID("m2"), q.Dequeue().Message.ID)
	assert.Nil(t, q.Dequeue())

	stats := q.Stats()
	assert.Equal(t, int64(2), stats.TotalEnqueued)
	assert.Equal(t, int64(2), stats.TotalDequeued)
}

// TestQueue_Full 测试队列上限
func TestQueue_Full(t *testing.T) {
	q := NewQueue(1)

	require.NoError(t, q.Enqueue(NewForward(testMessage("m1"), "B", testFeed, types.QoSDefault)))
	err := q.Enqueue(NewForward(testMessage("m2"), "B", testFeed, types.QoSDefault))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, int64(1), q.Stats().TotalRejected)
	assert.Equal(t, 1, q.Clear())
	assert.Equal(t, 0, q.Len())
}

// TestQueue_Invalid 测试空消息
func TestQueue_Invalid(t *testing.T) {
	q := NewQueue(0)
	assert.ErrorIs(t, q.Enqueue(nil), ErrInvalidMessage)
	assert.ErrorIs(t, q.Enqueue(&OutboundMessage{Action: ActionForward}), ErrInvalidMessage)
}

// TestQueue_Wake 测试入队发出唤醒信号且信号合并
func TestQueue_Wake(t *testing.T) {
	q := NewQueue(0)
	require.NoError(t, q.Enqueue(NewForward(testMessage("m1"), "B", testFeed, types.QoSDefault)))
	require.NoError(t, q.Enqueue(NewForward(testMessage("m2"), "B", testFeed, types.QoSDefault)))

	select {
	case <-q.Wake():
	default:
		t.Fatal("expected wake signal")
	}
	select {
	case <-q.Wake():
		t.Fatal("wake signals should coalesce")
	default:
	}
}

// TestNewForward_DeepCopy 测试出站消息与原消息隔离
func TestNewForward_DeepCopy(t *testing.T) {
	m := testMessage("m1")
	out := NewForward(m, "B", testFeed, types.QoSReliable)
	m.Payload[0] = 'X'
	m.SetProperty("k", "v")

	assert.Equal(t, []byte("m1"), out.Message.Payload)
	assert.Nil(t, out.Message.Properties)
	assert.Equal(t, "forward[p/s/f -> B]", out.String())
}

// TestNewDeliver_DropsRouting 测试投递副本不带路由
func TestNewDeliver_DropsRouting(t *testing.T) {
	m := testMessage("m1")
	sub := types.Subscription{ID: "s1", Actor: "a", Task: "t", Feed: testFeed}
	out := NewDeliver(m, sub, testFeed, types.QoSDefault)

	assert.Equal(t, ActionDeliver, out.Action)
	assert.Nil(t, out.Message.Routing)
	assert.Equal(t, sub, out.Subscription)
}
