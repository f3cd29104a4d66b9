package forwarding

import (
	"container/list"
	"sync"
	"time"
)

// ============================================================================
//                              出站队列
// ============================================================================

// Queue 出站 FIFO 队列
//
// 并发入队之间按获得锁的先后排序。每次入队都会向唤醒通道发送一个信号，
// 通道容量为 1，多次入队只保留一个未消费的信号。
type Queue struct {
	mu    sync.Mutex
	queue *list.List
	wake  chan struct{}

	// maxSize 最大消息数，0 表示不限制
	maxSize int

	// 统计
	totalEnqueued int64
	totalDequeued int64
	totalRejected int64
}

// QueueStats 队列统计
type QueueStats struct {
	CurrentSize   int
	MaxSize       int
	TotalEnqueued int64
	TotalDequeued int64
	TotalRejected int64
}

// NewQueue 创建出站队列
func NewQueue(maxSize int) *Queue {
	return &Queue{
		queue:   list.New(),
		wake:    make(chan struct{}, 1),
		maxSize: maxSize,
	}
}

// Enqueue 追加到队尾，队列已满时返回 ErrQueueFull
func (q *Queue) Enqueue(msg *OutboundMessage) error {
	if msg == nil || msg.Message == nil {
		return ErrInvalidMessage
	}

	q.mu.Lock()
	if q.maxSize > 0 && q.queue.Len() >= q.maxSize {
		q.totalRejected++
		q.mu.Unlock()
		return ErrQueueFull
	}
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = time.Now()
	}
	q.queue.PushBack(msg)
	q.totalEnqueued++
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue 取出队首，队列为空时返回 nil
func (q *Queue) Dequeue() *OutboundMessage {
	q.mu.Lock()
	defer q.mu.Unlock()

	front := q.queue.Front()
	if front == nil {
		return nil
	}
	q.queue.Remove(front)
	q.totalDequeued++
	return front.Value.(*OutboundMessage)
}

// Wake 返回唤醒通道
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Len 返回队列长度
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.Len()
}

// Clear 清空队列，返回丢弃的消息数
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.queue.Len()
	q.queue.Init()
	return n
}

// Stats 返回队列统计
func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		CurrentSize:   q.queue.Len(),
		MaxSize:       q.maxSize,
		TotalEnqueued: q.totalEnqueued,
		TotalDequeued: q.totalDequeued,
		TotalRejected: q.totalRejected,
	}
}
