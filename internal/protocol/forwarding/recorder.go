package forwarding

// Recorder 转发指标记录器
type Recorder interface {
	// Dispatched 一次成功分发
	Dispatched(action string)

	// Failed 一次失败分发
	Failed(action string)

	// QueueDepth 当前队列长度
	QueueDepth(n int)
}

type nopRecorder struct{}

func (nopRecorder) Dispatched(string) {}
func (nopRecorder) Failed(string)     {}
func (nopRecorder) QueueDepth(int)    {}
