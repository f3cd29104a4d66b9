package flood

// Recorder 去重缓存指标记录器
type Recorder interface {
	// Duplicate 记录一次被抑制的重复消息
	Duplicate()

	// Evicted 记录一次清理删除的条目数
	Evicted(n int)

	// Size 记录当前条目数
	Size(n int)
}

type nopRecorder struct{}

func (nopRecorder) Duplicate()  {}
func (nopRecorder) Evicted(int) {}
func (nopRecorder) Size(int)    {}
