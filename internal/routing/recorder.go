package routing

// 路径计算结果
const (
	PathFound       = "found"
	PathUnreachable = "unreachable"
	PathCached      = "cached"
)

// Recorder 路由指标记录器
type Recorder interface {
	// PathComputed 记录一次最短路径查询及其结果
	PathComputed(result string)

	// DecodeFailed 记录一次路由重建失败
	DecodeFailed()
}

type nopRecorder struct{}

func (nopRecorder) PathComputed(string) {}
func (nopRecorder) DecodeFailed()       {}
