package types

// Subscription 本地订阅句柄
//
// 订阅者由 Actor 标识，Task 区分同一订阅者的多个任务。
type Subscription struct {
	ID    string         `json:"id" yaml:"id"`
	Actor string         `json:"actor" yaml:"actor"`
	Task  string         `json:"task,omitempty" yaml:"task,omitempty"`
	Feed  FeedDescriptor `json:"feed" yaml:"feed"`
}

// String 返回订阅的简短表示
func (s Subscription) String() string {
	if s.Task == "" {
		return s.Actor + "#" + s.ID
	}
	return s.Actor + "/" + s.Task + "#" + s.ID
}
