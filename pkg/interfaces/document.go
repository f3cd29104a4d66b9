package interfaces

// Document 线上结构化文档
//
// 路径使用 "/" 分隔，例如 "fab/rt/nodes"。Set 会自动创建缺失的中间节点；
// 当路径上已有非映射值时返回错误。
type Document interface {
	// Has 路径是否存在
	Has(path string) bool

	// Set 写入值，支持 string、bool、int、int64、float64、[]string、map[string]string
	Set(path string, value any) error

	// Delete 删除路径，不存在时无操作
	Delete(path string)

	// GetString 读取字符串
	GetString(path string) (string, bool)

	// GetBool 读取布尔值
	GetBool(path string) (bool, bool)

	// GetInt 读取整数
	GetInt(path string) (int64, bool)

	// GetStrings 读取字符串列表
	GetStrings(path string) ([]string, bool)

	// GetMap 读取字符串映射
	GetMap(path string) (map[string]string, bool)

	// Marshal 编码为二进制
	Marshal() ([]byte, error)
}
