package util

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// InitSnowflake 初始化 snowflake 节点，nodeID 取值 0-1023，多实例部署时必须不同
func InitSnowflake(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	node = n
	return nil
}

// GenID 生成全局唯一 id（帖子 id）
// 未显式初始化时使用节点 0
func GenID() int64 {
	nodeOnce.Do(func() {
		if node == nil {
			node, _ = snowflake.NewNode(0)
		}
	})
	return node.Generate().Int64()
}

// GenIDString 生成字符串形式的 id
func GenIDString() string {
	return strconv.FormatInt(GenID(), 10)
}
