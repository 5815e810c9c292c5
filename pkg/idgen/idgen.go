// Package idgen 基于雪花算法生成全局唯一 ID
package idgen

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	once sync.Once
	node *snowflake.Node
)

// Init 指定节点号初始化生成器，未调用时默认节点 1
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	once.Do(func() {})
	node = n
	return nil
}

func get() *snowflake.Node {
	once.Do(func() {
		if node == nil {
			node, _ = snowflake.NewNode(1)
		}
	})
	return node
}

// GenID 生成 int64 ID
func GenID() int64 {
	return get().Generate().Int64()
}

// GenString 生成字符串 ID
func GenString() string {
	return strconv.FormatInt(GenID(), 10)
}
