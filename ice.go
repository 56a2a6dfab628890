package ice

import (
	"github.com/dep2p/go-ice/internal/core/eventloop"
	"github.com/dep2p/go-ice/internal/core/relayport"
	relayif "github.com/dep2p/go-ice/pkg/interfaces/relay"
	transportif "github.com/dep2p/go-ice/pkg/interfaces/transport"
)

// ============================================================================
//                              门面类型
// ============================================================================

// EventLoop 单线程协作式事件循环
type EventLoop = eventloop.Loop

// RelayConfig 中继端口配置
type RelayConfig = relayport.Config

// ============================================================================
//                              构造函数
// ============================================================================

// NewEventLoop 创建使用真实时钟的事件循环
//
// 调用 Start() 后由后台线程驱动；Stop() 停止。
func NewEventLoop() *EventLoop {
	return eventloop.New(nil)
}

// NewRelayPort 创建中继端口
//
// factory 提供套接字创建能力，其回调必须交付到 loop 所在线程。
func NewRelayPort(cfg RelayConfig, loop *EventLoop,
	factory transportif.SocketFactory) (relayif.Port, error) {
	return relayport.New(cfg, loop, factory)
}
