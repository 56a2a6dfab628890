package relayport

import "errors"

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrWouldBlock 所有通道都尚未完成分配，发送暂不可用
	ErrWouldBlock = errors.New("relayport: would block, no connected entry")
	// ErrNotConnected 通道没有可用的服务器连接
	ErrNotConnected = errors.New("relayport: entry not connected")
	// ErrInvalidConfig 端口配置非法
	ErrInvalidConfig = errors.New("relayport: invalid config")
	// ErrClosed 端口已关闭
	ErrClosed = errors.New("relayport: port closed")
)
