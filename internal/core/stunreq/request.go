package stunreq

import (
	"time"

	"github.com/pion/stun"
)

// ============================================================================
//                              Request 接口
// ============================================================================

// Request 一次 STUN 事务
//
// 事务是带共享重传调度的和类型：{Prepare, Response, ErrorResponse, Timeout}。
// 具体事务（如 ALLOCATE）实现本接口并内嵌 Base。
type Request interface {
	// Prepare 填充请求报文（类型与属性）
	Prepare(m *stun.Message) error

	// NextDelay 返回距下一次重传的时长
	//
	// 实现自行推进重传计数；达到重传上限后置终态超时标志，
	// 下一次到期时 Manager 调用 OnTimeout 而非重传。
	NextDelay() time.Duration

	// TimedOut 返回终态超时标志
	TimedOut() bool

	// OnResponse 成功响应
	OnResponse(m *stun.Message)

	// OnErrorResponse 错误响应
	OnErrorResponse(m *stun.Message)

	// OnTimeout 重传耗尽
	OnTimeout()
}

// ============================================================================
//                              Base 公共字段
// ============================================================================

// Base 事务公共状态，供具体事务内嵌
type Base struct {
	// Count 已发送次数
	Count int
	// Timeout 终态超时标志
	Timeout bool
}

// TimedOut 返回终态超时标志
func (b *Base) TimedOut() bool {
	return b.Timeout
}
