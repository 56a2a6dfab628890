package relayport

import (
	"time"

	"github.com/pion/stun"

	"github.com/dep2p/go-ice/internal/core/stunreq"
	"github.com/dep2p/go-ice/pkg/lib/gturn"
)

// ============================================================================
//                              allocateRequest
// ============================================================================

// allocateRequest 一次 ALLOCATE 事务
//
// 构建在共享 STUN 事务框架上：指数退避重传，
// 终态分为成功 / 错误响应 / 超时。
type allocateRequest struct {
	stunreq.Base

	entry *RelayEntry
	conn  *RelayConnection
	start time.Time
}

// newAllocateRequest 创建 ALLOCATE 事务
func newAllocateRequest(entry *RelayEntry, conn *RelayConnection) *allocateRequest {
	return &allocateRequest{
		entry: entry,
		conn:  conn,
		start: entry.port.loop.Now(),
	}
}

// Prepare 填充 ALLOCATE 请求
func (r *allocateRequest) Prepare(m *stun.Message) error {
	m.SetType(gturn.TypeAllocateRequest)
	gturn.AddBytes(m, gturn.AttrUsername, []byte(r.entry.port.username))
	return nil
}

// NextDelay 重传调度：200、200、400、800、1600 毫秒，之后终态超时
func (r *allocateRequest) NextDelay() time.Duration {
	shift := 1 << r.Count
	if shift < 2 {
		shift = 2
	}
	r.Count++
	if r.Count == 5 {
		r.Timeout = true
	}
	return time.Duration(100*shift) * time.Millisecond
}

// OnResponse 分配成功响应
func (r *allocateRequest) OnResponse(m *stun.Message) {
	addr, err := gturn.GetAddress(m, gturn.AttrMappedAddress)
	if err != nil {
		logger.Info("ALLOCATE 响应的映射地址不可用", "error", err)
	} else {
		r.entry.OnConnect(addr, r.conn)
	}

	// 无论本次结果如何都安排保活，对网络用量几乎没有影响
	r.entry.ScheduleKeepAlive()
}

// OnErrorResponse 分配错误响应
//
// 仍在重试窗口内按瞬时错误处理，继续保活；超出窗口后放弃，
// 这条通道对当前服务器就此失效。
func (r *allocateRequest) OnErrorResponse(m *stun.Message) {
	var code stun.ErrorCodeAttribute
	if err := code.GetFrom(m); err != nil {
		logger.Info("ALLOCATE 错误响应缺少错误码")
	} else {
		logger.Info("ALLOCATE 错误响应",
			"code", int(code.Code), "reason", string(code.Reason))
	}

	if r.entry.port.loop.Now().Sub(r.start) <= retryTimeout {
		r.entry.ScheduleKeepAlive()
	}
}

// OnTimeout 重传耗尽，触发服务器回退
func (r *allocateRequest) OnTimeout() {
	logger.Info("ALLOCATE 事务超时")
	r.entry.HandleConnectFailure(r.conn.Socket())
}
