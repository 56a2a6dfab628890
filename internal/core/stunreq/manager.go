package stunreq

import (
	"time"

	"github.com/pion/stun"

	"github.com/dep2p/go-ice/internal/core/eventloop"
)

// msgTransmit 事务重传消息 ID
const msgTransmit uint32 = 1

// ============================================================================
//                              Manager 实现
// ============================================================================

// Manager STUN 事务管理器
//
// 持有在途事务并驱动重传。发出的报文字节经 send 回调写出。
type Manager struct {
	loop *eventloop.Loop
	send func(data []byte)

	requests map[[stun.TransactionIDSize]byte]*pending
}

// pending 一个在途事务
type pending struct {
	req Request
	msg *stun.Message
}

// NewManager 创建事务管理器
//
// send 在事件循环线程上被调用，收到的是完整的 STUN 报文字节。
func NewManager(loop *eventloop.Loop, send func(data []byte)) *Manager {
	return &Manager{
		loop:     loop,
		send:     send,
		requests: make(map[[stun.TransactionIDSize]byte]*pending),
	}
}

// Send 提交事务并立即开始发送
func (m *Manager) Send(req Request) error {
	return m.SendDelayed(req, 0)
}

// SendDelayed 提交事务，首次发送延迟 delay
//
// Manager 接管事务的生命周期：事务在收到响应、错误响应
// 或重传耗尽后移除。
func (m *Manager) SendDelayed(req Request, delay time.Duration) error {
	msg := stun.New()
	msg.TransactionID = stun.NewTransactionID()
	msg.WriteHeader()
	if err := req.Prepare(msg); err != nil {
		return err
	}
	m.requests[msg.TransactionID] = &pending{req: req, msg: msg}
	m.loop.PostDelayed(delay, m, msgTransmit, msg.TransactionID)
	return nil
}

// CheckResponse 把 STUN 响应派发给匹配的在途事务
//
// 返回 true 表示响应已被某个事务消费，调用方不得再次分拣。
func (m *Manager) CheckResponse(msg *stun.Message) bool {
	p, ok := m.requests[msg.TransactionID]
	if !ok {
		return false
	}

	switch msg.Type.Class {
	case stun.ClassSuccessResponse:
		delete(m.requests, msg.TransactionID)
		p.req.OnResponse(msg)
	case stun.ClassErrorResponse:
		delete(m.requests, msg.TransactionID)
		p.req.OnErrorResponse(msg)
	default:
		logger.Warn("事务收到非响应报文", "type", msg.Type)
		return false
	}
	return true
}

// Clear 丢弃全部在途事务并清除重传消息
func (m *Manager) Clear() {
	m.loop.Clear(m)
	m.requests = make(map[[stun.TransactionIDSize]byte]*pending)
}

// OnLoopMessage 重传定时器回调
func (m *Manager) OnLoopMessage(lm *eventloop.Message) {
	id, ok := lm.Data.([stun.TransactionIDSize]byte)
	if !ok {
		return
	}
	p, ok := m.requests[id]
	if !ok {
		// 事务已在响应到达时移除，这是残留的重传消息
		return
	}

	if p.req.TimedOut() {
		delete(m.requests, id)
		p.req.OnTimeout()
		return
	}

	m.send(p.msg.Raw)
	m.loop.PostDelayed(p.req.NextDelay(), m, msgTransmit, id)
}
