// Package relay 定义中继端口的公开接口
//
// 中继端口是 ICE 连接体系中的保底传输候选：当两端无法直连时，
// 各自通过中继服务器申请一个公网转发地址，媒体/数据经服务器转发。
//
// 接口与实现分离：本包只有接口定义，实现位于 internal/core/relayport。
package relay

import (
	"net/netip"

	"github.com/dep2p/go-ice/pkg/types"
)

// ============================================================================
//                              Connection 接口
// ============================================================================

// Connection 本端口与一个远端候选之间的连接
type Connection interface {
	// RemoteCandidate 返回远端候选
	RemoteCandidate() types.Candidate

	// Send 向远端发送用户数据，返回用户数据字节数
	Send(data []byte) (int, error)

	// OnPacket 注册收包回调（事件循环线程同步交付）
	OnPacket(fn func(data []byte))
}

// ============================================================================
//                              Port 接口
// ============================================================================

// Port 中继端口
//
// 一个端口对应一次中继分配的本地侧：负责分配生命周期、
// 与服务器的协议交互、入站流量分拣和出站负载包裹。
type Port interface {
	// Type 返回端口类型（中继端口为 types.CandidateRelay）
	Type() string

	// PrepareAddress 发起服务器分配流程
	//
	// 成功后端口发布中继候选并触发地址就绪回调。
	PrepareAddress()

	// Candidates 返回已发布的候选
	Candidates() []types.Candidate

	// CreateConnection 为远端候选创建连接
	//
	// 不满足创建条件（协议不符、中继对中继回环、地址族不符）时返回 nil。
	CreateConnection(remote types.Candidate, origin types.CandidateOrigin) Connection

	// SendTo 向指定远端地址发送数据
	//
	// payload 为真表示用户负载（允许为新地址建立通道）。
	// 返回用户数据字节数；没有可用通道时返回 ErrWouldBlock 类错误。
	SendTo(data []byte, addr netip.AddrPort, payload bool) (int, error)

	// SetOption 在所有通道的套接字上设置选项，并记录下来
	// 供之后创建的套接字重放
	SetOption(opt types.SocketOption, value int) error

	// Error 返回端口最近一次发送错误
	Error() error

	// OnAddressReady 注册地址就绪回调（端口生命周期内至多触发一次）
	OnAddressReady(fn func(Port))

	// OnConnectFailure 注册服务器连接失败回调
	OnConnectFailure(fn func(types.ProtocolAddress))

	// OnSoftTimeout 注册软超时回调（观测用，随后自动回退到下一服务器）
	OnSoftTimeout(fn func(types.ProtocolAddress))

	// Close 关闭端口并释放所有通道
	Close() error
}
