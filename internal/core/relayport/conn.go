package relayport

import (
	"net/netip"
	"time"

	"github.com/pion/stun"

	"github.com/dep2p/go-ice/internal/core/eventloop"
	"github.com/dep2p/go-ice/internal/core/stunreq"
	transportif "github.com/dep2p/go-ice/pkg/interfaces/transport"
	"github.com/dep2p/go-ice/pkg/types"
)

// ============================================================================
//                              RelayConnection
// ============================================================================

// RelayConnection 一条到中继服务器的 (地址, 协议) 绑定
//
// 独占一个套接字，外加一个事务管理器：出站 STUN 字节直接写套接字，
// 入站 STUN 响应派发给在途事务。
type RelayConnection struct {
	socket    transportif.AsyncPacketSocket
	protoAddr types.ProtocolAddress
	reqMgr    *stunreq.Manager
}

// newRelayConnection 创建服务器连接
func newRelayConnection(pa types.ProtocolAddress, socket transportif.AsyncPacketSocket,
	loop *eventloop.Loop) *RelayConnection {
	c := &RelayConnection{
		socket:    socket,
		protoAddr: pa,
	}
	c.reqMgr = stunreq.NewManager(loop, c.onSendPacket)
	return c
}

// Socket 返回底层套接字
func (c *RelayConnection) Socket() transportif.AsyncPacketSocket {
	return c.socket
}

// ProtocolAddress 返回服务器端点
func (c *RelayConnection) ProtocolAddress() types.ProtocolAddress {
	return c.protoAddr
}

// Address 返回服务器传输地址
func (c *RelayConnection) Address() netip.AddrPort {
	return c.protoAddr.Address
}

// Protocol 返回服务器链路协议
func (c *RelayConnection) Protocol() types.ProtocolType {
	return c.protoAddr.Proto
}

// Send 向服务器发送数据
func (c *RelayConnection) Send(data []byte) (int, error) {
	return c.socket.SendTo(data, c.protoAddr.Address)
}

// SendAllocateRequest 提交一次 ALLOCATE 事务，首发延迟 delay
//
// 事务由管理器接管。
func (c *RelayConnection) SendAllocateRequest(entry *RelayEntry, delay time.Duration) {
	if err := c.reqMgr.SendDelayed(newAllocateRequest(entry, c), delay); err != nil {
		logger.Warn("提交 ALLOCATE 事务失败", "server", c.protoAddr, "error", err)
	}
}

// CheckResponse 把 STUN 响应派发给在途事务
//
// 返回 true 表示响应已被消费，调用方不得再次分拣。
func (c *RelayConnection) CheckResponse(msg *stun.Message) bool {
	return c.reqMgr.CheckResponse(msg)
}

// SetSocketOption 设置套接字选项
func (c *RelayConnection) SetSocketOption(opt types.SocketOption, value int) error {
	if c.socket == nil {
		return nil
	}
	return c.socket.SetOption(opt, value)
}

// Error 返回套接字最近一次的错误
func (c *RelayConnection) Error() error {
	return c.socket.Error()
}

// Close 清除在途事务并关闭套接字
//
// 被替换的连接经 Loop.Dispose 延迟到当前一轮消息处理后调用。
func (c *RelayConnection) Close() error {
	c.reqMgr.Clear()
	return c.socket.Close()
}

// onSendPacket 事务管理器的发包回调
//
// 这些字节已经是发给服务器的 STUN，不需要再包裹。
// 发送失败只记录日志，事务会自行超时。
func (c *RelayConnection) onSendPacket(data []byte) {
	if _, err := c.socket.SendTo(data, c.protoAddr.Address); err != nil {
		logger.Debug("事务发包失败", "server", c.protoAddr.Address, "error", err)
	}
}

// bestConnection 返回两条连接中更优的一条
//
// 按协议偏好比较：UDP 优于 TCP 优于 SSLTCP。
func bestConnection(a, b *RelayConnection) *RelayConnection {
	if a.Protocol() <= b.Protocol() {
		return a
	}
	return b
}
