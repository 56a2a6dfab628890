// Package transport 定义套接字层的协作接口
//
// 中继端口不直接创建套接字，而是通过 SocketFactory 抽象获取
// AsyncPacketSocket。这样事件驱动的套接字实现（真实网络、代理隧道、
// 测试用的假套接字）可以互换。
//
// 所有回调都必须在拥有端口的事件循环线程上同步交付，
// 接口实现不得引入额外的并发。
package transport

import (
	"net/netip"

	"github.com/dep2p/go-ice/pkg/types"
)

// ============================================================================
//                              AsyncPacketSocket
// ============================================================================

// AsyncPacketSocket 异步报文套接字
//
// 发送立即返回（由套接字层缓冲）；接收、连接建立、关闭
// 通过注册的回调交付。
type AsyncPacketSocket interface {
	// SendTo 向指定地址发送数据，返回写入的字节数
	SendTo(data []byte, addr netip.AddrPort) (int, error)

	// LocalAddr 返回本地绑定地址
	LocalAddr() netip.AddrPort

	// RemoteAddr 返回对端地址（UDP 未连接套接字返回零值）
	RemoteAddr() netip.AddrPort

	// SetOption 设置套接字选项
	SetOption(opt types.SocketOption, value int) error

	// Error 返回套接字最近一次的错误
	Error() error

	// Close 关闭套接字
	Close() error

	// OnReadPacket 注册收包回调
	OnReadPacket(fn func(s AsyncPacketSocket, data []byte, remote netip.AddrPort))

	// OnConnect 注册连接建立回调（仅 TCP/SSLTCP）
	OnConnect(fn func(s AsyncPacketSocket))

	// OnClose 注册关闭回调
	OnClose(fn func(s AsyncPacketSocket, err error))
}

// ============================================================================
//                              SocketFactory
// ============================================================================

// SocketFactory 套接字工厂
type SocketFactory interface {
	// NewUDPSocket 创建未连接的 UDP 套接字
	//
	// 绑定到 bind 地址上 [minPort, maxPort] 范围内的任一端口；
	// minPort 与 maxPort 同为 0 表示不限制。
	NewUDPSocket(bind netip.Addr, minPort, maxPort uint16) (AsyncPacketSocket, error)

	// NewClientTCPSocket 创建客户端 TCP 套接字
	//
	// 经配置的代理连接 remote；useTLS 为真时套上伪 TLS 封装。
	// 连接建立是异步的，完成后触发 OnConnect 回调。
	NewClientTCPSocket(bind netip.Addr, remote netip.AddrPort,
		proxy types.ProxyInfo, userAgent string, useTLS bool) (AsyncPacketSocket, error)
}
