package relayport

import (
	"github.com/dep2p/go-ice/pkg/types"
)

// ============================================================================
//                              ProxyConnection
// ============================================================================

// ProxyConnection 经中继转发的连接
//
// 出站直接委托给端口的 SendTo，由端口按远端地址选择通道；
// 入站由端口分拣后经 handleRead 交付。
type ProxyConnection struct {
	port       *RelayPort
	localIndex int
	remote     types.Candidate

	onPacketFns []func(data []byte)
}

// newProxyConnection 创建连接
func newProxyConnection(port *RelayPort, localIndex int, remote types.Candidate) *ProxyConnection {
	return &ProxyConnection{
		port:       port,
		localIndex: localIndex,
		remote:     remote,
	}
}

// RemoteCandidate 返回远端候选
func (c *ProxyConnection) RemoteCandidate() types.Candidate {
	return c.remote
}

// LocalCandidateIndex 返回配对的本地候选下标
func (c *ProxyConnection) LocalCandidateIndex() int {
	return c.localIndex
}

// Send 向远端发送用户数据
func (c *ProxyConnection) Send(data []byte) (int, error) {
	return c.port.SendTo(data, c.remote.Address, true)
}

// OnPacket 注册收包回调
func (c *ProxyConnection) OnPacket(fn func(data []byte)) {
	c.onPacketFns = append(c.onPacketFns, fn)
}

// handleRead 端口分拣出属于本连接的入站数据后调用
func (c *ProxyConnection) handleRead(data []byte) {
	for _, fn := range c.onPacketFns {
		fn(data)
	}
}
