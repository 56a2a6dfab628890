package relayport

import (
	"net/netip"

	"github.com/google/uuid"

	"github.com/dep2p/go-ice/internal/core/eventloop"
	relayif "github.com/dep2p/go-ice/pkg/interfaces/relay"
	transportif "github.com/dep2p/go-ice/pkg/interfaces/transport"
	"github.com/dep2p/go-ice/pkg/types"
)

// ============================================================================
//                              basePort - ICE 端口公共部分
// ============================================================================

// basePort ICE 端口契约中与中继无关的公共部分
//
// 候选发布、连接表、地址族匹配、身份信息、三个端口信号。
// 中继端口内嵌本结构。
type basePort struct {
	loop    *eventloop.Loop
	factory transportif.SocketFactory

	portType   string
	preference float64

	ip        netip.Addr
	minPort   uint16
	maxPort   uint16
	username  string
	password  string
	userAgent string
	proxy     types.ProxyInfo

	relatedAddr netip.AddrPort
	candidates  []types.Candidate
	connections map[netip.AddrPort]*ProxyConnection

	addressReadyFns   []func(relayif.Port)
	connectFailureFns []func(types.ProtocolAddress)
	softTimeoutFns    []func(types.ProtocolAddress)
}

// Type 返回端口类型
func (p *basePort) Type() string {
	return p.portType
}

// Candidates 返回已发布候选的副本
func (p *basePort) Candidates() []types.Candidate {
	out := make([]types.Candidate, len(p.candidates))
	copy(out, p.candidates)
	return out
}

// addAddress 发布一个候选
func (p *basePort) addAddress(addr, related netip.AddrPort, protoName, typ string) {
	p.candidates = append(p.candidates, types.Candidate{
		ID:             uuid.NewString(),
		Address:        addr,
		RelatedAddress: related,
		Protocol:       protoName,
		Type:           typ,
		Preference:     p.preference,
		Username:       p.username,
	})
}

// IsCompatibleAddress 判断远端地址与本端口地址族是否一致
func (p *basePort) IsCompatibleAddress(addr netip.AddrPort) bool {
	if !addr.IsValid() {
		return false
	}
	return addr.Addr().Unmap().Is4() == p.ip.Unmap().Is4()
}

// setRelatedAddress 记录端口的关联地址（中继分配的映射地址）
func (p *basePort) setRelatedAddress(addr netip.AddrPort) {
	p.relatedAddr = addr
}

// addConnection 把连接登记到连接表
func (p *basePort) addConnection(c *ProxyConnection) {
	p.connections[c.remote.Address] = c
}

// GetConnection 按远端地址查找连接
func (p *basePort) GetConnection(addr netip.AddrPort) *ProxyConnection {
	return p.connections[addr]
}

// ============================================================================
//                              信号注册与发射
// ============================================================================

// OnAddressReady 注册地址就绪回调
func (p *basePort) OnAddressReady(fn func(relayif.Port)) {
	p.addressReadyFns = append(p.addressReadyFns, fn)
}

// OnConnectFailure 注册服务器连接失败回调
func (p *basePort) OnConnectFailure(fn func(types.ProtocolAddress)) {
	p.connectFailureFns = append(p.connectFailureFns, fn)
}

// OnSoftTimeout 注册软超时回调
func (p *basePort) OnSoftTimeout(fn func(types.ProtocolAddress)) {
	p.softTimeoutFns = append(p.softTimeoutFns, fn)
}

// signalAddressReady 同步触发地址就绪回调
func (p *basePort) signalAddressReady(port relayif.Port) {
	for _, fn := range p.addressReadyFns {
		fn(port)
	}
}

// signalConnectFailure 同步触发连接失败回调
func (p *basePort) signalConnectFailure(pa types.ProtocolAddress) {
	for _, fn := range p.connectFailureFns {
		fn(pa)
	}
}

// signalSoftTimeout 同步触发软超时回调
func (p *basePort) signalSoftTimeout(pa types.ProtocolAddress) {
	for _, fn := range p.softTimeoutFns {
		fn(pa)
	}
}
