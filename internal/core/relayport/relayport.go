package relayport

import (
	"net/netip"

	"github.com/dep2p/go-ice/internal/core/eventloop"
	"github.com/dep2p/go-ice/pkg/lib/gturn"
	relayif "github.com/dep2p/go-ice/pkg/interfaces/relay"
	transportif "github.com/dep2p/go-ice/pkg/interfaces/transport"
	"github.com/dep2p/go-ice/pkg/types"
)

// ============================================================================
//                              RelayPort
// ============================================================================

// RelayPort 中继端口
//
// 协调一组通道（每个不同远端地址一条），共享同一张有序的
// 服务器候选表。实现 pkg/interfaces/relay.Port。
type RelayPort struct {
	basePort

	serverAddrs   []types.ProtocolAddress
	externalAddrs []types.ProtocolAddress
	entries       []*RelayEntry
	options       []types.OptionValue

	ready   bool
	lastErr error
}

// 确保实现接口
var _ relayif.Port = (*RelayPort)(nil)

// New 创建中继端口
//
// 创建即带一条未认领目的地址的引导通道；配置中的服务器地址
// 按 AddServerAddress 的规则依次插入。
func New(cfg Config, loop *eventloop.Loop, factory transportif.SocketFactory) (*RelayPort, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &RelayPort{
		basePort: basePort{
			loop:        loop,
			factory:     factory,
			portType:    types.CandidateRelay,
			preference:  types.PreferenceRelay,
			ip:          cfg.IP,
			minPort:     cfg.MinPort,
			maxPort:     cfg.MaxPort,
			username:    cfg.Username,
			password:    cfg.Password,
			userAgent:   cfg.UserAgent,
			proxy:       cfg.Proxy,
			connections: make(map[netip.AddrPort]*ProxyConnection),
		},
	}
	p.entries = append(p.entries, newRelayEntry(p, netip.AddrPort{}))

	for _, sa := range cfg.Servers {
		p.AddServerAddress(sa)
	}
	return p, nil
}

// ============================================================================
//                              服务器与外部地址
// ============================================================================

// AddServerAddress 插入一个服务器候选
//
// HTTP 代理通常只放行 443，所以代理类型为 HTTPS 或未知时
// 把 SSLTCP 候选提到最前，其余追加到末尾。
func (p *RelayPort) AddServerAddress(pa types.ProtocolAddress) {
	if pa.Proto == types.ProtoSSLTCP &&
		(p.proxy.Type == types.ProxyHTTPS || p.proxy.Type == types.ProxyUnknown) {
		p.serverAddrs = append([]types.ProtocolAddress{pa}, p.serverAddrs...)
	} else {
		p.serverAddrs = append(p.serverAddrs, pa)
	}
}

// ServerAddress 返回候选表中第 index 个服务器地址
func (p *RelayPort) ServerAddress(index int) (types.ProtocolAddress, bool) {
	if index >= 0 && index < len(p.serverAddrs) {
		return p.serverAddrs[index], true
	}
	return types.ProtocolAddress{}, false
}

// AddExternalAddress 登记一个对外发布的中继地址
//
// 按 (地址, 协议) 去重，重复登记是幂等的。
func (p *RelayPort) AddExternalAddress(pa types.ProtocolAddress) {
	for _, ea := range p.externalAddrs {
		if ea.Equal(pa) {
			logger.Info("重复的中继地址", "address", pa)
			return
		}
	}
	p.externalAddrs = append(p.externalAddrs, pa)
}

// ExternalAddresses 返回已登记的对外中继地址
func (p *RelayPort) ExternalAddresses() []types.ProtocolAddress {
	out := make([]types.ProtocolAddress, len(p.externalAddrs))
	copy(out, p.externalAddrs)
	return out
}

// Ready 返回端口是否已发布候选
func (p *RelayPort) Ready() bool {
	return p.ready
}

// setReady 发布全部外部地址为中继候选并触发地址就绪回调
//
// 端口生命周期内只发布一次，后续分配成功不再重复触发。
func (p *RelayPort) setReady() {
	if p.ready {
		return
	}
	for _, ea := range p.externalAddrs {
		p.addAddress(ea.Address, ea.Address, ea.Proto.String(), p.portType)
	}
	p.ready = true
	p.signalAddressReady(p)
}

// ============================================================================
//                              ICE 端口契约
// ============================================================================

// PrepareAddress 在引导通道上发起分配
//
// 分配完成后服务器的映射地址会成为本端口的候选地址。
func (p *RelayPort) PrepareAddress() {
	if len(p.entries) != 1 {
		logger.Error("PrepareAddress 只应在初始状态调用",
			"entries", len(p.entries))
	}
	p.entries[0].Connect()
	p.ready = false
}

// CreateConnection 为远端候选创建连接
//
// 拒绝条件：非 UDP 且非本端口入站来源；中继对中继回环；地址族不符。
func (p *RelayPort) CreateConnection(remote types.Candidate,
	origin types.CandidateOrigin) relayif.Connection {
	// 只为本端口上入站的远端建立非 UDP 连接
	if remote.Protocol != "udp" && origin != types.OriginThisPort {
		return nil
	}

	// 中继上不支持回环
	if remote.Type == p.Type() {
		return nil
	}

	if !p.IsCompatibleAddress(remote.Address) {
		return nil
	}

	index := 0
	for i, local := range p.candidates {
		if local.Protocol == remote.Protocol {
			index = i
			break
		}
	}

	conn := newProxyConnection(p, index, remote)
	p.addConnection(conn)
	return conn
}

// SendTo 向指定远端地址发送数据
//
// 首先找认领了该地址的通道；找不到且是用户负载时，先尝试认领
// 未使用的引导通道，再不行就新建一条。选中的通道未完成分配时
// 回退到首条通道；首条也未完成则返回 ErrWouldBlock。
func (p *RelayPort) SendTo(data []byte, addr netip.AddrPort, payload bool) (int, error) {
	var entry *RelayEntry

	for _, en := range p.entries {
		if !en.Address().IsValid() && payload {
			entry = en
			entry.setAddress(addr)
			break
		} else if en.Address() == addr {
			entry = en
			break
		}
	}

	// 新建的通道要等分配完成才真正可用
	if entry == nil && payload {
		entry = newRelayEntry(p, addr)
		entry.setServerIndex(p.entries[0].ServerIndex())
		entry.Connect()
		p.entries = append(p.entries, entry)
	}

	if entry == nil || !entry.Connected() {
		entry = p.entries[0]
		if !entry.Connected() {
			p.lastErr = ErrWouldBlock
			return 0, ErrWouldBlock
		}
	}

	if _, err := entry.SendTo(data, addr); err != nil {
		if sockErr := entry.Error(); sockErr != nil {
			p.lastErr = sockErr
		} else {
			p.lastErr = err
		}
		return 0, p.lastErr
	}

	// 调用方关心的是用户数据字节数，而不是线上报文大小
	return len(data), nil
}

// SetOption 在所有通道上设置套接字选项并记录下来
//
// 记录的选项会在之后每个新建套接字上重放。
func (p *RelayPort) SetOption(opt types.SocketOption, value int) error {
	var result error
	for _, en := range p.entries {
		if err := en.SetSocketOption(opt, value); err != nil {
			result = err
			p.lastErr = en.Error()
		}
	}
	p.options = append(p.options, types.OptionValue{Opt: opt, Value: value})
	return result
}

// Error 返回端口最近一次发送错误
func (p *RelayPort) Error() error {
	return p.lastErr
}

// HasMagicCookie 判断数据报偏移 24 处是否为 TURN 魔数
func (p *RelayPort) HasMagicCookie(data []byte) bool {
	return gturn.HasMagicCookie(data)
}

// onReadPacket 通道拆包后的入站交付
//
// 有匹配远端地址的连接就交给它；没有则丢弃——绑定检查等
// 通用 STUN 处理属于上层端口基础设施。
func (p *RelayPort) onReadPacket(data []byte, remote netip.AddrPort, proto types.ProtocolType) {
	if conn := p.GetConnection(remote); conn != nil {
		conn.handleRead(data)
		return
	}
	logger.Debug("入站数据没有匹配的连接", "remote", remote, "proto", proto)
}

// Close 关闭端口并释放所有通道
func (p *RelayPort) Close() error {
	for _, en := range p.entries {
		en.close()
	}
	return nil
}
