package types

import (
	"fmt"
	"net/netip"
)

// ============================================================================
//                              ProtocolAddress
// ============================================================================

// ProtocolAddress 一个 (传输地址, 协议) 组合
//
// 构造后不可变。中继端口用它描述服务器候选地址和对外发布的中继地址。
type ProtocolAddress struct {
	Address netip.AddrPort
	Proto   ProtocolType
}

// NewProtocolAddress 创建 ProtocolAddress
func NewProtocolAddress(addr netip.AddrPort, proto ProtocolType) ProtocolAddress {
	return ProtocolAddress{Address: addr, Proto: proto}
}

// Equal 比较两个 ProtocolAddress 是否相等
//
// 地址与协议都相同才算相等。
func (pa ProtocolAddress) Equal(other ProtocolAddress) bool {
	return pa.Address == other.Address && pa.Proto == other.Proto
}

// String 返回 "proto @ host:port" 形式的字符串
func (pa ProtocolAddress) String() string {
	return fmt.Sprintf("%s @ %s", pa.Proto, pa.Address)
}

// ============================================================================
//                              ProxyInfo
// ============================================================================

// ProxyInfo 出站代理配置
//
// 由上层（节点配置）提供，中继端口只读。
type ProxyInfo struct {
	Type     ProxyType
	Address  netip.AddrPort
	Username string
	Password string
}

// String 返回代理配置的字符串表示（不含凭据）
func (p ProxyInfo) String() string {
	if p.Type == ProxyNone {
		return "none"
	}
	return fmt.Sprintf("%s @ %s", p.Type, p.Address)
}
