package types

import "net/netip"

// ============================================================================
//                              Candidate - ICE 候选
// ============================================================================

// 候选类型
const (
	// CandidateLocal 本地候选
	CandidateLocal = "local"
	// CandidateSTUN 服务器反射候选
	CandidateSTUN = "stun"
	// CandidateRelay 中继候选
	CandidateRelay = "relay"
)

// 候选类型偏好（越大越优先）
const (
	// PreferenceLocal 本地候选偏好
	PreferenceLocal = 1.0
	// PreferenceSTUN 服务器反射候选偏好
	PreferenceSTUN = 0.9
	// PreferenceRelay 中继候选偏好
	PreferenceRelay = 0.5
)

// Candidate ICE 传输候选
//
// 端口在地址就绪后发布候选；连接检查阶段本地候选与远端候选配对。
type Candidate struct {
	// ID 候选唯一标识
	ID string
	// Address 传输地址
	Address netip.AddrPort
	// RelatedAddress 关联地址（中继候选为服务器分配的映射地址）
	RelatedAddress netip.AddrPort
	// Protocol 传输协议名："udp"、"tcp"、"ssltcp"
	Protocol string
	// Type 候选类型：CandidateLocal / CandidateSTUN / CandidateRelay
	Type string
	// Preference 类型偏好
	Preference float64
	// Username 用户名片段
	Username string
}
