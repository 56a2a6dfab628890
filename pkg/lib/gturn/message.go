package gturn

import (
	"errors"

	"github.com/pion/stun"
)

// ============================================================================
//                              报文类型
// ============================================================================

// 旧式 TURN 扩展的报文类型（线上取值与 libjingle 一致）
var (
	// TypeAllocateRequest ALLOCATE 请求
	TypeAllocateRequest = typeFromValue(0x0002)
	// TypeAllocateResponse ALLOCATE 成功响应
	TypeAllocateResponse = typeFromValue(0x0102)
	// TypeAllocateErrorResponse ALLOCATE 错误响应
	TypeAllocateErrorResponse = typeFromValue(0x0112)
	// TypeSendRequest SEND 请求
	TypeSendRequest = typeFromValue(0x0004)
	// TypeSendResponse SEND 成功响应
	TypeSendResponse = typeFromValue(0x0104)
	// TypeSendErrorResponse SEND 错误响应
	TypeSendErrorResponse = typeFromValue(0x0114)
	// TypeDataIndication DATA 指示
	TypeDataIndication = typeFromValue(0x0115)
)

// typeFromValue 由线上取值还原报文类型
func typeFromValue(v uint16) stun.MessageType {
	var t stun.MessageType
	t.ReadValue(v)
	return t
}

// ============================================================================
//                              属性常量
// ============================================================================

// 旧式 TURN 扩展的属性类型
const (
	// AttrMappedAddress 服务器分配的公网转发地址
	AttrMappedAddress stun.AttrType = 0x0001
	// AttrUsername 用户名片段
	AttrUsername stun.AttrType = 0x0006
	// AttrMessageIntegrity 报文完整性（本实现不计算，见 DESIGN.md）
	AttrMessageIntegrity stun.AttrType = 0x0008
	// AttrErrorCode 错误码
	AttrErrorCode stun.AttrType = 0x0009
	// AttrLifetime 分配存活时间
	AttrLifetime stun.AttrType = 0x000d
	// AttrMagicCookie TURN 魔数
	AttrMagicCookie stun.AttrType = 0x000f
	// AttrBandwidth 带宽限制
	AttrBandwidth stun.AttrType = 0x0010
	// AttrDestinationAddress SEND 请求的目的地址
	AttrDestinationAddress stun.AttrType = 0x0011
	// AttrSourceAddress2 DATA 指示的来源地址
	AttrSourceAddress2 stun.AttrType = 0x0012
	// AttrData 用户数据
	AttrData stun.AttrType = 0x0013
	// AttrOptions 选项位图
	AttrOptions stun.AttrType = 0x8001
)

// OptionLock OPTIONS 属性中的锁定位
//
// SEND 请求携带该位表示请求服务器把分配锁定到目的地址；
// SEND 响应携带该位表示锁定已生效，之后双向数据都可免 STUN 包裹。
const OptionLock uint32 = 0x1

// ============================================================================
//                              报文构造与解析
// ============================================================================

var (
	// ErrNotSTUN 数据无法解析为 STUN 报文
	ErrNotSTUN = errors.New("gturn: packet is not a stun message")
)

// NewMessage 创建指定类型的报文，事务 ID 随机生成
func NewMessage(t stun.MessageType) *stun.Message {
	m := stun.New()
	m.SetType(t)
	m.TransactionID = stun.NewTransactionID()
	m.WriteHeader()
	return m
}

// Parse 把数据报解析为 STUN 报文
func Parse(data []byte) (*stun.Message, error) {
	m := &stun.Message{Raw: append([]byte(nil), data...)}
	if err := m.Decode(); err != nil {
		return nil, errors.Join(ErrNotSTUN, err)
	}
	return m, nil
}
