package gturn

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"net/netip"

	"github.com/pion/stun"
)

// ============================================================================
//                              魔数
// ============================================================================

// MagicCookieValue TURN 魔数的固定取值
var MagicCookieValue = [4]byte{0x72, 0xC6, 0x4B, 0xC6}

// MagicCookieOffset 魔数在数据报中的固定偏移
//
// STUN 头 20 字节 + 第一个属性（MAGIC-COOKIE）的 4 字节属性头。
const MagicCookieOffset = 24

// HasMagicCookie 判断数据报偏移 24 处是否为 TURN 魔数
//
// 比较使用常数时间实现。长度不足的数据报一律视为非 STUN。
func HasMagicCookie(data []byte) bool {
	if len(data) < MagicCookieOffset+len(MagicCookieValue) {
		return false
	}
	return subtle.ConstantTimeCompare(
		data[MagicCookieOffset:MagicCookieOffset+len(MagicCookieValue)],
		MagicCookieValue[:]) == 1
}

// AddMagicCookie 把 MAGIC-COOKIE 属性追加到报文
//
// 必须是报文的第一个属性，否则 HasMagicCookie 的偏移辨识会失效。
func AddMagicCookie(m *stun.Message) {
	m.Add(AttrMagicCookie, MagicCookieValue[:])
}

// ============================================================================
//                              地址属性
// ============================================================================

// 地址族取值（旧式 STUN 地址属性）
const (
	familyIPv4 byte = 1
	familyIPv6 byte = 2
)

var (
	// ErrNotIPv4 地址不是 IPv4
	ErrNotIPv4 = errors.New("gturn: address family is not ipv4")
	// ErrBadAddressValue 地址属性取值格式错误
	ErrBadAddressValue = errors.New("gturn: malformed address attribute")
)

// AddAddress 把地址属性追加到报文
//
// 取值布局：1 字节保留 + 1 字节地址族 + 2 字节端口 + 4 字节 IPv4 地址。
// 仅支持 IPv4，IPv6 地址返回 ErrNotIPv4。
func AddAddress(m *stun.Message, t stun.AttrType, addr netip.AddrPort) error {
	ip := addr.Addr().Unmap()
	if !ip.Is4() {
		return ErrNotIPv4
	}
	v := make([]byte, 8)
	v[1] = familyIPv4
	binary.BigEndian.PutUint16(v[2:4], addr.Port())
	a4 := ip.As4()
	copy(v[4:8], a4[:])
	m.Add(t, v)
	return nil
}

// GetAddress 从报文中读取地址属性
//
// 属性缺失返回 stun.ErrAttributeNotFound；
// 地址族不是 IPv4 返回 ErrNotIPv4。
func GetAddress(m *stun.Message, t stun.AttrType) (netip.AddrPort, error) {
	v, err := m.Get(t)
	if err != nil {
		return netip.AddrPort{}, err
	}
	if len(v) < 8 {
		return netip.AddrPort{}, ErrBadAddressValue
	}
	if v[1] != familyIPv4 {
		return netip.AddrPort{}, ErrNotIPv4
	}
	port := binary.BigEndian.Uint16(v[2:4])
	ip := netip.AddrFrom4([4]byte(v[4:8]))
	return netip.AddrPortFrom(ip, port), nil
}

// ============================================================================
//                              整数与字节串属性
// ============================================================================

// AddUint32 把 32 位整数属性追加到报文
func AddUint32(m *stun.Message, t stun.AttrType, v uint32) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	m.Add(t, b)
}

// GetUint32 从报文中读取 32 位整数属性
func GetUint32(m *stun.Message, t stun.AttrType) (uint32, error) {
	b, err := m.Get(t)
	if err != nil {
		return 0, err
	}
	if len(b) != 4 {
		return 0, errors.New("gturn: malformed uint32 attribute")
	}
	return binary.BigEndian.Uint32(b), nil
}

// AddBytes 把字节串属性追加到报文
func AddBytes(m *stun.Message, t stun.AttrType, v []byte) {
	m.Add(t, v)
}

// GetBytes 从报文中读取字节串属性
func GetBytes(m *stun.Message, t stun.AttrType) ([]byte, error) {
	return m.Get(t)
}
