package gturn

import (
	"bytes"
	"net/netip"
	"testing"

	"github.com/pion/stun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHasMagicCookie 测试魔数辨识
func TestHasMagicCookie(t *testing.T) {
	t.Run("SEND 请求携带魔数", func(t *testing.T) {
		m := NewMessage(TypeSendRequest)
		AddMagicCookie(m)
		AddBytes(m, AttrData, []byte("hello"))
		assert.True(t, HasMagicCookie(m.Raw))
	})

	t.Run("偏移处字节不符", func(t *testing.T) {
		data := bytes.Repeat([]byte{0xab}, 64)
		assert.False(t, HasMagicCookie(data))
	})

	t.Run("长度不足", func(t *testing.T) {
		assert.False(t, HasMagicCookie(nil))
		assert.False(t, HasMagicCookie(make([]byte, MagicCookieOffset)))
		assert.False(t, HasMagicCookie(make([]byte, MagicCookieOffset+3)))
	})

	t.Run("恰好够长且字节相符", func(t *testing.T) {
		data := make([]byte, MagicCookieOffset+len(MagicCookieValue))
		copy(data[MagicCookieOffset:], MagicCookieValue[:])
		assert.True(t, HasMagicCookie(data))
	})

	t.Log("✅ 魔数辨识按偏移 24 判定")
}

// TestMagicCookieFirstAttribute 测试魔数恰好落在偏移 24
func TestMagicCookieFirstAttribute(t *testing.T) {
	m := NewMessage(TypeSendRequest)
	AddMagicCookie(m)

	require.GreaterOrEqual(t, len(m.Raw), MagicCookieOffset+4)
	assert.Equal(t, MagicCookieValue[:], m.Raw[MagicCookieOffset:MagicCookieOffset+4])

	t.Log("✅ 第一个属性的取值落在偏移 24")
}

// TestAddress_RoundTrip 测试地址属性编解码
func TestAddress_RoundTrip(t *testing.T) {
	addr := netip.MustParseAddrPort("9.9.9.9:1111")

	m := NewMessage(TypeSendRequest)
	require.NoError(t, AddAddress(m, AttrDestinationAddress, addr))

	decoded, err := Parse(m.Raw)
	require.NoError(t, err)

	got, err := GetAddress(decoded, AttrDestinationAddress)
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	t.Log("✅ 地址属性位精确往返")
}

// TestAddress_IPv6Rejected 测试 IPv6 地址被拒
func TestAddress_IPv6Rejected(t *testing.T) {
	m := NewMessage(TypeSendRequest)
	err := AddAddress(m, AttrDestinationAddress, netip.MustParseAddrPort("[2001:db8::1]:80"))
	require.ErrorIs(t, err, ErrNotIPv4)

	// 地址族为 2 的入站属性同样被拒
	m2 := NewMessage(TypeDataIndication)
	m2.Add(AttrSourceAddress2, []byte{0, 2, 0, 80, 1, 2, 3, 4})
	_, err = GetAddress(m2, AttrSourceAddress2)
	require.ErrorIs(t, err, ErrNotIPv4)

	t.Log("✅ 仅支持 IPv4 地址族")
}

// TestAddress_Malformed 测试畸形地址属性
func TestAddress_Malformed(t *testing.T) {
	m := NewMessage(TypeDataIndication)
	m.Add(AttrSourceAddress2, []byte{0, 1, 2})

	_, err := GetAddress(m, AttrSourceAddress2)
	require.ErrorIs(t, err, ErrBadAddressValue)

	// 属性缺失
	m2 := NewMessage(TypeDataIndication)
	_, err = GetAddress(m2, AttrSourceAddress2)
	require.ErrorIs(t, err, stun.ErrAttributeNotFound)

	t.Log("✅ 畸形与缺失的地址属性报错")
}

// TestUint32_RoundTrip 测试整数属性编解码
func TestUint32_RoundTrip(t *testing.T) {
	m := NewMessage(TypeSendResponse)
	AddUint32(m, AttrOptions, OptionLock)

	decoded, err := Parse(m.Raw)
	require.NoError(t, err)

	v, err := GetUint32(decoded, AttrOptions)
	require.NoError(t, err)
	assert.Equal(t, OptionLock, v)

	t.Log("✅ 整数属性往返")
}

// TestSendRequest_FullRoundTrip 测试完整 SEND 请求往返
func TestSendRequest_FullRoundTrip(t *testing.T) {
	dest := netip.MustParseAddrPort("9.9.9.9:1111")

	m := NewMessage(TypeSendRequest)
	AddMagicCookie(m)
	AddBytes(m, AttrUsername, []byte("ufrag0001"))
	require.NoError(t, AddAddress(m, AttrDestinationAddress, dest))
	AddUint32(m, AttrOptions, OptionLock)
	AddBytes(m, AttrData, []byte("hello"))

	require.True(t, HasMagicCookie(m.Raw))

	decoded, err := Parse(m.Raw)
	require.NoError(t, err)
	assert.Equal(t, TypeSendRequest, decoded.Type)

	username, err := GetBytes(decoded, AttrUsername)
	require.NoError(t, err)
	assert.Equal(t, []byte("ufrag0001"), username)

	got, err := GetAddress(decoded, AttrDestinationAddress)
	require.NoError(t, err)
	assert.Equal(t, dest, got)

	options, err := GetUint32(decoded, AttrOptions)
	require.NoError(t, err)
	assert.Equal(t, OptionLock, options)

	payload, err := GetBytes(decoded, AttrData)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), payload)

	t.Log("✅ SEND 请求全属性往返")
}
