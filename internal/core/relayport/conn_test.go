package relayport

import (
	"net/netip"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-ice/internal/core/eventloop"
	"github.com/dep2p/go-ice/pkg/lib/gturn"
)

// TestBestConnection 测试协议偏好比较
func TestBestConnection(t *testing.T) {
	loop := eventloop.New(clock.NewMock())

	udpConn := newRelayConnection(testServerUDP, &fakeSocket{}, loop)
	sslConn := newRelayConnection(testServerSSLTCP, &fakeSocket{}, loop)

	// UDP 优于 SSLTCP，与参数顺序无关
	assert.Same(t, udpConn, bestConnection(udpConn, sslConn))
	assert.Same(t, udpConn, bestConnection(sslConn, udpConn))
	assert.Same(t, udpConn, bestConnection(udpConn, udpConn))

	t.Log("✅ 连接偏好按协议排序")
}

// TestRelayConnection_CheckResponse_Unknown 测试未知事务的响应不被消费
func TestRelayConnection_CheckResponse_Unknown(t *testing.T) {
	loop := eventloop.New(clock.NewMock())
	conn := newRelayConnection(testServerUDP, &fakeSocket{}, loop)

	m := gturn.NewMessage(gturn.TypeAllocateResponse)
	gturn.AddMagicCookie(m)
	assert.False(t, conn.CheckResponse(m))

	t.Log("✅ 无在途事务时响应不被消费")
}

// TestRelayConnection_Send 测试发送走服务器地址
func TestRelayConnection_Send(t *testing.T) {
	loop := eventloop.New(clock.NewMock())
	sock := &fakeSocket{}
	conn := newRelayConnection(testServerUDP, sock, loop)

	n, err := conn.Send([]byte("data"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, testServerUDP.Address, sock.lastSent(t).dest)

	t.Log("✅ 连接发送定向到服务器端点")
}

// TestAllocateRequest_NextDelay 测试重传退避序列
func TestAllocateRequest_NextDelay(t *testing.T) {
	clk := clock.NewMock()
	loop := eventloop.New(clk)
	port, err := New(Config{
		Username: "u",
		IP:       netip.MustParseAddr("10.0.0.1"),
	}, loop, newFakeFactory())
	require.NoError(t, err)

	entry := newRelayEntry(port, netip.AddrPort{})
	conn := newRelayConnection(testServerUDP, &fakeSocket{}, loop)
	req := newAllocateRequest(entry, conn)

	want := []time.Duration{
		200 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
	}
	for i, d := range want {
		require.False(t, req.TimedOut(), "第 %d 次重传前不应超时", i+1)
		assert.Equal(t, d, req.NextDelay())
	}
	assert.True(t, req.TimedOut())

	t.Log("✅ 退避序列 200/200/400/800/1600 后置超时")
}
