package relayport

import (
	"net/netip"
	"testing"

	"github.com/pion/stun"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-ice/pkg/lib/gturn"
	transportif "github.com/dep2p/go-ice/pkg/interfaces/transport"
	"github.com/dep2p/go-ice/pkg/types"
)

// ============================================================================
//                              假套接字
// ============================================================================

// sentPacket 一次出站发送的记录
type sentPacket struct {
	data []byte
	dest netip.AddrPort
}

// fakeSocket 测试用异步套接字
//
// 发送只记录不上网；入站由测试通过 deliver 注入，
// 回调同步执行（测试线程即"事件循环线程"）。
type fakeSocket struct {
	local   netip.AddrPort
	remote  netip.AddrPort
	sendErr error

	sent   []sentPacket
	opts   []types.OptionValue
	closed bool

	readFn    func(transportif.AsyncPacketSocket, []byte, netip.AddrPort)
	connectFn func(transportif.AsyncPacketSocket)
	closeFn   func(transportif.AsyncPacketSocket, error)
}

var _ transportif.AsyncPacketSocket = (*fakeSocket)(nil)

func (s *fakeSocket) SendTo(data []byte, addr netip.AddrPort) (int, error) {
	if s.sendErr != nil {
		return 0, s.sendErr
	}
	s.sent = append(s.sent, sentPacket{
		data: append([]byte(nil), data...),
		dest: addr,
	})
	return len(data), nil
}

func (s *fakeSocket) LocalAddr() netip.AddrPort  { return s.local }
func (s *fakeSocket) RemoteAddr() netip.AddrPort { return s.remote }

func (s *fakeSocket) SetOption(opt types.SocketOption, value int) error {
	s.opts = append(s.opts, types.OptionValue{Opt: opt, Value: value})
	return nil
}

func (s *fakeSocket) Error() error { return s.sendErr }
func (s *fakeSocket) Close() error { s.closed = true; return nil }

func (s *fakeSocket) OnReadPacket(fn func(transportif.AsyncPacketSocket, []byte, netip.AddrPort)) {
	s.readFn = fn
}

func (s *fakeSocket) OnConnect(fn func(transportif.AsyncPacketSocket)) {
	s.connectFn = fn
}

func (s *fakeSocket) OnClose(fn func(transportif.AsyncPacketSocket, error)) {
	s.closeFn = fn
}

// deliver 注入一个入站数据报
func (s *fakeSocket) deliver(data []byte) {
	if s.readFn != nil {
		s.readFn(s, data, s.remote)
	}
}

// fireConnect 模拟 TCP 连接建立
func (s *fakeSocket) fireConnect() {
	if s.connectFn != nil {
		s.connectFn(s)
	}
}

// fireClose 模拟套接字关闭
func (s *fakeSocket) fireClose(err error) {
	if s.closeFn != nil {
		s.closeFn(s, err)
	}
}

// lastSent 返回最近一次发送的数据
func (s *fakeSocket) lastSent(t *testing.T) sentPacket {
	t.Helper()
	require.NotEmpty(t, s.sent)
	return s.sent[len(s.sent)-1]
}

// ============================================================================
//                              假套接字工厂
// ============================================================================

// tcpRecord 一次 TCP 套接字创建的记录
type tcpRecord struct {
	sock   *fakeSocket
	remote netip.AddrPort
	proxy  types.ProxyInfo
	agent  string
	useTLS bool
}

// fakeFactory 测试用套接字工厂
type fakeFactory struct {
	udp    []*fakeSocket
	tcp    []*tcpRecord
	udpErr error
	tcpErr error

	nextPort uint16
}

var _ transportif.SocketFactory = (*fakeFactory)(nil)

func newFakeFactory() *fakeFactory {
	return &fakeFactory{nextPort: 40000}
}

func (f *fakeFactory) NewUDPSocket(bind netip.Addr, minPort, maxPort uint16) (transportif.AsyncPacketSocket, error) {
	if f.udpErr != nil {
		return nil, f.udpErr
	}
	f.nextPort++
	s := &fakeSocket{local: netip.AddrPortFrom(bind, f.nextPort)}
	f.udp = append(f.udp, s)
	return s, nil
}

func (f *fakeFactory) NewClientTCPSocket(bind netip.Addr, remote netip.AddrPort,
	proxy types.ProxyInfo, userAgent string, useTLS bool) (transportif.AsyncPacketSocket, error) {
	if f.tcpErr != nil {
		return nil, f.tcpErr
	}
	f.nextPort++
	s := &fakeSocket{
		local:  netip.AddrPortFrom(bind, f.nextPort),
		remote: remote,
	}
	f.tcp = append(f.tcp, &tcpRecord{
		sock:   s,
		remote: remote,
		proxy:  proxy,
		agent:  userAgent,
		useTLS: useTLS,
	})
	return s, nil
}

// lastUDP 返回最近创建的 UDP 套接字
func (f *fakeFactory) lastUDP(t *testing.T) *fakeSocket {
	t.Helper()
	require.NotEmpty(t, f.udp)
	return f.udp[len(f.udp)-1]
}

// ============================================================================
//                              服务器报文构造
// ============================================================================

// buildAllocateResponse 构造 ALLOCATE 成功响应
//
// 服务器响应总是把 MAGIC-COOKIE 作为第一个属性回写。
func buildAllocateResponse(t *testing.T, txID [stun.TransactionIDSize]byte,
	mapped netip.AddrPort) []byte {
	t.Helper()
	m := stun.New()
	m.SetType(gturn.TypeAllocateResponse)
	m.TransactionID = txID
	m.WriteHeader()
	gturn.AddMagicCookie(m)
	require.NoError(t, gturn.AddAddress(m, gturn.AttrMappedAddress, mapped))
	return m.Raw
}

// buildAllocateErrorResponse 构造 ALLOCATE 错误响应
func buildAllocateErrorResponse(t *testing.T, txID [stun.TransactionIDSize]byte,
	code stun.ErrorCode, reason string) []byte {
	t.Helper()
	m := stun.New()
	m.SetType(gturn.TypeAllocateErrorResponse)
	m.TransactionID = txID
	m.WriteHeader()
	gturn.AddMagicCookie(m)
	attr := stun.ErrorCodeAttribute{Code: code, Reason: []byte(reason)}
	require.NoError(t, attr.AddTo(m))
	return m.Raw
}

// buildSendResponse 构造 SEND 成功响应
func buildSendResponse(t *testing.T, options uint32) []byte {
	t.Helper()
	m := gturn.NewMessage(gturn.TypeSendResponse)
	gturn.AddMagicCookie(m)
	gturn.AddUint32(m, gturn.AttrOptions, options)
	return m.Raw
}

// buildDataIndication 构造 DATA 指示
func buildDataIndication(t *testing.T, src netip.AddrPort, payload []byte) []byte {
	t.Helper()
	m := gturn.NewMessage(gturn.TypeDataIndication)
	gturn.AddMagicCookie(m)
	require.NoError(t, gturn.AddAddress(m, gturn.AttrSourceAddress2, src))
	gturn.AddBytes(m, gturn.AttrData, payload)
	return m.Raw
}

// sentTransactionID 从出站报文中取事务 ID
func sentTransactionID(t *testing.T, data []byte) [stun.TransactionIDSize]byte {
	t.Helper()
	msg, err := gturn.Parse(data)
	require.NoError(t, err)
	return msg.TransactionID
}
