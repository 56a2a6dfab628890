package relayport

import (
	"errors"
	"net/netip"

	"github.com/dep2p/go-ice/internal/core/eventloop"
	"github.com/dep2p/go-ice/pkg/lib/gturn"
	transportif "github.com/dep2p/go-ice/pkg/interfaces/transport"
	"github.com/dep2p/go-ice/pkg/types"
)

// ============================================================================
//                              RelayEntry
// ============================================================================

// RelayEntry 一条到中继服务器的逻辑通道
//
// 每个不同的远端地址一条通道，复用同一张服务器候选表。
// 通道尽量只服务一个目的地址，这样服务器确认锁定后
// 就能省去逐包的 STUN 包裹。
type RelayEntry struct {
	port        *RelayPort
	extAddr     netip.AddrPort
	serverIndex int
	connected   bool
	locked      bool
	current     *RelayConnection
}

// newRelayEntry 创建通道
//
// extAddr 为零值表示尚未认领目的地址（引导通道）。
func newRelayEntry(port *RelayPort, extAddr netip.AddrPort) *RelayEntry {
	return &RelayEntry{
		port:    port,
		extAddr: extAddr,
	}
}

// Address 返回通道认领的远端地址
func (e *RelayEntry) Address() netip.AddrPort {
	return e.extAddr
}

// setAddress 认领远端地址
func (e *RelayEntry) setAddress(addr netip.AddrPort) {
	e.extAddr = addr
}

// Connected 返回分配是否已完成
func (e *RelayEntry) Connected() bool {
	return e.connected
}

// Locked 返回服务器是否已确认锁定
func (e *RelayEntry) Locked() bool {
	return e.locked
}

// ServerIndex 返回服务器候选表游标
func (e *RelayEntry) ServerIndex() int {
	return e.serverIndex
}

// setServerIndex 设置服务器候选表游标
func (e *RelayEntry) setServerIndex(i int) {
	e.serverIndex = i
}

// Error 返回通道套接字最近一次的错误
func (e *RelayEntry) Error() error {
	if e.current != nil {
		return e.current.Error()
	}
	return nil
}

// ============================================================================
//                              连接建立
// ============================================================================

// Connect 开始或继续服务器选择
//
// 已完成分配时幂等返回。候选表耗尽时通道就此失效，只记日志。
func (e *RelayEntry) Connect() {
	if e.connected {
		return
	}

	ra, ok := e.port.ServerAddress(e.serverIndex)
	if !ok {
		logger.Warn("没有更多中继服务器地址可以尝试")
		return
	}

	// 替换下来的连接延迟销毁：同一轮内可能还有它的套接字回调在途
	if e.current != nil {
		e.port.loop.Dispose(e.current)
		e.current = nil
	}

	logger.Info("连接中继服务器", "server", ra)

	var socket transportif.AsyncPacketSocket
	var err error
	switch ra.Proto {
	case types.ProtoUDP:
		socket, err = e.port.factory.NewUDPSocket(
			e.port.ip, e.port.minPort, e.port.maxPort)
	case types.ProtoTCP, types.ProtoSSLTCP:
		socket, err = e.port.factory.NewClientTCPSocket(
			e.port.ip, ra.Address, e.port.proxy, e.port.userAgent,
			ra.Proto == types.ProtoSSLTCP)
	default:
		logger.Warn("未知的服务器协议", "proto", int(ra.Proto))
	}
	if err != nil {
		logger.Warn("套接字创建失败", "server", ra, "error", err)
	}

	// 拿不到套接字：下一轮立即按连接失败回退
	if socket == nil {
		e.port.loop.Post(e, messageConnectTimeout, nil)
		return
	}

	socket.OnReadPacket(e.onReadPacket)

	e.current = newRelayConnection(ra, socket, e.port.loop)
	for _, ov := range e.port.options {
		if optErr := e.current.SetSocketOption(ov.Opt, ov.Value); optErr != nil {
			logger.Debug("重放套接字选项失败", "opt", int(ov.Opt), "error", optErr)
		}
	}

	// UDP 没有连接阶段，直接开始分配；
	// TCP/SSLTCP 等连接建立，并挂一个软超时以便及时换服务器。
	if ra.Proto == types.ProtoTCP || ra.Proto == types.ProtoSSLTCP {
		socket.OnClose(e.onSocketClose)
		socket.OnConnect(e.onSocketConnect)
		e.port.loop.PostDelayed(softConnectTimeout, e, messageConnectTimeout, nil)
	} else {
		e.current.SendAllocateRequest(e, 0)
	}
}

// OnConnect 分配成功回调
//
// mapped 是服务器在公网侧分配的转发地址。对外发布的中继候选
// 一律是 UDP——服务器面向远端的转发面始终是 UDP，
// 与服务器链路本身用什么协议无关。
func (e *RelayEntry) OnConnect(mapped netip.AddrPort, conn *RelayConnection) {
	logger.Info("中继分配成功", "mapped", mapped)
	e.connected = true

	e.port.setRelatedAddress(mapped)
	e.port.AddExternalAddress(types.NewProtocolAddress(mapped, types.ProtoUDP))
	e.port.setReady()
}

// ============================================================================
//                              发送
// ============================================================================

// SendTo 向指定远端地址发送用户数据
//
// 已锁定且目的地址即通道地址时直发裸负载；
// 否则包裹成 SEND 请求，把目的地址告知服务器。
func (e *RelayEntry) SendTo(data []byte, addr netip.AddrPort) (int, error) {
	if e.locked && e.extAddr == addr {
		return e.sendPacket(data)
	}

	// SEND 请求不走事务框架：丢了就丢了，下一次发送自然会重试，
	// 重传一个过期的数据包没有意义。
	req := gturn.NewMessage(gturn.TypeSendRequest)
	gturn.AddMagicCookie(req)
	gturn.AddBytes(req, gturn.AttrUsername, []byte(e.port.username))
	if err := gturn.AddAddress(req, gturn.AttrDestinationAddress, addr); err != nil {
		return 0, err
	}

	// 目的地址就是通道认领的地址：顺带请求服务器锁定
	if e.extAddr == addr {
		gturn.AddUint32(req, gturn.AttrOptions, gturn.OptionLock)
	}

	gturn.AddBytes(req, gturn.AttrData, data)

	// TODO: 计算 MESSAGE-INTEGRITY（需要先与服务器实现约定密钥派发）

	return e.sendPacket(req.Raw)
}

// sendPacket 把字节原样发给当前服务器连接
func (e *RelayEntry) sendPacket(data []byte) (int, error) {
	if e.current == nil {
		return 0, ErrNotConnected
	}
	return e.current.Send(data)
}

// ============================================================================
//                              保活与失败处理
// ============================================================================

// ScheduleKeepAlive 调度一次延迟的保活 ALLOCATE
func (e *RelayEntry) ScheduleKeepAlive() {
	if e.current != nil {
		e.current.SendAllocateRequest(e, keepAliveDelay)
	}
}

// SetSocketOption 在通道当前套接字上设置选项
func (e *RelayEntry) SetSocketOption(opt types.SocketOption, value int) error {
	if e.current != nil {
		return e.current.SetSocketOption(opt, value)
	}
	return nil
}

// HandleConnectFailure 当前服务器失败，换下一个
//
// socket 非空且不是当前连接的套接字时忽略——那是被替换连接
// 销毁前残留的陈旧回调。
func (e *RelayEntry) HandleConnectFailure(socket transportif.AsyncPacketSocket) {
	if socket != nil && (e.current == nil || socket != e.current.Socket()) {
		return
	}
	if e.current != nil {
		e.port.signalConnectFailure(e.current.ProtocolAddress())
	}

	e.serverIndex++
	e.Connect()
}

// OnLoopMessage 软超时定时器回调
func (e *RelayEntry) OnLoopMessage(msg *eventloop.Message) {
	if msg.ID != messageConnectTimeout {
		return
	}
	if e.current != nil {
		ra := e.current.ProtocolAddress()
		logger.Warn("中继连接超时", "server", ra)

		// 服务器地址目前严格顺序尝试：还有地址可试就当作失败换下一个，
		// 而不是继续等真正的 STUN 超时。
		// TODO: 并行探测多个服务器地址，缩短建立时间
		e.port.signalSoftTimeout(ra)
		e.HandleConnectFailure(e.current.Socket())
	} else {
		e.HandleConnectFailure(nil)
	}
}

// onSocketConnect TCP 连接建立回调
func (e *RelayEntry) onSocketConnect(s transportif.AsyncPacketSocket) {
	logger.Info("中继 TCP 已连接", "remote", s.RemoteAddr())
	if e.current != nil {
		e.current.SendAllocateRequest(e, 0)
	}
}

// onSocketClose TCP 关闭回调
func (e *RelayEntry) onSocketClose(s transportif.AsyncPacketSocket, err error) {
	logger.Error("中继连接失败：套接字已关闭", "error", err)
	e.HandleConnectFailure(s)
}

// ============================================================================
//                              入站分拣
// ============================================================================

// onReadPacket 服务器链路收包回调
//
// 分拣次序：
//  1. 陈旧套接字的包直接丢弃
//  2. 偏移 24 处无魔数 → 服务器解包后的裸负载，已锁定才交付
//  3. 在途事务的响应（ALLOCATE）
//  4. SEND 响应 → 检查锁定位
//  5. DATA 指示 → 取出来源地址与数据交付端口
func (e *RelayEntry) onReadPacket(s transportif.AsyncPacketSocket,
	data []byte, remote netip.AddrPort) {
	if e.current == nil || s != e.current.Socket() {
		logger.Warn("丢弃数据包：来源套接字未知")
		return
	}

	if !e.port.HasMagicCookie(data) {
		if e.locked {
			e.port.onReadPacket(data, e.extAddr, types.ProtoUDP)
		} else {
			logger.Warn("丢弃数据包：通道未锁定")
		}
		return
	}

	msg, err := gturn.Parse(data)
	if err != nil {
		logger.Info("入站数据包不是 STUN 报文")
		return
	}

	// 应当是 ALLOCATE 响应、SEND 响应或 DATA 指示之一
	if e.current.CheckResponse(msg) {
		return
	}

	if msg.Type == gturn.TypeSendResponse {
		if v, attrErr := gturn.GetUint32(msg, gturn.AttrOptions); attrErr == nil &&
			v&gturn.OptionLock != 0 {
			e.locked = true
		}
		return
	}

	if msg.Type != gturn.TypeDataIndication {
		logger.Info("服务器发来意外的 STUN 类型", "type", msg.Type.String())
		return
	}

	srcAddr, err := gturn.GetAddress(msg, gturn.AttrSourceAddress2)
	switch {
	case errors.Is(err, gturn.ErrNotIPv4):
		logger.Info("DATA 指示来源地址族不受支持")
		return
	case err != nil:
		logger.Info("DATA 指示缺少来源地址")
		return
	}

	payload, err := gturn.GetBytes(msg, gturn.AttrData)
	if err != nil {
		logger.Info("DATA 指示缺少数据")
		return
	}

	e.port.onReadPacket(payload, srcAddr, types.ProtoUDP)
}

// close 释放通道资源
//
// 先清掉定时器消息，再关闭当前连接。
func (e *RelayEntry) close() {
	e.port.loop.Clear(e)
	if e.current != nil {
		if err := e.current.Close(); err != nil {
			logger.Debug("关闭服务器连接失败", "error", err)
		}
		e.current = nil
	}
}
