// Package ice 提供 ICE 式端到端连通性库的中继端口子系统
//
// # 概述
//
// 两个节点无法直连时，各自通过 TURN 式中继服务器申请一个公网
// 转发地址，媒体/数据经服务器中转。本库实现该中继分配的本地侧：
//
//   - 多个 (地址, 协议) 服务器候选的顺序选择与软超时回退
//   - 每个远端地址一条逻辑通道，复用同一服务器链路
//   - 服务器确认锁定后省去逐包 STUN 包裹的优化
//   - 带上限重试的周期性保活再分配
//   - 入站数据报分拣：分配响应 / SEND 响应 / DATA 指示 / 裸负载
//
// # 快速开始
//
//	loop := ice.NewEventLoop()
//	loop.Start()
//	defer loop.Stop()
//
//	port, err := ice.NewRelayPort(ice.RelayConfig{
//	    Username: "ufrag",
//	    IP:       netip.MustParseAddr("192.168.1.10"),
//	    Servers: []types.ProtocolAddress{
//	        types.NewProtocolAddress(netip.MustParseAddrPort("1.2.3.4:3478"), types.ProtoUDP),
//	    },
//	}, loop, factory)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	port.OnAddressReady(func(p relay.Port) {
//	    // 中继候选已就绪，可以对外通告
//	})
//	port.PrepareAddress()
//
// # 线程模型
//
// 端口及其全部下属对象绑定在一个事件循环线程上；
// 所有回调在该线程上同步交付。factory 的套接字实现
// 必须把回调投递到同一事件循环。
package ice
