// Package relayport 实现中继传输端口
//
// # 模块概述
//
// 中继端口是 ICE 连接体系中的保底候选：两端无法直连时，
// 各自通过 TURN 式中继服务器申请公网转发地址，流量经服务器中转。
// 本包负责分配生命周期、与服务器的协议交互、入站流量分拣、
// 出站负载的 STUN 包裹。
//
// # 架构组件
//
//	┌──────────────────────────────────────────────────────────┐
//	│                       RelayPort                           │
//	│   （端口协调：服务器候选表、通道池、候选发布、收发分派）      │
//	├──────────────────────────────────────────────────────────┤
//	│                       RelayEntry                          │
//	│   （每个远端地址一条逻辑通道：服务器选择、分配、锁定、        │
//	│     保活、失败回退、负载包裹/拆包）                          │
//	├──────────────────────────────────────────────────────────┤
//	│                     RelayConnection                       │
//	│   （一条 (服务器地址, 协议) 绑定：套接字 + 事务管理器）       │
//	├──────────────────────────────────────────────────────────┤
//	│                     allocateRequest                       │
//	│   （一次 ALLOCATE 事务：指数退避重传 + 终态分类）            │
//	└──────────────────────────────────────────────────────────┘
//
// # 组件职责
//
// ## RelayPort (relayport.go)
//
//   - AddServerAddress(): 维护有序服务器候选表（SSLTCP 在 HTTPS/未知
//     代理下前插）
//   - PrepareAddress(): 在首条通道上发起分配
//   - SendTo(): 按远端地址选择/认领/新建通道并发送
//   - CreateConnection(): 实现 ICE 端口契约的连接创建
//
// ## RelayEntry (entry.go)
//
//   - Connect(): 顺序尝试服务器地址，UDP 直接分配，TCP/SSLTCP
//     等连接建立并挂软超时
//   - SendTo(): 已锁定时直发裸负载，否则包裹成 SEND 请求
//   - onReadPacket(): 入站分拣（裸负载 / 分配响应 / SEND 响应 /
//     DATA 指示）
//   - HandleConnectFailure(): 推进服务器游标并重连，过滤陈旧套接字
//
// # 线程模型
//
// 端口及全部下属对象绑定在一个事件循环线程上（见 internal/core/eventloop），
// 不加锁。被替换的 RelayConnection 经 Loop.Dispose 延迟销毁，
// 避免与同一轮内在途的套接字回调竞争。
//
// # 已知缺口
//
//   - SEND / ALLOCATE 不计算 MESSAGE-INTEGRITY（协议旧版遗留）
//   - DATA 指示只接受 IPv4 来源地址
//   - 服务器地址严格顺序尝试，不做并行探测
//
// # 架构层
//
// Core Layer
package relayport

import (
	"github.com/dep2p/go-ice/pkg/lib/log"
)

var logger = log.Logger("core/relayport")
