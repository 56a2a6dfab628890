// Package stunreq 实现 STUN 事务框架
//
// # 模块概述
//
// 一次 STUN 事务是"带重传的请求 + 终态分类"：
//
//	Prepare → 发送 → (重传 ...) → Response | ErrorResponse | Timeout
//
// Manager 持有全部在途事务（按事务 ID 索引），按各请求自报的
// NextDelay 驱动重传，把收到的响应派发给对应事务。
// 报文字节通过注册的发送回调写出——这些字节已经是发给服务器的
// STUN，不需要再包裹。
//
// # 线程模型
//
// Manager 与其事务都绑定在创建时传入的事件循环线程上，
// 所有回调同步执行，不加锁。
//
// # 架构层
//
// Core Layer
package stunreq

import (
	"github.com/dep2p/go-ice/pkg/lib/log"
)

var logger = log.Logger("core/stunreq")
