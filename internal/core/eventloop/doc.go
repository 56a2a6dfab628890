// Package eventloop 实现单线程协作式事件循环
//
// # 模块概述
//
// 中继端口及其下属对象全部绑定在一个事件循环线程上：
// 套接字回调、定时器回调、STUN 事务回调都在这个线程上执行。
// 核心内部没有共享内存并行，线程安全靠亲和性而非锁保证。
//
// # 能力
//
//   - Post / PostDelayed: 投递（延迟）消息给指定 Handler
//   - Clear: 清除某 Handler 的全部待处理消息（对象销毁前调用）
//   - Dispose: 延迟销毁——对象在当前一轮消息处理结束后才关闭，
//     避免与同一轮内仍在途的套接字回调竞争
//
// # 驱动方式
//
// 生产环境调用 Start() 由后台 goroutine 驱动；
// 测试使用 clock.Mock 并手动调用 RunDue() 步进，完全确定性。
//
// # 架构层
//
// Core Layer
package eventloop

import (
	"github.com/dep2p/go-ice/pkg/lib/log"
)

var logger = log.Logger("core/eventloop")
