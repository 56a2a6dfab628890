// Package gturn 提供旧式（Google）TURN 中继协议的报文辅助
//
// 中继端口与中继服务器之间的协议是 STUN 的一个旧式扩展：
//   - ALLOCATE 请求/响应：申请并续期服务器上的公网转发地址
//   - SEND 请求/响应：把用户数据连同目的地址包裹后交给服务器
//   - DATA 指示：服务器把远端数据连同来源地址包裹后送回客户端
//
// 报文编解码基于 github.com/pion/stun 的原始属性接口实现，
// 本包只补充旧式扩展的报文类型、属性常量和地址/整数属性编解码。
//
// # 魔数辨识
//
// 同一条服务器链路上会混跑两类数据：STUN 报文与服务器解包后的裸负载。
// 区分方式是检查数据报偏移 24 处是否为固定的 4 字节 TURN 魔数——
// SEND 请求及服务器响应总是把 MAGIC-COOKIE 作为第一个属性写入，
// 其值恰好落在 STUN 头（20 字节）加属性头（4 字节）之后。
package gturn
