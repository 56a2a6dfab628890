// Package types 定义 go-ice 共享的基础类型
//
// 本包位于依赖层次的底层，不依赖任何其他业务包，
// 可被 pkg/interfaces、internal/core 等上层包安全引用。
//
// 包含内容：
//   - 枚举类型：传输协议、代理类型、候选来源、套接字选项
//   - 地址类型：ProtocolAddress（传输地址 + 协议）、ProxyInfo
package types
