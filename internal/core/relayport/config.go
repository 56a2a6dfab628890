package relayport

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/dep2p/go-ice/pkg/types"
)

// ============================================================================
//                              常量
// ============================================================================

const (
	// keepAliveDelay 保活 ALLOCATE 间隔
	keepAliveDelay = 10 * time.Minute
	// retryTimeout 分配错误响应后继续保活的时间窗（ICE 规定 50 秒）
	retryTimeout = 50 * time.Second
	// softConnectTimeout 放弃 TCP 连接尝试、切换下一服务器的软超时
	softConnectTimeout = 3 * time.Second
	// messageConnectTimeout 软超时定时器消息 ID
	messageConnectTimeout uint32 = 1
)

// ============================================================================
//                              Config
// ============================================================================

// Config 中继端口配置
type Config struct {
	// Username 用户名片段（ICE ufrag），随每个请求发给服务器
	Username string
	// Password 口令（完整性校验预留，当前协议版本不使用）
	Password string
	// IP 本地绑定地址
	IP netip.Addr
	// MinPort / MaxPort 本地端口分配范围，同为 0 表示不限制
	MinPort uint16
	MaxPort uint16
	// UserAgent 经代理建立 TCP 连接时携带的 UA
	UserAgent string
	// Proxy 出站代理配置
	Proxy types.ProxyInfo
	// Servers 服务器候选，按 AddServerAddress 的规则排序插入
	Servers []types.ProtocolAddress
}

// Validate 校验配置
func (c *Config) Validate() error {
	if !c.IP.IsValid() {
		return fmt.Errorf("%w: missing bind ip", ErrInvalidConfig)
	}
	if c.MinPort > c.MaxPort {
		return fmt.Errorf("%w: min port %d > max port %d",
			ErrInvalidConfig, c.MinPort, c.MaxPort)
	}
	return nil
}
