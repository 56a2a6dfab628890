package relayport

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-ice/internal/core/eventloop"
	relayif "github.com/dep2p/go-ice/pkg/interfaces/relay"
	transportif "github.com/dep2p/go-ice/pkg/interfaces/transport"
)

// Module 中继端口模块
var Module = fx.Module("relayport",
	fx.Provide(ProvidePort),
)

// Params 中继端口参数
type Params struct {
	fx.In

	Config  Config
	Loop    *eventloop.Loop
	Factory transportif.SocketFactory
}

// Result 中继端口结果
type Result struct {
	fx.Out

	Port relayif.Port
}

// ProvidePort 提供中继端口
func ProvidePort(params Params) (Result, error) {
	port, err := New(params.Config, params.Loop, params.Factory)
	if err != nil {
		return Result{}, err
	}
	return Result{Port: port}, nil
}
