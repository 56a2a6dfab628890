package eventloop

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
)

// Module 事件循环模块
var Module = fx.Module("eventloop",
	fx.Provide(NewFromClock),
	fx.Invoke(registerLifecycle),
)

// NewFromClock 从可选时钟创建事件循环
func NewFromClock(params Params) *Loop {
	return New(params.Clock)
}

// Params 事件循环参数
type Params struct {
	fx.In

	Clock clock.Clock `optional:"true"`
}

// registerLifecycle 把事件循环挂接到 fx 生命周期
func registerLifecycle(lc fx.Lifecycle, loop *Loop) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			loop.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			loop.Stop()
			return nil
		},
	})
}
