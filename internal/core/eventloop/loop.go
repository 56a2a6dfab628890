package eventloop

import (
	"container/heap"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
//                              消息与处理器
// ============================================================================

// Handler 消息处理器
//
// 绑定在事件循环上的对象实现此接口接收定时器消息。
type Handler interface {
	// OnLoopMessage 处理一条投递给自己的消息
	OnLoopMessage(msg *Message)
}

// Message 一条投递给 Handler 的消息
type Message struct {
	// ID 消息标识，由投递方定义
	ID uint32
	// Handler 目标处理器
	Handler Handler
	// Data 附加数据
	Data any

	fireAt time.Time
	seq    uint64
	index  int
}

// ============================================================================
//                              Loop 实现
// ============================================================================

// Loop 单线程协作式事件循环
type Loop struct {
	clk clock.Clock

	mu       sync.Mutex
	queue    messageQueue
	disposal []io.Closer
	seq      uint64

	wake    chan struct{}
	done    chan struct{}
	started bool
}

// New 创建事件循环
//
// clk 为 nil 时使用真实时钟。测试传入 clock.NewMock() 以确定性步进。
func New(clk clock.Clock) *Loop {
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{
		clk:  clk,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Clock 返回事件循环使用的时钟
func (l *Loop) Clock() clock.Clock {
	return l.clk
}

// Now 返回事件循环时钟的当前时间
func (l *Loop) Now() time.Time {
	return l.clk.Now()
}

// Post 立即投递一条消息
func (l *Loop) Post(h Handler, id uint32, data any) {
	l.PostDelayed(0, h, id, data)
}

// PostDelayed 延迟投递一条消息
func (l *Loop) PostDelayed(delay time.Duration, h Handler, id uint32, data any) {
	l.mu.Lock()
	l.seq++
	heap.Push(&l.queue, &Message{
		ID:      id,
		Handler: h,
		Data:    data,
		fireAt:  l.clk.Now().Add(delay),
		seq:     l.seq,
	})
	l.mu.Unlock()
	l.kick()
}

// Clear 清除指定 Handler 的全部待处理消息
//
// 对象销毁前必须调用，否则已投递的消息会回调到已销毁的对象上。
func (l *Loop) Clear(h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.queue[:0]
	for _, m := range l.queue {
		if m.Handler != h {
			kept = append(kept, m)
		}
	}
	l.queue = kept
	heap.Init(&l.queue)
}

// Dispose 把对象加入延迟销毁队列
//
// 对象在当前一轮消息处理结束后关闭。直接同步销毁会与同一轮内
// 已经排队的套接字回调竞争。
func (l *Loop) Dispose(c io.Closer) {
	if c == nil {
		return
	}
	l.mu.Lock()
	l.disposal = append(l.disposal, c)
	l.mu.Unlock()
	l.kick()
}

// RunDue 处理所有已到期的消息，然后清空销毁队列
//
// 返回处理的消息条数。测试及手动驱动模式下由调用方在
// 时钟步进后调用；Start() 模式下由循环线程调用。
func (l *Loop) RunDue() int {
	n := 0
	for {
		msg := l.popDue()
		if msg == nil {
			break
		}
		msg.Handler.OnLoopMessage(msg)
		n++
	}
	l.drainDisposal()
	return n
}

// Start 启动后台驱动线程
func (l *Loop) Start() {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()
	go l.run()
}

// Stop 停止事件循环
//
// 剩余消息不再处理，销毁队列会被清空。
func (l *Loop) Stop() {
	l.mu.Lock()
	started := l.started
	l.started = false
	l.mu.Unlock()
	if started {
		close(l.done)
	}
	l.drainDisposal()
}

// run 循环线程主体
func (l *Loop) run() {
	for {
		l.RunDue()

		wait := l.untilNext()
		var timer *clock.Timer
		var fire <-chan time.Time
		if wait >= 0 {
			timer = l.clk.Timer(wait)
			fire = timer.C
		}

		select {
		case <-l.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-fire:
		case <-l.wake:
			if timer != nil {
				timer.Stop()
			}
		}
	}
}

// ============================================================================
//                              内部辅助
// ============================================================================

// kick 唤醒循环线程重新计算等待时间
func (l *Loop) kick() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// popDue 弹出一条到期消息，没有则返回 nil
func (l *Loop) popDue() *Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 || l.queue[0].fireAt.After(l.clk.Now()) {
		return nil
	}
	return heap.Pop(&l.queue).(*Message)
}

// untilNext 返回距下一条消息到期的时长，队列为空返回 -1
func (l *Loop) untilNext() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return -1
	}
	wait := l.queue[0].fireAt.Sub(l.clk.Now())
	if wait < 0 {
		wait = 0
	}
	return wait
}

// drainDisposal 关闭销毁队列中的全部对象
func (l *Loop) drainDisposal() {
	l.mu.Lock()
	pending := l.disposal
	l.disposal = nil
	l.mu.Unlock()
	for _, c := range pending {
		if err := c.Close(); err != nil {
			logger.Warn("延迟销毁对象关闭失败", "error", err)
		}
	}
}

// ============================================================================
//                              消息堆
// ============================================================================

// messageQueue 按 (到期时间, 投递序号) 排序的最小堆
type messageQueue []*Message

func (q messageQueue) Len() int { return len(q) }

func (q messageQueue) Less(i, j int) bool {
	if q[i].fireAt.Equal(q[j].fireAt) {
		return q[i].seq < q[j].seq
	}
	return q[i].fireAt.Before(q[j].fireAt)
}

func (q messageQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *messageQueue) Push(x any) {
	m := x.(*Message)
	m.index = len(*q)
	*q = append(*q, m)
}

func (q *messageQueue) Pop() any {
	old := *q
	n := len(old)
	m := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return m
}
