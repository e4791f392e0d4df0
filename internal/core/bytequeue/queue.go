package bytequeue

import (
	"github.com/dep2p/go-sessnet/pkg/interfaces"
)

// 默认最小容量
const minCapacity = 64

// ============================================================================
//                              Queue 实现
// ============================================================================

// Queue 可增长的字节队列
//
// 持有一段可调整大小的底层存储和 head/tail 两个游标，
// count = tail - head。非并发安全：接收侧由会话接收循环单写，
// 发送侧由调用方加锁。
type Queue struct {
	buf  []byte
	head int
	tail int
}

// 确保实现接收缓冲契约
var _ interfaces.ReceiveBuffer = (*Queue)(nil)

// New 创建字节队列
//
// capacity 小于最小容量时按最小容量分配。
func New(capacity int) *Queue {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	return &Queue{buf: make([]byte, capacity)}
}

// Count 返回当前缓冲的字节数
func (q *Queue) Count() int {
	return q.tail - q.head
}

// Cap 返回底层存储容量
func (q *Queue) Cap() int {
	return len(q.buf)
}

// Append 把 p 拷入尾部区域
//
// 空闲空间不足时底层存储翻倍扩容；除分配失败（运行时致命）外
// 不会失败。扩容或搬移会使已返回的视图失效。
func (q *Queue) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	q.ensure(len(p))
	copy(q.buf[q.tail:], p)
	q.tail += len(p)
}

// Peek 返回前 n 字节的只读视图，不移动游标
//
// count < n 时返回 (nil, false)，这是"字节不足"而非异常。
func (q *Queue) Peek(n int) ([]byte, bool) {
	if n < 0 || q.Count() < n {
		return nil, false
	}
	return q.buf[q.head : q.head+n], true
}

// TrySlice 语义同 Peek，是转交下游处理的规范视图
//
// 返回的切片是底层存储的别名，在 Advance 越过该区间、
// 扩容或压实之前有效。
func (q *Queue) TrySlice(n int) ([]byte, bool) {
	return q.Peek(n)
}

// Advance 提交 n 字节的消费
//
// n 超过当前字节数时返回错误且游标不动。
func (q *Queue) Advance(n int) error {
	if n < 0 {
		return ErrNegativeCount
	}
	if n > q.Count() {
		return ErrAdvancePastCount
	}
	q.head += n
	if q.head == q.tail {
		// 队列已空，游标归零，后续 Append 从头写
		q.head = 0
		q.tail = 0
	}
	return nil
}

// Reset 清空队列，保留底层存储
func (q *Queue) Reset() {
	q.head = 0
	q.tail = 0
}

// ============================================================================
//                              内部辅助
// ============================================================================

// ensure 保证尾部至少有 n 字节可写空间
func (q *Queue) ensure(n int) {
	if q.tail+n <= len(q.buf) {
		return
	}

	count := q.Count()
	if count+n <= len(q.buf) {
		// 总空闲足够，把剩余窗口搬回偏移 0 复用头部空闲段
		q.compact()
		return
	}

	// 翻倍扩容直到容纳
	newCap := len(q.buf) * 2
	for newCap < count+n {
		newCap *= 2
	}
	newBuf := make([]byte, newCap)
	copy(newBuf, q.buf[q.head:q.tail])
	q.buf = newBuf
	q.head = 0
	q.tail = count
}

// compact 把 [head, tail) 窗口搬到偏移 0
func (q *Queue) compact() {
	if q.head == 0 {
		return
	}
	count := q.Count()
	copy(q.buf, q.buf[q.head:q.tail])
	q.head = 0
	q.tail = count
}
