package bytequeue

import (
	"github.com/dep2p/go-sessnet/pkg/interfaces"
)

// 默认压实阈值：head 越过容量的 1/2 即搬移
const defaultCompactThreshold = 0.5

// ============================================================================
//                              CompactingQueue 实现
// ============================================================================

// CompactingQueue 自动压实的字节队列
//
// 契约与 Queue 相同，但在 Advance 后若 head 超过容量的
// 配置比例，就把剩余 [head, tail) 窗口搬回偏移 0，
// 限制碎片化消费造成的无界增长。
type CompactingQueue struct {
	Queue

	// threshold 压实阈值（占容量的比例，(0, 1]）
	threshold float64
}

// 确保实现接收缓冲契约
var _ interfaces.ReceiveBuffer = (*CompactingQueue)(nil)

// NewCompacting 创建自动压实队列
//
// threshold 不在 (0, 1] 内时使用默认值。
func NewCompacting(capacity int, threshold float64) *CompactingQueue {
	if threshold <= 0 || threshold > 1 {
		threshold = defaultCompactThreshold
	}
	q := &CompactingQueue{threshold: threshold}
	q.Queue = *New(capacity)
	return q
}

// Advance 提交 n 字节的消费，必要时压实
func (q *CompactingQueue) Advance(n int) error {
	if err := q.Queue.Advance(n); err != nil {
		return err
	}
	if float64(q.head) > q.threshold*float64(len(q.buf)) {
		q.compact()
	}
	return nil
}
