package bytequeue

import "errors"

var (
	// ErrAdvancePastCount Advance 的 n 超过当前缓冲字节数
	ErrAdvancePastCount = errors.New("advance past buffered count")

	// ErrNegativeCount 参数 n 为负数
	ErrNegativeCount = errors.New("negative byte count")
)
