package dispatch

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/multierr"

	"github.com/dep2p/go-sessnet/pkg/interfaces"
)

// 规范操作签名，绑定期断言一次，稳态直调
type canonicalMethod = func(context.Context, interfaces.Session, []byte) (any, error)

// ============================================================================
//                              处理器绑定
// ============================================================================

// BindHandler 把处理器的声明操作编译进分发表
//
// 扫描 Protocols 元数据（协议 ID → 方法名），对每个操作按名解析
// 方法值并断言为规范签名，产出一条直调闭包注册进表。
// 反射只发生在绑定期这一次；稳态分发不做类型检查。
//
// 所有绑定错误聚合返回，便于启动期一次暴露全部问题。
func BindHandler(t *Table, h interfaces.ProtocolCarrier) error {
	if h == nil {
		return ErrNilHandler
	}

	rv := reflect.ValueOf(h)
	var errs error

	for id, name := range h.Protocols() {
		mv := rv.MethodByName(name)
		if !mv.IsValid() {
			errs = multierr.Append(errs, fmt.Errorf("%w: %T.%s (protocol %d)", ErrMethodNotFound, h, name, id))
			continue
		}

		fn, ok := mv.Interface().(canonicalMethod)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %T.%s is %s (protocol %d)",
				ErrBadHandlerMethod, h, name, mv.Type(), id))
			continue
		}

		if err := t.Register(id, fn); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
