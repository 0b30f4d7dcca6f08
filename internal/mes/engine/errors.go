package engine

import "errors"

// 校验错误在任何状态变更之前同步返回，调用方保证无部分生效
var (
	ErrInvalidStep       = errors.New("invalid step")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrMissingOperator   = errors.New("missing operator")
	ErrUnknownOperator   = errors.New("unknown operator")
	ErrUnknownPhase      = errors.New("unknown phase")
	ErrPackingIncomplete = errors.New("packing incomplete")
	ErrIllegalTransition = errors.New("illegal status transition")
)
