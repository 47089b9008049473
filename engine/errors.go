package engine

import "errors"

var (
	// ErrCategoryNotFound 未知的 (年级, 题型)，调用方不应重试
	ErrCategoryNotFound = errors.New("category not found")
	// ErrConstraintUnsatisfiable 出题器在重试上限内没有找到满足约束的候选
	ErrConstraintUnsatisfiable = errors.New("constraint unsatisfiable")
	ErrDivisionByZero          = errors.New("division by zero")
	ErrMalformedExpression     = errors.New("malformed expression")
	// ErrInvalidAllocationRequest 配比参数非法：总数为负或年级没有题型
	ErrInvalidAllocationRequest = errors.New("invalid allocation request")
	ErrInvalidCount             = errors.New("invalid count")
)
