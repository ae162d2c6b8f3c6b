package errors

import "errors"

// ErrNoRowsAffected 更新或删除未命中任何记录（记录不存在或已被并发删除）
var ErrNoRowsAffected = errors.New("记录不存在或已被删除")
