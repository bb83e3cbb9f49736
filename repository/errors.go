package repository

import "errors"

var (
	// ErrNotFound 记录不存在或ID格式非法
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 唯一索引冲突
	ErrDuplicate = errors.New("duplicate record")
)
