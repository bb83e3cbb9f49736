package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeadSortField 线索排序字段
type LeadSortField string

const (
	SortByCreatedAt    LeadSortField = "createdAt"    // 创建时间倒序
	SortByLastCallDate LeadSortField = "lastCallDate" // 最近通话倒序
	SortByNextCallDate LeadSortField = "nextCallDate" // 下次通话正序
)

// LeadGroupKey 线索分组统计字段
type LeadGroupKey string

const (
	GroupByStatus       LeadGroupKey = "status"
	GroupByCallResponse LeadGroupKey = "callResponse"
	GroupByLastCallDay  LeadGroupKey = "lastCallDay"
)

// LeadFilter 线索查询条件，零值字段不参与过滤
type LeadFilter struct {
	AssignedTo      *primitive.ObjectID
	Statuses        []LeadStatus
	HasLastCall     *bool
	LastCallFrom    *time.Time
	LastCallTo      *time.Time
	HasCallResponse *bool
	NextCallFrom    *time.Time
	NextCallTo      *time.Time
	SortBy          LeadSortField
	Limit           int64
}

// Bool 返回布尔指针
func Bool(v bool) *bool {
	return &v
}
