package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeadStatus 线索状态枚举
type LeadStatus string

const (
	LeadStatusPENDING        LeadStatus = "pending"
	LeadStatusCONTACTED      LeadStatus = "contacted"
	LeadStatusINTERESTED     LeadStatus = "interested"
	LeadStatusNOT_INTERESTED LeadStatus = "not-interested"
	LeadStatusCALLBACK       LeadStatus = "callback"
)

// LeadStatuses 全部合法状态
var LeadStatuses = []LeadStatus{
	LeadStatusPENDING,
	LeadStatusCONTACTED,
	LeadStatusINTERESTED,
	LeadStatusNOT_INTERESTED,
	LeadStatusCALLBACK,
}

// Valid 状态是否在枚举内
func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CallResponse 通话结果枚举
type CallResponse string

const (
	CallResponseDISCUSSED    CallResponse = "discussed"
	CallResponseCALLBACK     CallResponse = "callback"
	CallResponseINTERESTED   CallResponse = "interested"
	CallResponseBUSY         CallResponse = "busy"
	CallResponseRNR          CallResponse = "rnr"
	CallResponseSWITCHED_OFF CallResponse = "switched_off"
)

// CallResponses 全部合法通话结果
var CallResponses = []CallResponse{
	CallResponseDISCUSSED,
	CallResponseCALLBACK,
	CallResponseINTERESTED,
	CallResponseBUSY,
	CallResponseRNR,
	CallResponseSWITCHED_OFF,
}

// Valid 通话结果是否在枚举内
func (r CallResponse) Valid() bool {
	for _, v := range CallResponses {
		if r == v {
			return true
		}
	}
	return false
}

// AssignedUser 线索负责人(读取时关联用户表)
type AssignedUser struct {
	ID    primitive.ObjectID `json:"_id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
}

// Lead 线索模型
type Lead struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	Phone        string             `json:"phone" bson:"phone"`
	Address      string             `json:"address" bson:"address"`
	AssignedTo   AssignedUser       `json:"assignedTo" bson:"assignedTo"`
	Status       LeadStatus         `json:"status" bson:"status"`
	CallResponse *CallResponse      `json:"callResponse" bson:"callResponse"`
	CallNotes    *string            `json:"callNotes" bson:"callNotes"`
	LastCallDate *time.Time         `json:"lastCallDate" bson:"lastCallDate"`
	NextCallDate *time.Time         `json:"nextCallDate" bson:"nextCallDate"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NewLead 线索创建时的字段
type NewLead struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	AssignedTo primitive.ObjectID
	Status     LeadStatus
	CreatedAt  time.Time
}

// LeadPatch 线索部分更新，nil字段不修改
type LeadPatch struct {
	Name         *string
	Email        *string
	Phone        *string
	Address      *string
	Status       *LeadStatus
	CallResponse *CallResponse
	CallNotes    *string
	LastCallDate *time.Time
	NextCallDate *time.Time
}

// IsEmpty 是否没有任何字段
func (p LeadPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil &&
		p.Status == nil && p.CallResponse == nil && p.CallNotes == nil &&
		p.LastCallDate == nil && p.NextCallDate == nil
}

// FlexibleTime 兼容 RFC3339 与 YYYY-MM-DD 两种日期格式
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON 解析日期
func (t *FlexibleTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}

// Ptr 转为时间指针，零值返回nil
func (t *FlexibleTime) Ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// 各种请求结构
type (
	// CreateLeadRequest 创建线索请求
	CreateLeadRequest struct {
		Name       string `json:"name" binding:"required"`
		Email      string `json:"email" binding:"required,email"`
		Phone      string `json:"phone" binding:"required"`
		Address    string `json:"address" binding:"required"`
		AssignedTo string `json:"assignedTo"`
	}

	// UpdateLeadRequest 更新线索请求(任意可修改字段子集)
	UpdateLeadRequest struct {
		Name         *string       `json:"name" binding:"omitempty,min=1"`
		Email        *string       `json:"email" binding:"omitempty,email"`
		Phone        *string       `json:"phone" binding:"omitempty,min=1"`
		Address      *string       `json:"address" binding:"omitempty,min=1"`
		Status       *LeadStatus   `json:"status" binding:"omitempty,oneof=pending contacted interested not-interested callback"`
		CallResponse *CallResponse `json:"callResponse" binding:"omitempty,oneof=discussed callback interested busy rnr switched_off"`
		CallNotes    *string       `json:"callNotes"`
		NextCallDate *FlexibleTime `json:"nextCallDate"`
	}

	// UpdateStatusRequest 更新状态请求
	UpdateStatusRequest struct {
		Status LeadStatus `json:"status" binding:"required,oneof=pending contacted interested not-interested callback"`
	}

	// CallLogRequest 记录通话结果请求
	CallLogRequest struct {
		CallResponse *CallResponse `json:"callResponse" binding:"omitempty,oneof=discussed callback interested busy rnr switched_off"`
		CallNotes    *string       `json:"callNotes"`
		NextCallDate *FlexibleTime `json:"nextCallDate"`
		IsConnected  bool          `json:"isConnected"`
	}
)

// ToPatch 转为部分更新
func (r UpdateLeadRequest) ToPatch() LeadPatch {
	return LeadPatch{
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Address:      r.Address,
		Status:       r.Status,
		CallResponse: r.CallResponse,
		CallNotes:    r.CallNotes,
		NextCallDate: r.NextCallDate.Ptr(),
	}
}

// CallLog 一次通话记录
type CallLog struct {
	CallResponse *CallResponse
	CallNotes    *string
	NextCallDate *time.Time
	IsConnected  bool
}

// ToCallLog 转为通话记录
func (r CallLogRequest) ToCallLog() CallLog {
	return CallLog{
		CallResponse: r.CallResponse,
		CallNotes:    r.CallNotes,
		NextCallDate: r.NextCallDate.Ptr(),
		IsConnected:  r.IsConnected,
	}
}
