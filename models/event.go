package models

import "time"

// LeadEventType 线索事件类型
type LeadEventType string

const (
	LeadEventCREATED        LeadEventType = "lead.created"
	LeadEventUPDATED        LeadEventType = "lead.updated"
	LeadEventSTATUS_CHANGED LeadEventType = "lead.status_changed"
	LeadEventCALL_LOGGED    LeadEventType = "lead.call_logged"
	LeadEventDELETED        LeadEventType = "lead.deleted"
	LeadEventFOLLOW_UP_DUE  LeadEventType = "lead.follow_up_due"
)

// LeadEvent 线索变更事件，推送给看板、消息队列与缓存
type LeadEvent struct {
	Type    LeadEventType `json:"type"`
	LeadID  string        `json:"leadId"`
	ActorID string        `json:"actorId,omitempty"`
	Lead    *Lead         `json:"lead,omitempty"`
	At      time.Time     `json:"at"`
}
