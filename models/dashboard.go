package models

// CountItem 分组计数项，_id 为分组值
type CountItem struct {
	ID    string `json:"_id" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// DashboardStats 数据看板统计
type DashboardStats struct {
	// 基础指标
	TotalLeads       int64 `json:"totalLeads"`
	TotalTelecallers int64 `json:"totalTelecallers"`
	TotalCalls       int64 `json:"totalCalls"`
	TotalContacted   int64 `json:"totalContacted"`

	// 分布
	StatusCounts       []CountItem `json:"statusCounts"`
	CallResponseCounts []CountItem `json:"callResponseCounts"`
	CallTrends         []CountItem `json:"callTrends"` // 近7天，按天升序
	RecentActivity     []Lead      `json:"recentActivity"`

	ConnectedCalls int64 `json:"connectedCalls"`
	PendingCalls   int64 `json:"pendingCalls"`
	CallbackCalls  int64 `json:"callbackCalls"`
}
