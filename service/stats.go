package service

import (
	"context"
	"sort"
	"time"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

const (
	// TrendWindow 通话趋势统计窗口
	TrendWindow = 7 * 24 * time.Hour
	// RecentActivityLimit 最近活动条数
	RecentActivityLimit = 10
)

// StatsCache 看板统计缓存
type StatsCache interface {
	Get(ctx context.Context) (*models.DashboardStats, bool, error)
	Set(ctx context.Context, stats *models.DashboardStats) error
	Invalidate(ctx context.Context) error
}

// StatsService 看板统计，只读
type StatsService struct {
	leads LeadStore
	users UserStore
	cache StatsCache
	now   func() time.Time
}

// NewStatsService 创建统计服务，cache 可为空
func NewStatsService(leads LeadStore, users UserStore, cache StatsCache) *StatsService {
	return &StatsService{leads: leads, users: users, cache: cache, now: time.Now}
}

// WithClock 替换时间来源
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// Dashboard 权限校验后返回看板统计
func (s *StatsService) Dashboard(ctx context.Context, identity models.Identity) (*models.DashboardStats, error) {
	if err := Authorize(identity, OpViewStats, nil); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			utils.Logger.Warn().Err(err).Msg("读取统计缓存失败")
		} else if ok {
			return cached, nil
		}
	}

	stats, err := s.Compute(ctx)
	if err != nil {
		return nil, utils.CreateInternalError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			utils.Logger.Warn().Err(err).Msg("写入统计缓存失败")
		}
	}
	return stats, nil
}

// Compute 计算全部统计项，各项互相独立，不保证同一快照
func (s *StatsService) Compute(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now()
	windowStart := now.Add(-TrendWindow)
	stats := &models.DashboardStats{}

	counts := []struct {
		target *int64
		filter models.LeadFilter
	}{
		{&stats.TotalLeads, models.LeadFilter{}},
		{&stats.TotalCalls, models.LeadFilter{HasLastCall: models.Bool(true)}},
		{&stats.TotalContacted, models.LeadFilter{Statuses: []models.LeadStatus{models.LeadStatusCONTACTED, models.LeadStatusINTERESTED}}},
		{&stats.ConnectedCalls, models.LeadFilter{Statuses: []models.LeadStatus{models.LeadStatusCONTACTED}}},
		{&stats.PendingCalls, models.LeadFilter{Statuses: []models.LeadStatus{models.LeadStatusPENDING}}},
		{&stats.CallbackCalls, models.LeadFilter{Statuses: []models.LeadStatus{models.LeadStatusCALLBACK}}},
	}
	for _, c := range counts {
		n, err := s.leads.Count(ctx, c.filter)
		if err != nil {
			return nil, err
		}
		*c.target = n
	}

	telecallers, err := s.users.CountByRole(ctx, models.UserRoleTELECALLER)
	if err != nil {
		return nil, err
	}
	stats.TotalTelecallers = telecallers

	groups := []struct {
		target *[]models.CountItem
		key    models.LeadGroupKey
		filter models.LeadFilter
	}{
		{&stats.StatusCounts, models.GroupByStatus, models.LeadFilter{}},
		{&stats.CallResponseCounts, models.GroupByCallResponse, models.LeadFilter{HasCallResponse: models.Bool(true)}},
		{&stats.CallTrends, models.GroupByLastCallDay, models.LeadFilter{
			HasLastCall:  models.Bool(true),
			LastCallFrom: &windowStart,
			LastCallTo:   &now,
		}},
	}
	for _, g := range groups {
		grouped, err := s.leads.Aggregate(ctx, g.key, g.filter)
		if err != nil {
			return nil, err
		}
		*g.target = sortedCounts(grouped)
	}

	recent, err := s.leads.Find(ctx, models.LeadFilter{
		HasLastCall: models.Bool(true),
		SortBy:      models.SortByLastCallDate,
		Limit:       RecentActivityLimit,
	})
	if err != nil {
		return nil, err
	}
	stats.RecentActivity = recent

	utils.Logger.Debug().
		Int64("totalLeads", stats.TotalLeads).
		Int64("totalCalls", stats.TotalCalls).
		Int("trendDays", len(stats.CallTrends)).
		Msg("看板统计计算完成")
	return stats, nil
}

// sortedCounts 分组结果按 _id 升序
func sortedCounts(grouped map[string]int64) []models.CountItem {
	items := make([]models.CountItem, 0, len(grouped))
	for id, count := range grouped {
		items = append(items, models.CountItem{ID: id, Count: count})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// StatsCacheInvalidator 线索变更时清除统计缓存
type StatsCacheInvalidator struct {
	Cache StatsCache
}

// Name 接收方名称
func (StatsCacheInvalidator) Name() string {
	return "stats-cache"
}

// Publish 清除缓存
func (i StatsCacheInvalidator) Publish(ctx context.Context, _ models.LeadEvent) error {
	return i.Cache.Invalidate(ctx)
}
