package service

import (
	"context"
	"time"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

// FollowUpWindow 跟进提醒覆盖的时间范围
const FollowUpWindow = 24 * time.Hour

// NextRunAt 计算下一次执行时间
func NextRunAt(now time.Time, hour, min, sec int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, sec, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// ScheduleDailyTaskAt 每天指定时间执行任务，ctx 取消后退出
func ScheduleDailyTaskAt(ctx context.Context, hour, min, sec int, task func(ctx context.Context)) {
	go func() {
		for {
			next := NextRunAt(time.Now(), hour, min, sec)
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				task(ctx)
			}
		}
	}()
}

// FollowUpScheduler 每日检查即将到期的回访
type FollowUpScheduler struct {
	leads  LeadStore
	events *EventBus
	now    func() time.Time
}

// NewFollowUpScheduler 创建回访提醒任务
func NewFollowUpScheduler(leads LeadStore, events *EventBus) *FollowUpScheduler {
	return &FollowUpScheduler{leads: leads, events: events, now: time.Now}
}

// WithClock 替换时间来源
func (s *FollowUpScheduler) WithClock(now func() time.Time) *FollowUpScheduler {
	s.now = now
	return s
}

// Start 按配置的小时每天执行，hour 小于0时不启动
func (s *FollowUpScheduler) Start(ctx context.Context, hour int) {
	if hour < 0 || hour > 23 {
		utils.Logger.Info().Int("hour", hour).Msg("回访提醒任务未启用")
		return
	}
	utils.Logger.Info().Int("hour", hour).Msg("回访提醒任务已启动")
	ScheduleDailyTaskAt(ctx, hour, 0, 0, func(ctx context.Context) {
		if _, err := s.Run(ctx); err != nil {
			utils.Logger.Error().Err(err).Msg("回访提醒任务执行失败")
		}
	})
}

// Run 对未来24小时内需要回访的线索发出提醒事件，返回提醒数量
func (s *FollowUpScheduler) Run(ctx context.Context) (int, error) {
	now := s.now()
	utils.Logger.Info().Time("time", now).Msg("开始执行每日回访提醒任务")

	until := now.Add(FollowUpWindow)
	leads, err := s.leads.Find(ctx, models.LeadFilter{
		NextCallFrom: &now,
		NextCallTo:   &until,
		SortBy:       models.SortByNextCallDate,
	})
	if err != nil {
		return 0, err
	}

	for i := range leads {
		lead := leads[i]
		s.events.Publish(ctx, models.LeadEvent{
			Type:   models.LeadEventFOLLOW_UP_DUE,
			LeadID: lead.ID.Hex(),
			Lead:   &lead,
			At:     now,
		})
	}

	utils.Logger.Info().Int("count", len(leads)).Msg("每日回访提醒任务完成")
	return len(leads), nil
}
