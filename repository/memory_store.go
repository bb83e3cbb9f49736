package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BerniceZTT/telecaller_crm/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore 内存存储引擎，用于测试和本地运行
type MemoryStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
	leads map[primitive.ObjectID]leadDocument
	now   func() time.Time
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[primitive.ObjectID]models.User),
		leads: make(map[primitive.ObjectID]leadDocument),
		now:   time.Now,
	}
}

// SetClock 替换时间来源
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Leads 线索存储视图
func (s *MemoryStore) Leads() *MemoryLeadStore {
	return &MemoryLeadStore{store: s}
}

// Users 用户存储视图
func (s *MemoryStore) Users() *MemoryUserStore {
	return &MemoryUserStore{store: s}
}

// Status 获取存储状态
func (s *MemoryStore) Status(_ context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"driver":        "memory",
		UsersCollection: map[string]interface{}{"count": len(s.users)},
		LeadsCollection: map[string]interface{}{"count": len(s.leads)},
	}, nil
}

// MemoryLeadStore 内存线索存储
type MemoryLeadStore struct {
	store *MemoryStore
}

// Find 按条件查询线索
func (l *MemoryLeadStore) Find(_ context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	s := l.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.matchLeads(filter)
	sortLeadDocs(docs, filter.SortBy)
	if filter.Limit > 0 && int64(len(docs)) > filter.Limit {
		docs = docs[:filter.Limit]
	}

	leads := make([]models.Lead, 0, len(docs))
	for _, doc := range docs {
		leads = append(leads, s.joinLead(doc))
	}
	return leads, nil
}

// FindByID 根据ID查询线索
func (l *MemoryLeadStore) FindByID(_ context.Context, id string) (*models.Lead, error) {
	s := l.store
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.leads[objID]
	if !ok {
		return nil, ErrNotFound
	}
	lead := s.joinLead(doc)
	return &lead, nil
}

// Create 创建线索
func (l *MemoryLeadStore) Create(_ context.Context, lead models.NewLead) (*models.Lead, error) {
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := lead.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	status := lead.Status
	if status == "" {
		status = models.LeadStatusPENDING
	}

	doc := leadDocument{
		ID:         primitive.NewObjectID(),
		Name:       lead.Name,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Address:    lead.Address,
		AssignedTo: lead.AssignedTo,
		Status:     status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	s.leads[doc.ID] = doc

	created := s.joinLead(doc)
	return &created, nil
}

// Patch 部分更新线索
func (l *MemoryLeadStore) Patch(_ context.Context, id string, patch models.LeadPatch) (*models.Lead, error) {
	s := l.store
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.leads[objID]
	if !ok {
		return nil, ErrNotFound
	}

	applyLeadPatch(&doc, patch)
	doc.UpdatedAt = s.now()
	s.leads[objID] = doc

	updated := s.joinLead(doc)
	return &updated, nil
}

// Delete 删除线索
func (l *MemoryLeadStore) Delete(_ context.Context, id string) error {
	s := l.store
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[objID]; !ok {
		return ErrNotFound
	}
	delete(s.leads, objID)
	return nil
}

// Count 统计满足条件的线索数
func (l *MemoryLeadStore) Count(_ context.Context, filter models.LeadFilter) (int64, error) {
	s := l.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchLeads(filter))), nil
}

// Aggregate 按字段分组计数
func (l *MemoryLeadStore) Aggregate(_ context.Context, key models.LeadGroupKey, filter models.LeadFilter) (map[string]int64, error) {
	s := l.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]int64)
	for _, doc := range s.matchLeads(filter) {
		switch key {
		case models.GroupByStatus:
			result[string(doc.Status)]++
		case models.GroupByCallResponse:
			if doc.CallResponse != nil {
				result[string(*doc.CallResponse)]++
			}
		case models.GroupByLastCallDay:
			if doc.LastCallDate != nil {
				result[doc.LastCallDate.UTC().Format("2006-01-02")]++
			}
		default:
			return nil, fmt.Errorf("不支持的分组字段: %s", key)
		}
	}
	return result, nil
}

// matchLeads 过滤线索，调用方持有读锁
func (s *MemoryStore) matchLeads(filter models.LeadFilter) []leadDocument {
	docs := make([]leadDocument, 0, len(s.leads))
	for _, doc := range s.leads {
		if leadMatches(doc, filter) {
			docs = append(docs, doc)
		}
	}
	return docs
}

// joinLead 关联负责人信息，调用方持有锁
func (s *MemoryStore) joinLead(doc leadDocument) models.Lead {
	assignee := models.AssignedUser{ID: doc.AssignedTo}
	if user, ok := s.users[doc.AssignedTo]; ok {
		assignee.Name = user.Name
		assignee.Email = user.Email
	}

	return models.Lead{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		Phone:        doc.Phone,
		Address:      doc.Address,
		AssignedTo:   assignee,
		Status:       doc.Status,
		CallResponse: copyPtr(doc.CallResponse),
		CallNotes:    copyPtr(doc.CallNotes),
		LastCallDate: copyPtr(doc.LastCallDate),
		NextCallDate: copyPtr(doc.NextCallDate),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

// leadMatches 判断线索是否满足条件
func leadMatches(doc leadDocument, filter models.LeadFilter) bool {
	if filter.AssignedTo != nil && doc.AssignedTo != *filter.AssignedTo {
		return false
	}

	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if doc.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if filter.HasLastCall != nil && (doc.LastCallDate != nil) != *filter.HasLastCall {
		return false
	}
	if !inRange(doc.LastCallDate, filter.LastCallFrom, filter.LastCallTo) {
		return false
	}

	if filter.HasCallResponse != nil && (doc.CallResponse != nil) != *filter.HasCallResponse {
		return false
	}

	return inRange(doc.NextCallDate, filter.NextCallFrom, filter.NextCallTo)
}

// inRange 时间是否在闭区间内，未设置区间时总是满足
func inRange(value, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if value == nil {
		return false
	}
	if from != nil && value.Before(*from) {
		return false
	}
	if to != nil && value.After(*to) {
		return false
	}
	return true
}

// sortLeadDocs 排序规则与MongoDB引擎一致
func sortLeadDocs(docs []leadDocument, sortBy models.LeadSortField) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		switch sortBy {
		case models.SortByLastCallDate:
			if c := compareTimePtr(a.LastCallDate, b.LastCallDate); c != 0 {
				return c > 0
			}
			return a.ID.Hex() > b.ID.Hex()
		case models.SortByNextCallDate:
			if c := compareTimePtr(a.NextCallDate, b.NextCallDate); c != 0 {
				return c < 0
			}
			return a.ID.Hex() < b.ID.Hex()
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID.Hex() > b.ID.Hex()
		}
	})
}

// compareTimePtr nil 小于任何时间
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	default:
		return 0
	}
}

// applyLeadPatch 合并部分更新
func applyLeadPatch(doc *leadDocument, patch models.LeadPatch) {
	if patch.Name != nil {
		doc.Name = *patch.Name
	}
	if patch.Email != nil {
		doc.Email = *patch.Email
	}
	if patch.Phone != nil {
		doc.Phone = *patch.Phone
	}
	if patch.Address != nil {
		doc.Address = *patch.Address
	}
	if patch.Status != nil {
		doc.Status = *patch.Status
	}
	if patch.CallResponse != nil {
		doc.CallResponse = copyPtr(patch.CallResponse)
	}
	if patch.CallNotes != nil {
		doc.CallNotes = copyPtr(patch.CallNotes)
	}
	if patch.LastCallDate != nil {
		doc.LastCallDate = copyPtr(patch.LastCallDate)
	}
	if patch.NextCallDate != nil {
		doc.NextCallDate = copyPtr(patch.NextCallDate)
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// MemoryUserStore 内存用户存储
type MemoryUserStore struct {
	store *MemoryStore
}

// FindByID 根据ID查找用户
func (u *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s := u.store
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[objID]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// FindByEmail 根据邮箱查找用户
func (u *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s := u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// Create 创建用户，邮箱唯一
func (u *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicate
		}
	}

	now := s.now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

// FindByRole 查询指定角色的用户，按姓名排序
func (u *MemoryUserStore) FindByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	s := u.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []models.User{}
	for _, user := range s.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID.Hex() < users[j].ID.Hex()
	})
	return users, nil
}

// CountByRole 统计指定角色的用户数
func (u *MemoryUserStore) CountByRole(_ context.Context, role models.UserRole) (int64, error) {
	s := u.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, user := range s.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}
