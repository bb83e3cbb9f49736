package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"

	"github.com/BerniceZTT/telecaller_crm/metrics"
	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/repository"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

// ConnectedLeadsLimit 已联系线索列表条数
const ConnectedLeadsLimit = 10

var validate = validator.New()

// LeadService 线索生命周期
type LeadService struct {
	leads  LeadStore
	users  UserStore
	events *EventBus
	now    func() time.Time
}

// NewLeadService 创建线索服务
func NewLeadService(leads LeadStore, users UserStore, events *EventBus) *LeadService {
	return &LeadService{leads: leads, users: users, events: events, now: time.Now}
}

// WithClock 替换时间来源
func (s *LeadService) WithClock(now func() time.Time) *LeadService {
	s.now = now
	return s
}

// List 查询线索，电话销售只能看到自己的线索
func (s *LeadService) List(ctx context.Context, identity models.Identity, status *models.LeadStatus) ([]models.Lead, error) {
	if err := Authorize(identity, OpList, nil); err != nil {
		return nil, err
	}

	filter := models.LeadFilter{SortBy: models.SortByCreatedAt}
	if status != nil {
		if !status.Valid() {
			return nil, utils.CreateValidationError(utils.FieldError{
				Msg: "Invalid status value", Param: "status", Value: *status, Location: "query",
			})
		}
		filter.Statuses = []models.LeadStatus{*status}
	}
	if !identity.IsAdmin() {
		ownerID, err := primitive.ObjectIDFromHex(identity.ID)
		if err != nil {
			return []models.Lead{}, nil
		}
		filter.AssignedTo = &ownerID
	}

	leads, err := s.leads.Find(ctx, filter)
	if err != nil {
		return nil, storeError(err, "Lead")
	}
	return leads, nil
}

// Get 查询单个线索
func (s *LeadService) Get(ctx context.Context, identity models.Identity, id string) (*models.Lead, error) {
	return s.loadAuthorized(ctx, identity, OpView, id)
}

// Create 创建线索，状态为pending
func (s *LeadService) Create(ctx context.Context, identity models.Identity, req models.CreateLeadRequest) (lead *models.Lead, err error) {
	ctx, span := startSpan(ctx, "lead.create", identity)
	defer func() { finishSpan(span, err) }()

	if err := Authorize(identity, OpCreate, nil); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	if fieldErrs := validateNewLead(req); len(fieldErrs) > 0 {
		return nil, utils.CreateValidationError(fieldErrs...)
	}

	assignee, err := s.resolveAssignee(ctx, identity, req.AssignedTo)
	if err != nil {
		return nil, err
	}

	lead, err = s.leads.Create(ctx, models.NewLead{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		AssignedTo: assignee,
		Status:     models.LeadStatusPENDING,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return nil, storeError(err, "Lead")
	}

	span.SetAttributes(attribute.String("lead.id", lead.ID.Hex()))
	metrics.RecordLeadCreated()
	utils.Logger.Info().
		Str("leadId", lead.ID.Hex()).
		Str("assignedTo", assignee.Hex()).
		Str("operator", identity.ID).
		Msg("线索创建成功")
	s.publish(ctx, models.LeadEventCREATED, identity, lead)
	return lead, nil
}

// Patch 部分更新线索
func (s *LeadService) Patch(ctx context.Context, identity models.Identity, id string, patch models.LeadPatch) (lead *models.Lead, err error) {
	ctx, span := startSpan(ctx, "lead.patch", identity, attribute.String("lead.id", id))
	defer func() { finishSpan(span, err) }()

	if patch.IsEmpty() {
		return nil, utils.CreateValidationError(utils.FieldError{Msg: "No fields to update", Location: "body"})
	}
	if fieldErrs := validatePatch(patch); len(fieldErrs) > 0 {
		return nil, utils.CreateValidationError(fieldErrs...)
	}

	if _, err := s.loadAuthorized(ctx, identity, OpUpdate, id); err != nil {
		return nil, err
	}

	// 记录通话结果时同步最近通话时间
	if patch.CallResponse != nil && patch.LastCallDate == nil {
		now := s.now()
		patch.LastCallDate = &now
	}

	lead, err = s.leads.Patch(ctx, id, patch)
	if err != nil {
		return nil, storeError(err, "Lead")
	}

	s.publish(ctx, models.LeadEventUPDATED, identity, lead)
	return lead, nil
}

// UpdateStatus 更新线索状态并记录通话时间，不修改通话结果
func (s *LeadService) UpdateStatus(ctx context.Context, identity models.Identity, id string, status models.LeadStatus) (lead *models.Lead, err error) {
	ctx, span := startSpan(ctx, "lead.update_status", identity,
		attribute.String("lead.id", id),
		attribute.String("lead.status", string(status)),
	)
	defer func() { finishSpan(span, err) }()

	if !status.Valid() {
		return nil, utils.CreateValidationError(utils.FieldError{
			Msg: "Invalid status value", Param: "status", Value: status, Location: "body",
		})
	}

	current, err := s.loadAuthorized(ctx, identity, OpStatusChange, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	lead, err = s.leads.Patch(ctx, id, models.LeadPatch{Status: &status, LastCallDate: &now})
	if err != nil {
		return nil, storeError(err, "Lead")
	}

	metrics.RecordStatusChange(string(status))
	utils.Logger.Info().
		Str("leadId", id).
		Str("from", string(current.Status)).
		Str("to", string(status)).
		Str("operator", identity.ID).
		Msg("线索状态已更新")
	s.publish(ctx, models.LeadEventSTATUS_CHANGED, identity, lead)
	return lead, nil
}

// Delete 永久删除线索
func (s *LeadService) Delete(ctx context.Context, identity models.Identity, id string) (err error) {
	ctx, span := startSpan(ctx, "lead.delete", identity, attribute.String("lead.id", id))
	defer func() { finishSpan(span, err) }()

	current, err := s.loadAuthorized(ctx, identity, OpDelete, id)
	if err != nil {
		return err
	}

	if err := s.leads.Delete(ctx, id); err != nil {
		return storeError(err, "Lead")
	}

	utils.Logger.Info().Str("leadId", id).Str("operator", identity.ID).Msg("线索已删除")
	s.publish(ctx, models.LeadEventDELETED, identity, current)
	return nil
}

// LogCall 记录通话结果，接通为contacted，未接通为pending
func (s *LeadService) LogCall(ctx context.Context, identity models.Identity, id string, call models.CallLog) (lead *models.Lead, err error) {
	ctx, span := startSpan(ctx, "lead.log_call", identity,
		attribute.String("lead.id", id),
		attribute.Bool("call.connected", call.IsConnected),
	)
	defer func() { finishSpan(span, err) }()

	current, err := s.loadAuthorized(ctx, identity, OpCallLog, id)
	if err != nil {
		return nil, err
	}

	status := models.LeadStatusPENDING
	if call.IsConnected {
		status = models.LeadStatusCONTACTED
	}

	switch current.Status {
	case models.LeadStatusINTERESTED, models.LeadStatusNOT_INTERESTED, models.LeadStatusCALLBACK:
		utils.Logger.Warn().
			Str("leadId", id).
			Str("previousStatus", string(current.Status)).
			Str("status", string(status)).
			Msg("记录通话覆盖了线索原有状态")
	}

	now := s.now()
	lead, err = s.leads.Patch(ctx, id, models.LeadPatch{
		Status:       &status,
		CallResponse: call.CallResponse,
		CallNotes:    call.CallNotes,
		NextCallDate: call.NextCallDate,
		LastCallDate: &now,
	})
	if err != nil {
		return nil, storeError(err, "Lead")
	}

	metrics.RecordCallLogged(call.IsConnected)
	s.publish(ctx, models.LeadEventCALL_LOGGED, identity, lead)
	return lead, nil
}

// ListConnected 最近联系过的线索，最多10条
func (s *LeadService) ListConnected(ctx context.Context, identity models.Identity) ([]models.Lead, error) {
	if err := Authorize(identity, OpListConnected, nil); err != nil {
		return nil, err
	}

	leads, err := s.leads.Find(ctx, models.LeadFilter{
		Statuses: []models.LeadStatus{models.LeadStatusCONTACTED},
		SortBy:   models.SortByLastCallDate,
		Limit:    ConnectedLeadsLimit,
	})
	if err != nil {
		return nil, storeError(err, "Lead")
	}
	return leads, nil
}

// loadAuthorized 查询线索并做权限校验
func (s *LeadService) loadAuthorized(ctx context.Context, identity models.Identity, op Operation, id string) (*models.Lead, error) {
	if identity.ID == "" {
		return nil, CanAccess(identity, op, nil).Err()
	}

	lead, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Lead")
	}
	if err := Authorize(identity, op, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// resolveAssignee 电话销售分配给自己，管理员可指定已存在的用户
func (s *LeadService) resolveAssignee(ctx context.Context, identity models.Identity, requested string) (primitive.ObjectID, error) {
	requested = strings.TrimSpace(requested)
	if !identity.IsAdmin() || requested == "" {
		self, err := primitive.ObjectIDFromHex(identity.ID)
		if err != nil {
			return primitive.NilObjectID, utils.CreateUnauthorizedError("Token is not valid")
		}
		return self, nil
	}

	invalid := utils.CreateValidationError(utils.FieldError{
		Msg: "Invalid assignee", Param: "assignedTo", Value: requested, Location: "body",
	})
	user, err := s.users.FindByID(ctx, requested)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return primitive.NilObjectID, invalid
		}
		return primitive.NilObjectID, utils.CreateInternalError(err)
	}
	return user.ID, nil
}

// publish 发布线索事件
func (s *LeadService) publish(ctx context.Context, eventType models.LeadEventType, identity models.Identity, lead *models.Lead) {
	s.events.Publish(ctx, models.LeadEvent{
		Type:    eventType,
		LeadID:  lead.ID.Hex(),
		ActorID: identity.ID,
		Lead:    lead,
		At:      s.now(),
	})
}

// validateNewLead 校验新线索必填字段
func validateNewLead(req models.CreateLeadRequest) []utils.FieldError {
	var errs []utils.FieldError
	if req.Name == "" {
		errs = append(errs, utils.FieldError{Msg: "Name is required", Param: "name", Location: "body"})
	}
	if validate.Var(req.Email, "required,email") != nil {
		errs = append(errs, utils.FieldError{Msg: "Valid email is required", Param: "email", Value: req.Email, Location: "body"})
	}
	if req.Phone == "" {
		errs = append(errs, utils.FieldError{Msg: "Phone number is required", Param: "phone", Location: "body"})
	}
	if req.Address == "" {
		errs = append(errs, utils.FieldError{Msg: "Address is required", Param: "address", Location: "body"})
	}
	return errs
}

// validatePatch 校验部分更新中的字段
func validatePatch(patch models.LeadPatch) []utils.FieldError {
	var errs []utils.FieldError
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		errs = append(errs, utils.FieldError{Msg: "Name is required", Param: "name", Location: "body"})
	}
	if patch.Email != nil && validate.Var(*patch.Email, "required,email") != nil {
		errs = append(errs, utils.FieldError{Msg: "Valid email is required", Param: "email", Value: *patch.Email, Location: "body"})
	}
	if patch.Phone != nil && strings.TrimSpace(*patch.Phone) == "" {
		errs = append(errs, utils.FieldError{Msg: "Phone number is required", Param: "phone", Location: "body"})
	}
	if patch.Address != nil && strings.TrimSpace(*patch.Address) == "" {
		errs = append(errs, utils.FieldError{Msg: "Address is required", Param: "address", Location: "body"})
	}
	if patch.Status != nil && !patch.Status.Valid() {
		errs = append(errs, utils.FieldError{Msg: "Invalid status value", Param: "status", Value: *patch.Status, Location: "body"})
	}
	if patch.CallResponse != nil && !patch.CallResponse.Valid() {
		errs = append(errs, utils.FieldError{Msg: "Invalid call response value", Param: "callResponse", Value: *patch.CallResponse, Location: "body"})
	}
	return errs
}
