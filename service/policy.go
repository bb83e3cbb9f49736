package service

import (
	"net/http"

	"github.com/BerniceZTT/telecaller_crm/metrics"
	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

// Operation 受权限控制的操作
type Operation string

const (
	OpList            Operation = "list"
	OpView            Operation = "view"
	OpCreate          Operation = "create"
	OpUpdate          Operation = "update"
	OpDelete          Operation = "delete"
	OpStatusChange    Operation = "status-change"
	OpCallLog         Operation = "call-log"
	OpListConnected   Operation = "list-connected"
	OpViewStats       Operation = "view-stats"
	OpViewTelecallers Operation = "view-telecallers"
	OpViewActivities  Operation = "view-activities"
	OpSubscribeEvents Operation = "subscribe-events"
)

const (
	msgNoToken            = "No token, authorization denied"
	msgInsufficientAccess = "Access denied: insufficient permissions"
)

// Decision 权限判断结果
type Decision struct {
	Allowed bool
	Status  int
	Reason  string
	Details map[string]interface{}
}

// Err 拒绝时转换为API错误，允许时返回nil
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Status == http.StatusUnauthorized {
		return utils.CreateUnauthorizedError(d.Reason)
	}
	return utils.CreateForbiddenError(d.Reason, d.Details)
}

// ownedOperations 电话销售只能对自己负责的线索执行的操作，值为提示中的动词
var ownedOperations = map[Operation]string{
	OpView:         "view",
	OpUpdate:       "update",
	OpDelete:       "delete",
	OpStatusChange: "update",
	OpCallLog:      "update",
}

// adminOperations 仅管理员可执行的操作
var adminOperations = map[Operation]bool{
	OpListConnected:   true,
	OpViewStats:       true,
	OpViewTelecallers: true,
	OpViewActivities:  true,
	OpSubscribeEvents: true,
}

// CanAccess 判断身份是否可以对线索执行操作，lead 可为空
func CanAccess(identity models.Identity, op Operation, lead *models.Lead) Decision {
	if identity.ID == "" {
		return Decision{Status: http.StatusUnauthorized, Reason: msgNoToken}
	}

	if identity.IsAdmin() {
		return Decision{Allowed: true}
	}

	if identity.Role != models.UserRoleTELECALLER || adminOperations[op] {
		return roleDenied(identity)
	}

	switch op {
	case OpList, OpCreate:
		return Decision{Allowed: true}
	}

	verb, owned := ownedOperations[op]
	if !owned {
		return roleDenied(identity)
	}

	// 只按ID比较，不按姓名或邮箱
	if lead != nil && lead.AssignedTo.ID.Hex() == identity.ID {
		return Decision{Allowed: true}
	}

	details := map[string]interface{}{"userId": identity.ID}
	if lead != nil {
		details["assignedTo"] = lead.AssignedTo.ID.Hex()
	}
	return Decision{
		Status:  http.StatusForbidden,
		Reason:  "Not authorized to " + verb + " this lead",
		Details: details,
	}
}

// Authorize 执行权限判断，拒绝时记录指标和日志
func Authorize(identity models.Identity, op Operation, lead *models.Lead) error {
	decision := CanAccess(identity, op, lead)
	if decision.Allowed {
		return nil
	}

	metrics.RecordPolicyDenial(string(op))
	event := utils.Logger.Warn().
		Str("operation", string(op)).
		Str("userId", identity.ID).
		Str("role", string(identity.Role))
	if lead != nil {
		event = event.Str("leadId", lead.ID.Hex())
	}
	event.Msg("权限校验未通过")

	return decision.Err()
}

// roleDenied 角色不满足时的拒绝结果
func roleDenied(identity models.Identity) Decision {
	return Decision{
		Status: http.StatusForbidden,
		Reason: msgInsufficientAccess,
		Details: map[string]interface{}{
			"requiredRoles": []string{string(models.UserRoleADMIN)},
			"userRole":      string(identity.Role),
		},
	}
}
