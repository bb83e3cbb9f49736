package service

import (
	"context"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

// UserService 电话销售名单与活动
type UserService struct {
	leads LeadStore
	users UserStore
}

// NewUserService 创建用户服务
func NewUserService(leads LeadStore, users UserStore) *UserService {
	return &UserService{leads: leads, users: users}
}

// Telecallers 电话销售名单，不含密码
func (s *UserService) Telecallers(ctx context.Context, identity models.Identity) ([]models.UserResponse, error) {
	if err := Authorize(identity, OpViewTelecallers, nil); err != nil {
		return nil, err
	}

	users, err := s.users.FindByRole(ctx, models.UserRoleTELECALLER)
	if err != nil {
		return nil, utils.CreateInternalError(err)
	}

	result := make([]models.UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, user.Public())
	}
	return result, nil
}

// Activities 某个电话销售负责的线索，按最近通话倒序
func (s *UserService) Activities(ctx context.Context, identity models.Identity, telecallerID string) (*models.TelecallerActivities, error) {
	if err := Authorize(identity, OpViewActivities, nil); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, telecallerID)
	if err != nil {
		return nil, storeError(err, "Telecaller")
	}
	if user.Role != models.UserRoleTELECALLER {
		return nil, utils.CreateNotFoundError("Telecaller")
	}

	leads, err := s.leads.Find(ctx, models.LeadFilter{
		AssignedTo: &user.ID,
		SortBy:     models.SortByLastCallDate,
	})
	if err != nil {
		return nil, utils.CreateInternalError(err)
	}

	return &models.TelecallerActivities{
		Telecaller: models.TelecallerSummary{ID: user.ID.Hex(), Name: user.Name, Email: user.Email},
		Leads:      leads,
	}, nil
}
