package service

import (
	"context"
	"errors"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/repository"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

// LeadStore 线索存储
type LeadStore interface {
	Find(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error)
	FindByID(ctx context.Context, id string) (*models.Lead, error)
	Create(ctx context.Context, lead models.NewLead) (*models.Lead, error)
	Patch(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter models.LeadFilter) (int64, error)
	Aggregate(ctx context.Context, key models.LeadGroupKey, filter models.LeadFilter) (map[string]int64, error)
}

// UserStore 用户存储
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	FindByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
}

// storeError 将存储层错误转换为API错误
func storeError(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.CreateNotFoundError(resource)
	}
	return utils.CreateInternalError(err)
}
