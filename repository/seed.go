package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

// adminSeedStore 初始化管理员所需的用户存储能力
type adminSeedStore interface {
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
	Create(ctx context.Context, user *models.User) error
}

// InitializeAdminAccount 初始化管理员账户，已存在管理员时跳过
func InitializeAdminAccount(ctx context.Context, users adminSeedStore, name, email, password string) error {
	if email == "" || password == "" {
		utils.Logger.Info().Msg("未配置管理员账户，跳过创建")
		return nil
	}

	count, err := users.CountByRole(ctx, models.UserRoleADMIN)
	if err != nil {
		return fmt.Errorf("检查管理员账户失败: %w", err)
	}

	// 如果已存在，则不创建
	if count > 0 {
		utils.Logger.Info().Msg("管理员账户已存在，跳过创建")
		return nil
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("加密管理员密码失败: %w", err)
	}
	if name == "" {
		name = "Admin"
	}

	adminUser := &models.User{
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: hashed,
		Role:     models.UserRoleADMIN,
	}
	if err := users.Create(ctx, adminUser); err != nil {
		if errors.Is(err, ErrDuplicate) {
			utils.Logger.Warn().Str("email", adminUser.Email).Msg("管理员邮箱已被占用，跳过创建")
			return nil
		}
		return fmt.Errorf("创建管理员账户失败: %w", err)
	}

	utils.Logger.Info().Str("email", adminUser.Email).Msg("已创建默认管理员账户")
	return nil
}
