package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole 用户角色枚举
type UserRole string

const (
	UserRoleADMIN      UserRole = "admin"      // 管理员
	UserRoleTELECALLER UserRole = "telecaller" // 电话销售
)

// Valid 角色是否合法
func (r UserRole) Valid() bool {
	return r == UserRoleADMIN || r == UserRoleTELECALLER
}

// User 用户类型
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // 不返回密码
	Role      UserRole           `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Public 返回给前端的用户信息
func (u User) Public() UserResponse {
	return UserResponse{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// Identity 当前请求的登录身份，每个请求从token解析一次
type Identity struct {
	ID    string   `json:"id"`
	Role  UserRole `json:"role"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
}

// IsAdmin 是否为管理员
func (i Identity) IsAdmin() bool {
	return i.Role == UserRoleADMIN
}

// 各种请求和响应结构
type (
	// LoginRequest 登录请求
	LoginRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	// RegisterRequest 注册请求
	RegisterRequest struct {
		Name     string   `json:"name" binding:"required"`
		Email    string   `json:"email" binding:"required,email"`
		Password string   `json:"password" binding:"required,min=6"`
		Role     UserRole `json:"role" binding:"required,oneof=admin telecaller"`
	}

	// UserResponse 用户信息(不含密码)
	UserResponse struct {
		ID    string   `json:"id"`
		Name  string   `json:"name"`
		Email string   `json:"email"`
		Role  UserRole `json:"role"`
	}

	// AuthResponse 登录/注册响应
	AuthResponse struct {
		Token string       `json:"token"`
		User  UserResponse `json:"user"`
	}

	// TelecallerActivities 电话销售的线索活动
	TelecallerActivities struct {
		Telecaller TelecallerSummary `json:"telecaller"`
		Leads      []Lead            `json:"leads"`
	}

	// TelecallerSummary 电话销售简要信息
	TelecallerSummary struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
)
