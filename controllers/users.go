package controllers

import (
	"net/http"

	"github.com/BerniceZTT/telecaller_crm/service"
	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
)

// UserController 电话销售管理
type UserController struct {
	users *service.UserService
}

// NewUserController 创建用户控制器
func NewUserController(users *service.UserService) *UserController {
	return &UserController{users: users}
}

// GetTelecallers 获取所有电话销售
func (ctl *UserController) GetTelecallers(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	users, err := ctl.users.Telecallers(c.Request.Context(), identity)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetTelecallerActivities 获取电话销售负责的线索
func (ctl *UserController) GetTelecallerActivities(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	activities, err := ctl.users.Activities(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}
