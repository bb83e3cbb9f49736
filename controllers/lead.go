package controllers

import (
	"net/http"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/service"
	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
)

// LeadController 线索接口
type LeadController struct {
	leads *service.LeadService
}

// NewLeadController 创建线索控制器
func NewLeadController(leads *service.LeadService) *LeadController {
	return &LeadController{leads: leads}
}

// GetLeads 线索列表，可按 status 过滤
func (ctl *LeadController) GetLeads(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	var status *models.LeadStatus
	if raw := c.Query("status"); raw != "" {
		s := models.LeadStatus(raw)
		status = &s
	}

	leads, err := ctl.leads.List(c.Request.Context(), identity, status)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// GetLead 线索详情
func (ctl *LeadController) GetLead(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	lead, err := ctl.leads.Get(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// CreateLead 创建线索
func (ctl *LeadController) CreateLead(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	var req models.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.BindingError(err))
		return
	}

	lead, err := ctl.leads.Create(c.Request.Context(), identity, req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// UpdateLead 部分更新线索
func (ctl *LeadController) UpdateLead(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	var req models.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.BindingError(err))
		return
	}

	lead, err := ctl.leads.Patch(c.Request.Context(), identity, c.Param("id"), req.ToPatch())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// UpdateLeadStatus 更新线索状态
func (ctl *LeadController) UpdateLeadStatus(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.BindingError(err))
		return
	}

	lead, err := ctl.leads.UpdateStatus(c.Request.Context(), identity, c.Param("id"), req.Status)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// LogCallResponse 记录通话结果
func (ctl *LeadController) LogCallResponse(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	var req models.CallLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.BindingError(err))
		return
	}

	lead, err := ctl.leads.LogCall(c.Request.Context(), identity, c.Param("id"), req.ToCallLog())
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// DeleteLead 删除线索
func (ctl *LeadController) DeleteLead(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	if err := ctl.leads.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.MessageResponse(c, "Lead deleted successfully")
}

// GetConnectedLeads 最近联系过的线索
func (ctl *LeadController) GetConnectedLeads(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}

	leads, err := ctl.leads.ListConnected(c.Request.Context(), identity)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}
