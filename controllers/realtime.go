package controllers

import (
	"github.com/BerniceZTT/telecaller_crm/realtime"
	"github.com/BerniceZTT/telecaller_crm/service"
	"github.com/BerniceZTT/telecaller_crm/utils"

	"github.com/gin-gonic/gin"
)

// RealtimeController 看板实时推送
type RealtimeController struct {
	hub *realtime.Hub
}

// NewRealtimeController 创建推送控制器
func NewRealtimeController(hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{hub: hub}
}

// SubscribeLeadEvents 订阅线索事件
func (ctl *RealtimeController) SubscribeLeadEvents(c *gin.Context) {
	identity, ok := utils.MustIdentity(c)
	if !ok {
		return
	}
	if err := service.Authorize(identity, service.OpSubscribeEvents, nil); err != nil {
		utils.HandleError(c, err)
		return
	}

	ctl.hub.ServeWS(c.Writer, c.Request, identity)
}
