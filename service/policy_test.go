package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

func TestCanAccess(t *testing.T) {
	ownerID := primitive.NewObjectID()
	owner := models.Identity{ID: ownerID.Hex(), Role: models.UserRoleTELECALLER}
	other := models.Identity{ID: primitive.NewObjectID().Hex(), Role: models.UserRoleTELECALLER}
	admin := models.Identity{ID: primitive.NewObjectID().Hex(), Role: models.UserRoleADMIN}
	lead := &models.Lead{ID: primitive.NewObjectID(), AssignedTo: models.AssignedUser{ID: ownerID}}

	tests := []struct {
		name       string
		identity   models.Identity
		op         Operation
		lead       *models.Lead
		wantAllow  bool
		wantStatus int
		wantReason string
	}{
		{"anonymous", models.Identity{}, OpList, nil, false, http.StatusUnauthorized, "No token, authorization denied"},
		{"admin views any lead", admin, OpView, lead, true, 0, ""},
		{"admin stats", admin, OpViewStats, nil, true, 0, ""},
		{"admin deletes", admin, OpDelete, lead, true, 0, ""},
		{"telecaller lists", other, OpList, nil, true, 0, ""},
		{"telecaller creates", other, OpCreate, nil, true, 0, ""},
		{"owner views", owner, OpView, lead, true, 0, ""},
		{"owner changes status", owner, OpStatusChange, lead, true, 0, ""},
		{"owner logs call", owner, OpCallLog, lead, true, 0, ""},
		{"owner deletes", owner, OpDelete, lead, true, 0, ""},
		{"other views", other, OpView, lead, false, http.StatusForbidden, "Not authorized to view this lead"},
		{"other updates", other, OpUpdate, lead, false, http.StatusForbidden, "Not authorized to update this lead"},
		{"other changes status", other, OpStatusChange, lead, false, http.StatusForbidden, "Not authorized to update this lead"},
		{"other deletes", other, OpDelete, lead, false, http.StatusForbidden, "Not authorized to delete this lead"},
		{"telecaller stats", owner, OpViewStats, nil, false, http.StatusForbidden, "Access denied: insufficient permissions"},
		{"telecaller connected", owner, OpListConnected, nil, false, http.StatusForbidden, "Access denied: insufficient permissions"},
		{"telecaller roster", owner, OpViewTelecallers, nil, false, http.StatusForbidden, "Access denied: insufficient permissions"},
		{"telecaller events", owner, OpSubscribeEvents, nil, false, http.StatusForbidden, "Access denied: insufficient permissions"},
		{"unknown role", models.Identity{ID: ownerID.Hex(), Role: "manager"}, OpView, lead, false, http.StatusForbidden, "Access denied: insufficient permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := CanAccess(tt.identity, tt.op, tt.lead)
			assert.Equal(t, tt.wantAllow, decision.Allowed)
			if !tt.wantAllow {
				assert.Equal(t, tt.wantStatus, decision.Status)
				assert.Equal(t, tt.wantReason, decision.Reason)
			}
		})
	}
}

func TestCanAccess_OwnershipComparesIDsOnly(t *testing.T) {
	identity := models.Identity{ID: primitive.NewObjectID().Hex(), Role: models.UserRoleTELECALLER, Name: "Tara", Email: "tara@example.com"}
	lead := &models.Lead{AssignedTo: models.AssignedUser{ID: primitive.NewObjectID(), Name: "Tara", Email: "tara@example.com"}}

	decision := CanAccess(identity, OpView, lead)
	assert.False(t, decision.Allowed)
	assert.Equal(t, identity.ID, decision.Details["userId"])
	assert.Equal(t, lead.AssignedTo.ID.Hex(), decision.Details["assignedTo"])
}

func TestAuthorize_ReturnsApiError(t *testing.T) {
	identity := models.Identity{ID: primitive.NewObjectID().Hex(), Role: models.UserRoleTELECALLER}

	err := Authorize(identity, OpViewStats, nil)
	require.Error(t, err)
	assert.True(t, utils.IsStatus(err, http.StatusForbidden))

	var apiErr *utils.ApiError
	require.ErrorAs(t, err, &apiErr)
	details := apiErr.Details.(map[string]interface{})
	assert.Equal(t, []string{"admin"}, details["requiredRoles"])
	assert.Equal(t, "telecaller", details["userRole"])

	assert.NoError(t, Authorize(identity, OpList, nil))
}
