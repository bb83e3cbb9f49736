package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

func TestUserService_Telecallers(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store.Leads(), f.store.Users())

	roster, err := svc.Telecallers(context.Background(), f.admin)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Omar", roster[0].Name)
	assert.Equal(t, "Tara", roster[1].Name)

	_, err = svc.Telecallers(context.Background(), f.tcA)
	assert.True(t, utils.IsStatus(err, http.StatusForbidden))
}

func TestUserService_Activities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.store.Leads(), f.store.Users())

	first := f.createLead(t, f.tcA, "first")
	second := f.createLead(t, f.tcA, "second")
	f.createLead(t, f.tcB, "other")

	_, err := f.leads.LogCall(ctx, f.tcA, first.ID.Hex(), models.CallLog{IsConnected: true})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.leads.LogCall(ctx, f.tcA, second.ID.Hex(), models.CallLog{IsConnected: true})
	require.NoError(t, err)

	activities, err := svc.Activities(ctx, f.admin, f.tcA.ID)
	require.NoError(t, err)
	assert.Equal(t, f.tcA.ID, activities.Telecaller.ID)
	require.Len(t, activities.Leads, 2)
	assert.Equal(t, second.ID, activities.Leads[0].ID)

	_, err = svc.Activities(ctx, f.admin, f.admin.ID)
	assert.True(t, utils.IsStatus(err, http.StatusNotFound))

	_, err = svc.Activities(ctx, f.admin, primitive.NewObjectID().Hex())
	assert.True(t, utils.IsStatus(err, http.StatusNotFound))

	_, err = svc.Activities(ctx, f.tcA, f.tcA.ID)
	assert.True(t, utils.IsStatus(err, http.StatusForbidden))
}
