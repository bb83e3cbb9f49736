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

func TestLeadService_CreateAssignsToCreator(t *testing.T) {
	f := newFixture(t)

	lead := f.createLead(t, f.tcA, "alice")

	assert.Equal(t, f.tcA.ID, lead.AssignedTo.ID.Hex())
	assert.Equal(t, "Tara", lead.AssignedTo.Name)
	assert.Equal(t, models.LeadStatusPENDING, lead.Status)
	assert.Nil(t, lead.CallResponse)
	assert.Nil(t, lead.LastCallDate)
	assert.Equal(t, f.clock.Now(), lead.CreatedAt)
	assert.Equal(t, []models.LeadEventType{models.LeadEventCREATED}, f.sink.Types())
}

func TestLeadService_CreateIgnoresTelecallerAssignee(t *testing.T) {
	f := newFixture(t)

	lead, err := f.leads.Create(context.Background(), f.tcA, models.CreateLeadRequest{
		Name: "alice", Email: "alice@example.com", Phone: "1", Address: "x", AssignedTo: f.tcB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, f.tcA.ID, lead.AssignedTo.ID.Hex())
}

func TestLeadService_AdminAssigns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := models.CreateLeadRequest{Name: "alice", Email: "alice@example.com", Phone: "1", Address: "x", AssignedTo: f.tcB.ID}

	lead, err := f.leads.Create(ctx, f.admin, req)
	require.NoError(t, err)
	assert.Equal(t, f.tcB.ID, lead.AssignedTo.ID.Hex())

	req.AssignedTo = primitive.NewObjectID().Hex()
	_, err = f.leads.Create(ctx, f.admin, req)
	require.Error(t, err)
	assert.True(t, utils.IsStatus(err, http.StatusBadRequest))

	req.AssignedTo = ""
	lead, err = f.leads.Create(ctx, f.admin, req)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, lead.AssignedTo.ID.Hex())
}

func TestLeadService_CreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.leads.Create(context.Background(), f.tcA, models.CreateLeadRequest{Name: "  ", Email: "bad", Phone: "", Address: "x"})
	require.Error(t, err)

	var apiErr *utils.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	params := make([]string, 0, len(apiErr.Errors))
	for _, fe := range apiErr.Errors {
		params = append(params, fe.Param)
	}
	assert.ElementsMatch(t, []string{"name", "email", "phone"}, params)

	count, err := f.store.Leads().Count(context.Background(), models.LeadFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLeadService_ListScopesTelecaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createLead(t, f.tcA, "a1")
	f.clock.Advance(time.Minute)
	f.createLead(t, f.tcA, "a2")
	f.createLead(t, f.tcB, "b1")

	mine, err := f.leads.List(ctx, f.tcA, nil)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "a2", mine[0].Name)
	for _, lead := range mine {
		assert.Equal(t, f.tcA.ID, lead.AssignedTo.ID.Hex())
	}

	all, err := f.leads.List(ctx, f.admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending := models.LeadStatusPENDING
	filtered, err := f.leads.List(ctx, f.admin, &pending)
	require.NoError(t, err)
	assert.Len(t, filtered, 3)

	bogus := models.LeadStatus("archived")
	_, err = f.leads.List(ctx, f.admin, &bogus)
	assert.True(t, utils.IsStatus(err, http.StatusBadRequest))
}

func TestLeadService_GetOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.createLead(t, f.tcA, "alice")

	_, err := f.leads.Get(ctx, f.tcA, lead.ID.Hex())
	assert.NoError(t, err)

	_, err = f.leads.Get(ctx, f.tcB, lead.ID.Hex())
	assert.True(t, utils.IsStatus(err, http.StatusForbidden))

	_, err = f.leads.Get(ctx, f.admin, lead.ID.Hex())
	assert.NoError(t, err)

	_, err = f.leads.Get(ctx, f.admin, primitive.NewObjectID().Hex())
	assert.True(t, utils.IsStatus(err, http.StatusNotFound))

	_, err = f.leads.Get(ctx, f.admin, "garbage")
	assert.True(t, utils.IsStatus(err, http.StatusNotFound))
}

func TestLeadService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.createLead(t, f.tcA, "alice")
	f.clock.Advance(time.Hour)

	updated, err := f.leads.UpdateStatus(ctx, f.tcA, lead.ID.Hex(), models.LeadStatusINTERESTED)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusINTERESTED, updated.Status)
	require.NotNil(t, updated.LastCallDate)
	assert.Equal(t, f.clock.Now(), *updated.LastCallDate)
	assert.Nil(t, updated.CallResponse)
}

func TestLeadService_UpdateStatusRejectsInvalidWithoutWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.createLead(t, f.tcA, "alice")

	_, err := f.leads.UpdateStatus(ctx, f.tcA, lead.ID.Hex(), models.LeadStatus("archived"))
	assert.True(t, utils.IsStatus(err, http.StatusBadRequest))

	stored, err := f.store.Leads().FindByID(ctx, lead.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusPENDING, stored.Status)
	assert.Nil(t, stored.LastCallDate)
}

func TestLeadService_ForbiddenWritesLeaveLeadUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.createLead(t, f.tcA, "alice")

	_, err := f.leads.UpdateStatus(ctx, f.tcB, lead.ID.Hex(), models.LeadStatusCONTACTED)
	assert.True(t, utils.IsStatus(err, http.StatusForbidden))

	_, err = f.leads.LogCall(ctx, f.tcB, lead.ID.Hex(), models.CallLog{IsConnected: true})
	assert.True(t, utils.IsStatus(err, http.StatusForbidden))

	assert.True(t, utils.IsStatus(f.leads.Delete(ctx, f.tcB, lead.ID.Hex()), http.StatusForbidden))

	stored, err := f.store.Leads().FindByID(ctx, lead.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusPENDING, stored.Status)
	assert.Nil(t, stored.LastCallDate)
	assert.Equal(t, []models.LeadEventType{models.LeadEventCREATED}, f.sink.Types())
}

func TestLeadService_LogCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.createLead(t, f.tcA, "alice")

	response := models.CallResponseDISCUSSED
	notes := "wants a demo"
	next := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)

	connected, err := f.leads.LogCall(ctx, f.tcA, lead.ID.Hex(), models.CallLog{
		CallResponse: &response,
		CallNotes:    &notes,
		NextCallDate: &next,
		IsConnected:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusCONTACTED, connected.Status)
	require.NotNil(t, connected.CallResponse)
	assert.Equal(t, models.CallResponseDISCUSSED, *connected.CallResponse)
	assert.Equal(t, notes, *connected.CallNotes)
	assert.Equal(t, next, *connected.NextCallDate)
	assert.Equal(t, f.clock.Now(), *connected.LastCallDate)

	f.clock.Advance(time.Hour)
	busy := models.CallResponseBUSY
	missed, err := f.leads.LogCall(ctx, f.tcA, lead.ID.Hex(), models.CallLog{CallResponse: &busy})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusPENDING, missed.Status)
	assert.Equal(t, models.CallResponseBUSY, *missed.CallResponse)
	assert.Equal(t, notes, *missed.CallNotes)
	assert.Equal(t, f.clock.Now(), *missed.LastCallDate)
}

func TestLeadService_LogCallOverwritesDecisionStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.createLead(t, f.tcA, "alice")

	_, err := f.leads.UpdateStatus(ctx, f.tcA, lead.ID.Hex(), models.LeadStatusINTERESTED)
	require.NoError(t, err)

	updated, err := f.leads.LogCall(ctx, f.tcA, lead.ID.Hex(), models.CallLog{IsConnected: true})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusCONTACTED, updated.Status)
}

func TestLeadService_Patch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.createLead(t, f.tcA, "alice")

	_, err := f.leads.Patch(ctx, f.tcA, lead.ID.Hex(), models.LeadPatch{})
	assert.True(t, utils.IsStatus(err, http.StatusBadRequest))

	phone := "555-0199"
	updated, err := f.leads.Patch(ctx, f.tcA, lead.ID.Hex(), models.LeadPatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "alice", updated.Name)
	assert.Nil(t, updated.LastCallDate)

	response := models.CallResponseRNR
	updated, err = f.leads.Patch(ctx, f.tcA, lead.ID.Hex(), models.LeadPatch{CallResponse: &response})
	require.NoError(t, err)
	require.NotNil(t, updated.LastCallDate)

	bogus := models.CallResponse("maybe")
	_, err = f.leads.Patch(ctx, f.tcA, lead.ID.Hex(), models.LeadPatch{CallResponse: &bogus})
	assert.True(t, utils.IsStatus(err, http.StatusBadRequest))

	_, err = f.leads.Patch(ctx, f.tcB, lead.ID.Hex(), models.LeadPatch{Phone: &phone})
	assert.True(t, utils.IsStatus(err, http.StatusForbidden))
}

func TestLeadService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	own := f.createLead(t, f.tcA, "alice")
	other := f.createLead(t, f.tcB, "bob")

	require.NoError(t, f.leads.Delete(ctx, f.tcA, own.ID.Hex()))
	require.NoError(t, f.leads.Delete(ctx, f.admin, other.ID.Hex()))

	_, err := f.leads.Get(ctx, f.admin, own.ID.Hex())
	assert.True(t, utils.IsStatus(err, http.StatusNotFound))
	assert.True(t, utils.IsStatus(f.leads.Delete(ctx, f.admin, own.ID.Hex()), http.StatusNotFound))
}

func TestLeadService_ListConnected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var lastID string
	for i := 0; i < 12; i++ {
		lead := f.createLead(t, f.tcA, "lead")
		f.clock.Advance(time.Minute)
		_, err := f.leads.LogCall(ctx, f.tcA, lead.ID.Hex(), models.CallLog{IsConnected: true})
		require.NoError(t, err)
		lastID = lead.ID.Hex()
	}
	f.createLead(t, f.tcA, "untouched")

	_, err := f.leads.ListConnected(ctx, f.tcA)
	assert.True(t, utils.IsStatus(err, http.StatusForbidden))

	leads, err := f.leads.ListConnected(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, leads, ConnectedLeadsLimit)
	assert.Equal(t, lastID, leads[0].ID.Hex())
	for i, lead := range leads {
		assert.Equal(t, models.LeadStatusCONTACTED, lead.Status)
		if i > 0 {
			assert.False(t, lead.LastCallDate.After(*leads[i-1].LastCallDate))
		}
	}
}
