package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BerniceZTT/telecaller_crm/models"
)

func TestExecuteDbOperation_RetriesRetryableErrors(t *testing.T) {
	attempts := 0
	err := ExecuteDbOperation(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("connection refused")
		}
		return nil
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestExecuteDbOperation_StopsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := mongo.CommandError{Code: 11000, Message: "duplicate key"}
	err := ExecuteDbOperation(context.Background(), func() error {
		attempts++
		return permanent
	}, 3)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestExecuteDbOperation_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ExecuteDbOperation(ctx, func() error {
		return errors.New("no reachable servers")
	}, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(mongo.CommandError{Code: 189}))
	assert.False(t, isRetryableError(mongo.CommandError{Code: 2}))
	assert.True(t, isRetryableError(errors.New("server selection error: context deadline exceeded")))
	assert.False(t, isRetryableError(errors.New("invalid document")))
}

func TestBuildLeadMatch(t *testing.T) {
	owner := primitive.NewObjectID()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	match := buildLeadMatch(models.LeadFilter{
		AssignedTo:      &owner,
		Statuses:        []models.LeadStatus{models.LeadStatusCONTACTED, models.LeadStatusINTERESTED},
		HasLastCall:     models.Bool(true),
		LastCallFrom:    &from,
		LastCallTo:      &to,
		HasCallResponse: models.Bool(false),
	})

	assert.Equal(t, owner, match["assignedTo"])
	assert.Equal(t, bson.M{"$in": []models.LeadStatus{models.LeadStatusCONTACTED, models.LeadStatusINTERESTED}}, match["status"])
	assert.Equal(t, bson.M{"$ne": nil, "$gte": from, "$lte": to}, match["lastCallDate"])
	assert.Equal(t, bson.M{"$eq": nil}, match["callResponse"])
	assert.NotContains(t, match, "nextCallDate")

	single := buildLeadMatch(models.LeadFilter{Statuses: []models.LeadStatus{models.LeadStatusPENDING}})
	assert.Equal(t, models.LeadStatusPENDING, single["status"])

	assert.Empty(t, buildLeadMatch(models.LeadFilter{}))
}

func TestBuildLeadSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, buildLeadSort(""))
	assert.Equal(t, "lastCallDate", buildLeadSort(models.SortByLastCallDate)[0].Key)
	assert.Equal(t, 1, buildLeadSort(models.SortByNextCallDate)[0].Value)
}

func TestBuildLeadSet(t *testing.T) {
	status := models.LeadStatusCALLBACK
	set := buildLeadSet(models.LeadPatch{Status: &status})

	assert.Equal(t, models.LeadStatusCALLBACK, set["status"])
	assert.Contains(t, set, "updatedAt")
	assert.NotContains(t, set, "callResponse")
	assert.Len(t, set, 2)
}
