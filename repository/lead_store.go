package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/BerniceZTT/telecaller_crm/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// leadDocument 线索在集合中的存储结构，assignedTo只存用户ID
type leadDocument struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Name         string               `bson:"name"`
	Email        string               `bson:"email"`
	Phone        string               `bson:"phone"`
	Address      string               `bson:"address"`
	AssignedTo   primitive.ObjectID   `bson:"assignedTo"`
	Status       models.LeadStatus    `bson:"status"`
	CallResponse *models.CallResponse `bson:"callResponse"`
	CallNotes    *string              `bson:"callNotes"`
	LastCallDate *time.Time           `bson:"lastCallDate"`
	NextCallDate *time.Time           `bson:"nextCallDate"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

// MongoLeadStore 基于MongoDB的线索存储
type MongoLeadStore struct {
	leads *mongo.Collection
}

// NewMongoLeadStore 创建线索存储
func NewMongoLeadStore(db *mongo.Database) *MongoLeadStore {
	return &MongoLeadStore{leads: db.Collection(LeadsCollection)}
}

// Find 按条件查询线索
func (s *MongoLeadStore) Find(ctx context.Context, filter models.LeadFilter) ([]models.Lead, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildLeadMatch(filter)}},
		{{Key: "$sort", Value: buildLeadSort(filter.SortBy)}},
	}
	if filter.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: filter.Limit}})
	}
	pipeline = append(pipeline, assigneeLookupStages()...)

	return s.aggregateLeads(ctx, pipeline)
}

// FindByID 根据ID查询线索
func (s *MongoLeadStore) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": objID}}}}
	pipeline = append(pipeline, assigneeLookupStages()...)

	leads, err := s.aggregateLeads(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, ErrNotFound
	}
	return &leads[0], nil
}

// Create 创建线索
func (s *MongoLeadStore) Create(ctx context.Context, lead models.NewLead) (*models.Lead, error) {
	createdAt := lead.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	status := lead.Status
	if status == "" {
		status = models.LeadStatusPENDING
	}

	doc := leadDocument{
		ID:         primitive.NewObjectID(),
		Name:       lead.Name,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Address:    lead.Address,
		AssignedTo: lead.AssignedTo,
		Status:     status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if _, err := s.leads.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("创建线索失败: %w", err)
	}
	return s.FindByID(ctx, doc.ID.Hex())
}

// Patch 部分更新线索
func (s *MongoLeadStore) Patch(ctx context.Context, id string, patch models.LeadPatch) (*models.Lead, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	result, err := s.leads.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": buildLeadSet(patch)})
	if err != nil {
		return nil, fmt.Errorf("更新线索失败: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// Delete 删除线索
func (s *MongoLeadStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.leads.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("删除线索失败: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Count 统计满足条件的线索数
func (s *MongoLeadStore) Count(ctx context.Context, filter models.LeadFilter) (int64, error) {
	return s.leads.CountDocuments(ctx, buildLeadMatch(filter))
}

// Aggregate 按字段分组计数
func (s *MongoLeadStore) Aggregate(ctx context.Context, key models.LeadGroupKey, filter models.LeadFilter) (map[string]int64, error) {
	var groupID interface{}
	switch key {
	case models.GroupByStatus:
		groupID = "$status"
	case models.GroupByCallResponse:
		groupID = "$callResponse"
		filter.HasCallResponse = models.Bool(true)
	case models.GroupByLastCallDay:
		groupID = bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$lastCallDate"}}
		filter.HasLastCall = models.Bool(true)
	default:
		return nil, fmt.Errorf("不支持的分组字段: %s", key)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildLeadMatch(filter)}},
		{{Key: "$group", Value: bson.M{"_id": groupID, "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := s.leads.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("分组统计失败: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.CountItem
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("解析分组结果失败: %w", err)
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.ID] = row.Count
	}
	return result, nil
}

// aggregateLeads 执行聚合并解析线索
func (s *MongoLeadStore) aggregateLeads(ctx context.Context, pipeline mongo.Pipeline) ([]models.Lead, error) {
	cursor, err := s.leads.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("查询线索失败: %w", err)
	}
	defer cursor.Close(ctx)

	leads := []models.Lead{}
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("解析线索失败: %w", err)
	}
	return leads, nil
}

// assigneeLookupStages 关联负责人，只保留 _id/name/email
func assigneeLookupStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         UsersCollection,
			"localField":   "assignedTo",
			"foreignField": "_id",
			"as":           "assignee",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"assignedTo": bson.M{
				"_id":   "$assignedTo",
				"name":  bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$assignee.name", 0}}, ""}},
				"email": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$assignee.email", 0}}, ""}},
			},
		}}},
		{{Key: "$project", Value: bson.M{"assignee": 0}}},
	}
}

// buildLeadMatch 构建查询条件
func buildLeadMatch(filter models.LeadFilter) bson.M {
	match := bson.M{}

	if filter.AssignedTo != nil {
		match["assignedTo"] = *filter.AssignedTo
	}

	switch len(filter.Statuses) {
	case 0:
	case 1:
		match["status"] = filter.Statuses[0]
	default:
		match["status"] = bson.M{"$in": filter.Statuses}
	}

	lastCall := bson.M{}
	if filter.HasLastCall != nil {
		if *filter.HasLastCall {
			lastCall["$ne"] = nil
		} else {
			lastCall["$eq"] = nil
		}
	}
	if filter.LastCallFrom != nil {
		lastCall["$gte"] = *filter.LastCallFrom
	}
	if filter.LastCallTo != nil {
		lastCall["$lte"] = *filter.LastCallTo
	}
	if len(lastCall) > 0 {
		match["lastCallDate"] = lastCall
	}

	if filter.HasCallResponse != nil {
		if *filter.HasCallResponse {
			match["callResponse"] = bson.M{"$ne": nil}
		} else {
			match["callResponse"] = bson.M{"$eq": nil}
		}
	}

	nextCall := bson.M{}
	if filter.NextCallFrom != nil {
		nextCall["$gte"] = *filter.NextCallFrom
	}
	if filter.NextCallTo != nil {
		nextCall["$lte"] = *filter.NextCallTo
	}
	if len(nextCall) > 0 {
		match["nextCallDate"] = nextCall
	}

	return match
}

// buildLeadSort 构建排序，同值按ID倒序
func buildLeadSort(sortBy models.LeadSortField) bson.D {
	switch sortBy {
	case models.SortByLastCallDate:
		return bson.D{{Key: "lastCallDate", Value: -1}, {Key: "_id", Value: -1}}
	case models.SortByNextCallDate:
		return bson.D{{Key: "nextCallDate", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}

// buildLeadSet 构建$set更新内容
func buildLeadSet(patch models.LeadPatch) bson.M {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.CallResponse != nil {
		set["callResponse"] = *patch.CallResponse
	}
	if patch.CallNotes != nil {
		set["callNotes"] = *patch.CallNotes
	}
	if patch.LastCallDate != nil {
		set["lastCallDate"] = *patch.LastCallDate
	}
	if patch.NextCallDate != nil {
		set["nextCallDate"] = *patch.NextCallDate
	}
	return set
}
