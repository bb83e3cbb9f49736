package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BerniceZTT/telecaller_crm/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserStore 基于MongoDB的用户存储
type MongoUserStore struct {
	users *mongo.Collection
}

// NewMongoUserStore 创建用户存储
func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{users: db.Collection(UsersCollection)}
}

// FindByID 根据ID查找用户
func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": objID})
}

// FindByEmail 根据邮箱查找用户
func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

// Create 创建用户
func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("创建用户失败: %w", err)
	}
	return nil
}

// FindByRole 查询指定角色的用户，按姓名排序
func (s *MongoUserStore) FindByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.users.Find(ctx, bson.M{"role": role}, opts)
	if err != nil {
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("解析用户失败: %w", err)
	}
	return users, nil
}

// CountByRole 统计指定角色的用户数
func (s *MongoUserStore) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	return s.users.CountDocuments(ctx, bson.M{"role": role})
}

// findOne 查询单个用户
func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}
