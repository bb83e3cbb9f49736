package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BerniceZTT/telecaller_crm/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoOperationLogStore 操作日志存储
type MongoOperationLogStore struct {
	logs *mongo.Collection
}

// NewMongoOperationLogStore 创建操作日志存储
func NewMongoOperationLogStore(db *mongo.Database) *MongoOperationLogStore {
	return &MongoOperationLogStore{logs: db.Collection(ApiOperationLogsCollection)}
}

// Insert 写入一条操作日志
func (s *MongoOperationLogStore) Insert(ctx context.Context, log *models.OperationLog) error {
	if log.OperationTime.IsZero() {
		log.OperationTime = time.Now()
	}
	if _, err := s.logs.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("写入操作日志失败: %w", err)
	}
	return nil
}

// MemoryOperationLogStore 内存操作日志存储
type MemoryOperationLogStore struct {
	mu   sync.Mutex
	logs []models.OperationLog
}

// NewMemoryOperationLogStore 创建内存操作日志存储
func NewMemoryOperationLogStore() *MemoryOperationLogStore {
	return &MemoryOperationLogStore{}
}

// Insert 写入一条操作日志
func (s *MemoryOperationLogStore) Insert(_ context.Context, log *models.OperationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log.OperationTime.IsZero() {
		log.OperationTime = time.Now()
	}
	s.logs = append(s.logs, *log)
	return nil
}

// All 返回全部日志副本
func (s *MemoryOperationLogStore) All() []models.OperationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OperationLog(nil), s.logs...)
}
