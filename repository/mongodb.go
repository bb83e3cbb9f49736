package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerniceZTT/telecaller_crm/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	// 集合名
	UsersCollection            = "users"
	LeadsCollection            = "leads"
	ApiOperationLogsCollection = "apiOperationLogs"
)

// Database MongoDB连接
type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

// InitMongoDB 初始化MongoDB连接
func InitMongoDB(ctx context.Context, uri, dbName string) (*Database, error) {
	// 设置连接超时
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("连接MongoDB失败: %w", err)
	}

	// 检查连接
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB失败: %w", err)
	}

	utils.Logger.Info().Str("database", dbName).Msg("已连接到MongoDB")
	return &Database{client: client, db: client.Database(dbName)}, nil
}

// DB 返回数据库实例
func (d *Database) DB() *mongo.Database {
	return d.db
}

// Close 关闭MongoDB连接
func (d *Database) Close(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}
	if err := d.client.Disconnect(ctx); err != nil {
		utils.Logger.Error().Err(err).Msg("断开MongoDB连接失败")
		return
	}
	utils.Logger.Info().Msg("已断开MongoDB连接")
}

// Ping 检查连接
func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes 创建查询所需索引，启动时执行
func (d *Database) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		LeadsCollection: {
			{Keys: bson.D{{Key: "assignedTo", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "lastCallDate", Value: -1}}},
			{Keys: bson.D{{Key: "nextCallDate", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		ApiOperationLogsCollection: {
			{Keys: bson.D{{Key: "operationTime", Value: -1}}},
		},
	}

	for collName, indexModels := range indexes {
		coll := d.db.Collection(collName)
		indexModels := indexModels
		err := ExecuteDbOperation(ctx, func() error {
			_, err := coll.Indexes().CreateMany(ctx, indexModels)
			return err
		}, 3)
		if err != nil {
			return fmt.Errorf("创建索引失败(%s): %w", collName, err)
		}
		utils.Logger.Info().Str("collection", collName).Int("indexes", len(indexModels)).Msg("索引已就绪")
	}
	return nil
}

// Status 获取数据库状态
func (d *Database) Status(ctx context.Context) (map[string]interface{}, error) {
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}

	result := map[string]interface{}{"driver": "mongo", "database": d.db.Name()}
	for _, collName := range []string{UsersCollection, LeadsCollection, ApiOperationLogsCollection} {
		count, err := d.db.Collection(collName).CountDocuments(ctx, bson.M{})
		if err != nil {
			utils.Logger.Error().Err(err).Str("collection", collName).Msg("获取集合计数失败")
			result[collName] = map[string]interface{}{"count": 0, "error": "count failed"}
			continue
		}
		result[collName] = map[string]interface{}{"count": count}
	}
	return result, nil
}

// ExecuteDbOperation 执行数据库操作，可重试错误按线性退避重试
func ExecuteDbOperation(ctx context.Context, operation func() error, retries int) error {
	if retries <= 0 {
		retries = 3
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err
		utils.Logger.Error().Err(err).Msgf("数据库操作失败，重试 (%d/%d)", i+1, retries)

		// 如果是不可重试的错误，立即返回
		if !isRetryableError(err) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(500*(i+1)) * time.Millisecond):
		}
	}

	return lastErr
}

// isRetryableError 判断错误是否可重试
func isRetryableError(err error) bool {
	// MongoDB可重试错误代码
	retryableCodes := map[int32]bool{
		6:     true, // HostUnreachable
		7:     true, // HostNotFound
		89:    true, // NetworkTimeout
		91:    true, // ShutdownInProgress
		189:   true, // PrimarySteppedDown
		10107: true, // NotMaster
		13436: true, // NotMasterNoSlaveOk
		11600: true, // InterruptedAtShutdown
		11602: true, // InterruptedDueToReplStateChange
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return retryableCodes[cmdErr.Code]
	}

	return mongo.IsNetworkError(err) || mongo.IsTimeout(err) || isNetworkError(err)
}

// isNetworkError 检查是否是网络错误
func isNetworkError(err error) bool {
	errMsg := strings.ToLower(err.Error())
	for _, ne := range []string{
		"connection refused",
		"connection reset",
		"connection closed",
		"no reachable servers",
		"server selection error",
	} {
		if strings.Contains(errMsg, ne) {
			return true
		}
	}
	return false
}
