package batch

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"dlpgate/internal/storage"
)

// New creates a batch store on a shared storage connection. A nil storage
// selects the in-memory store; the file audit backend has no database to
// persist batches into.
func New(ctx context.Context, shared storage.Storage) (Store, error) {
	if shared == nil {
		return NewMemoryStore(), nil
	}

	switch shared.Type() {
	case storage.TypeSQLite:
		return NewSQLiteStore(shared.SQLiteDB())
	case storage.TypePostgreSQL:
		pool := shared.PostgreSQLPool()
		if pool == nil {
			return nil, fmt.Errorf("PostgreSQL pool is nil")
		}
		pgxPool, ok := pool.(*pgxpool.Pool)
		if !ok {
			return nil, fmt.Errorf("invalid PostgreSQL pool type: %T", pool)
		}
		return NewPostgreSQLStore(ctx, pgxPool)
	case storage.TypeMongoDB:
		db := shared.MongoDatabase()
		if db == nil {
			return nil, fmt.Errorf("MongoDB database is nil")
		}
		mongoDB, ok := db.(*mongo.Database)
		if !ok {
			return nil, fmt.Errorf("invalid MongoDB database type: %T", db)
		}
		return NewMongoDBStore(mongoDB)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", shared.Type())
	}
}
