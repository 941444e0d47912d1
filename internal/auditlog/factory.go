package auditlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"dlpgate/internal/storage"
)

// Result holds the initialized audit recorder and its dependencies.
// The caller is responsible for calling Close() to release resources.
type Result struct {
	Logger  LoggerInterface
	Reader  Reader
	Storage storage.Storage
}

// Close releases all resources held by the audit recorder.
// Safe to call multiple times.
func (r *Result) Close() error {
	var errs []error
	if r.Logger != nil {
		if err := r.Logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("logger close: %w", err))
		}
	}
	if r.Storage != nil {
		if err := r.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}

// New creates an audit recorder from configuration.
// Returns a Result containing the logger, reader and storage for lifecycle
// management. The caller must call Result.Close() during shutdown.
//
// If auditing is disabled, returns a NoopLogger with a nil reader.
func New(ctx context.Context, cfg Config, storageCfg storage.Config) (*Result, error) {
	if !cfg.Enabled {
		return &Result{
			Logger: &NoopLogger{},
		}, nil
	}

	if storageCfg.Type == "" {
		storageCfg.Type = storage.TypeFile
	}

	// The file backend has no database connection to manage.
	if storageCfg.Type == storage.TypeFile {
		fileStore, err := NewFileStore(cfg.Root, cfg.WriteTimeout, cfg.RetentionDays)
		if err != nil {
			return nil, fmt.Errorf("failed to create file store: %w", err)
		}
		reader, err := NewFileReader(fileStore.Root())
		if err != nil {
			fileStore.Close()
			return nil, fmt.Errorf("failed to create file reader: %w", err)
		}
		return &Result{
			Logger: NewLogger(fileStore, cfg),
			Reader: reader,
		}, nil
	}

	store, err := storage.New(ctx, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	logStore, reader, err := createBackend(store, cfg.RetentionDays)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Result{
		Logger:  NewLogger(logStore, cfg),
		Reader:  reader,
		Storage: store,
	}, nil
}

// createBackend creates the matching LogStore and Reader for a storage
// connection.
func createBackend(store storage.Storage, retentionDays int) (LogStore, Reader, error) {
	switch store.Type() {
	case storage.TypeSQLite:
		logStore, err := NewSQLiteStore(store.SQLiteDB(), retentionDays)
		if err != nil {
			return nil, nil, err
		}
		reader, err := NewSQLiteReader(store.SQLiteDB())
		if err != nil {
			return nil, nil, err
		}
		return logStore, reader, nil

	case storage.TypePostgreSQL:
		pool := store.PostgreSQLPool()
		if pool == nil {
			return nil, nil, fmt.Errorf("PostgreSQL pool is nil")
		}
		pgxPool, ok := pool.(*pgxpool.Pool)
		if !ok {
			return nil, nil, fmt.Errorf("invalid PostgreSQL pool type: %T", pool)
		}
		logStore, err := NewPostgreSQLStore(pgxPool, retentionDays)
		if err != nil {
			return nil, nil, err
		}
		reader, err := NewPostgreSQLReader(pgxPool)
		if err != nil {
			return nil, nil, err
		}
		return logStore, reader, nil

	case storage.TypeMongoDB:
		db := store.MongoDatabase()
		if db == nil {
			return nil, nil, fmt.Errorf("MongoDB database is nil")
		}
		mongoDB, ok := db.(*mongo.Database)
		if !ok {
			return nil, nil, fmt.Errorf("invalid MongoDB database type: %T", db)
		}
		logStore, err := NewMongoDBStore(mongoDB, retentionDays)
		if err != nil {
			return nil, nil, err
		}
		reader, err := NewMongoDBReader(mongoDB)
		if err != nil {
			return nil, nil, err
		}
		return logStore, reader, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage type: %s", store.Type())
	}
}
