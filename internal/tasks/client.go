package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client owns the backlite queue and its SQLite file. The queue lives in its
// own file whichever driver the main database uses.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	workers int
	logger  *log.Logger

	mu      sync.Mutex
	running bool
	names   []string
}

// TasksDBPath returns the queue database path for a main database path:
// "data/hymnal.db" becomes "data/hymnal-tasks.db".
func TasksDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

// openQueueDB opens the queue file in WAL mode with a pool sized for the
// worker count.
func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(workers + 5)
	db.SetMaxIdleConns(workers + 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// NewClient opens the queue next to mainDBPath and installs its schema.
func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	db, err := openQueueDB(TasksDBPath(mainDBPath), cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}

	logger := log.Default().WithPrefix("tasks")
	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{logger},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up task queue: %w", err)
	}

	return &Client{queue: queue, db: db, workers: cfg.Workers, logger: logger}, nil
}

// Register adds queues. Call it before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, q := range queues {
		c.queue.Register(q)
		c.names = append(c.names, q.Config().Name)
	}
}

// Start runs the workers until Stop. A second call is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	names := append([]string(nil), c.names...)
	c.mu.Unlock()

	c.logger.Info("Task queue started", "workers", c.workers, "queues", names)
	c.queue.Start(ctx)
}

// Stop waits for in-flight tasks until ctx is done and reports whether
// every worker finished.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.Lock()
	running := c.running
	c.running = false
	c.mu.Unlock()
	if !running {
		return true
	}

	if !c.queue.Stop(ctx) {
		c.logger.Warn("Task queue stopped before every task finished")
		return false
	}
	c.logger.Info("Task queue stopped")
	return true
}

// Running reports whether the workers are active.
func (c *Client) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Ping checks the queue database.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Add starts an operation to enqueue one or more tasks.
func (c *Client) Add(tasks ...backlite.Task) *backlite.TaskAddOp {
	return c.queue.Add(tasks...)
}

// Status returns the status of a task by ID.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

// queueLogger adapts charmbracelet/log to backlite's key-value logger.
type queueLogger struct {
	logger *log.Logger
}

func (l queueLogger) Info(message string, params ...any) {
	l.logger.Info(message, params...)
}

func (l queueLogger) Error(message string, params ...any) {
	l.logger.Error(message, params...)
}
