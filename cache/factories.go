package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"
)

// NoOpLogger is a logger that does nothing.
type NoOpLogger struct{}

// Debug logs a debug message (no-op).
func (n *NoOpLogger) Debug(msg string, args ...any) {}

// Info logs an info message (no-op).
func (n *NoOpLogger) Info(msg string, args ...any) {}

// Warn logs a warning message (no-op).
func (n *NoOpLogger) Warn(msg string, args ...any) {}

// Error logs an error message (no-op).
func (n *NoOpLogger) Error(msg string, args ...any) {}

// NewNoOpLogger creates a new no-op logger.
func NewNoOpLogger() Logger {
	return &NoOpLogger{}
}

type ConsoleLogger struct {
	prefix string
}

// Debug logs a debug message to console.
func (cl *ConsoleLogger) Debug(msg string, args ...any) {
	cl.print("DEBUG", msg, args)
}

// Info logs an info message to console.
func (cl *ConsoleLogger) Info(msg string, args ...any) {
	cl.print("INFO", msg, args)
}

// Warn logs a warning message to console.
func (cl *ConsoleLogger) Warn(msg string, args ...any) {
	cl.print("WARN", msg, args)
}

// Error logs an error message to console.
func (cl *ConsoleLogger) Error(msg string, args ...any) {
	cl.print("ERROR", msg, args)
}

func (cl *ConsoleLogger) print(level, msg string, args []any) {
	fmt.Printf("[%s] %s: %s", level, cl.prefix, msg)
	if len(args) > 0 {
		fmt.Printf(" %v", args)
	}
	fmt.Println()
}

// NewConsoleLogger creates a new console logger.
func NewConsoleLogger(prefix string) Logger {
	return &ConsoleLogger{prefix: prefix}
}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

// Debug logs a debug message.
func (sl *SlogLogger) Debug(msg string, args ...any) {
	sl.logger.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs an info message.
func (sl *SlogLogger) Info(msg string, args ...any) {
	sl.logger.Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (sl *SlogLogger) Warn(msg string, args ...any) {
	sl.logger.Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs an error message.
func (sl *SlogLogger) Error(msg string, args ...any) {
	sl.logger.Log(context.Background(), slog.LevelError, msg, args...)
}

// NewSlogLogger creates a Logger that writes to logger.
// A nil logger uses slog.Default().
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

// JSONMarshaller is a marshaller that uses the standard JSON library.
type JSONMarshaller struct{}

// Marshal serializes a value to JSON.
func (jm *JSONMarshaller) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal deserializes a value from JSON.
func (jm *JSONMarshaller) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ContentType returns "application/json".
func (jm *JSONMarshaller) ContentType() string {
	return "application/json"
}

// NewJSONMarshaller creates a new JSON marshaller.
func NewJSONMarshaller() Marshaller {
	return &JSONMarshaller{}
}

// MsgpackMarshaller is a marshaller that uses MessagePack.
type MsgpackMarshaller struct{}

// Marshal serializes a value to MessagePack.
func (mm *MsgpackMarshaller) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal deserializes a value from MessagePack.
func (mm *MsgpackMarshaller) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// ContentType returns "application/msgpack".
func (mm *MsgpackMarshaller) ContentType() string {
	return "application/msgpack"
}

// NewMsgpackMarshaller creates a new MessagePack marshaller.
func NewMsgpackMarshaller() Marshaller {
	return &MsgpackMarshaller{}
}

// MarshallerFor returns the marshaller for a serialization format name.
func MarshallerFor(format string) (Marshaller, error) {
	switch format {
	case "json", "":
		return NewJSONMarshaller(), nil
	case "msgpack":
		return NewMsgpackMarshaller(), nil
	default:
		return nil, fmt.Errorf("unsupported serialization format %q: %w", format, ErrInvalidConfig)
	}
}

// ShardedTableFactory creates sharded tables.
type ShardedTableFactory struct {
	shards int
}

// NewShardedTableFactory creates a new sharded table factory.
func NewShardedTableFactory(shards int) TableFactory {
	return &ShardedTableFactory{shards: shards}
}

// Create creates a new sharded table.
func (f *ShardedTableFactory) Create() (Table, error) {
	return NewShardedTable(f.shards)
}

// LockedTableFactory creates single-lock tables.
type LockedTableFactory struct{}

// NewLockedTableFactory creates a new single-lock table factory.
func NewLockedTableFactory() TableFactory {
	return &LockedTableFactory{}
}

// Create creates a new single-lock table.
func (f *LockedTableFactory) Create() (Table, error) {
	return NewLockedTable(), nil
}

// NoOpInternerFactory creates interners that only copy.
type NoOpInternerFactory struct{}

// NewNoOpInternerFactory creates a new no-op interner factory.
func NewNoOpInternerFactory() InternerFactory {
	return &NoOpInternerFactory{}
}

// Create creates a new no-op interner.
func (f *NoOpInternerFactory) Create() (Interner, error) {
	return &NoOpInterner{}, nil
}

func tableFactoryFor(opts Options) TableFactory {
	if opts.TableType == TableLocked {
		return NewLockedTableFactory()
	}
	return NewShardedTableFactory(opts.Shards)
}

func internerFactoryFor(opts Options) InternerFactory {
	switch opts.InternerType {
	case InternerLRU:
		return NewLRUInternerFactory(opts.InternerConfig.MaxSize)
	case InternerNone:
		return NewNoOpInternerFactory()
	default:
		return NewLFUInternerFactory(opts.InternerConfig)
	}
}
