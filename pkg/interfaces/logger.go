package interfaces

import "context"

// LogLevel уровень логирования
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// LogField дополнительное поле записи лога
type LogField struct {
	Key   string
	Value interface{}
}

// LoggerPort порт логирования сервисов каталога.
// Аргументы args принимают LogField; прочие значения пишутся как arg_N.
type LoggerPort interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	// Fatal пишет сообщение и завершает процесс
	Fatal(msg string, args ...interface{})

	// Варианты с контекстом добавляют request_id и user_id, если они есть в контексте
	DebugWithContext(ctx context.Context, msg string, args ...interface{})
	InfoWithContext(ctx context.Context, msg string, args ...interface{})
	WarnWithContext(ctx context.Context, msg string, args ...interface{})
	ErrorWithContext(ctx context.Context, msg string, args ...interface{})

	WithFields(fields ...LogField) LoggerPort
	WithField(key string, value interface{}) LoggerPort
	WithTraceID(traceID string) LoggerPort

	SetLevel(level LogLevel)
	GetLevel() LogLevel

	// Sync сбрасывает буферы
	Sync() error
}
