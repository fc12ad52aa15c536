package logging

import "context"

type contextKey string

const (
	taskIDKey  contextKey = "task_id"
	alarmIDKey contextKey = "alarm_id"
)

// WithTaskID adds a task ID to the context.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, taskIDKey, taskID)
}

// WithAlarmID adds an alarm ID to the context.
func WithAlarmID(ctx context.Context, alarmID string) context.Context {
	return context.WithValue(ctx, alarmIDKey, alarmID)
}

// GetTaskID retrieves the task ID from the context.
// Returns empty string if not present.
func GetTaskID(ctx context.Context) string {
	if id, ok := ctx.Value(taskIDKey).(string); ok {
		return id
	}
	return ""
}

// GetAlarmID retrieves the alarm ID from the context.
// Returns empty string if not present.
func GetAlarmID(ctx context.Context) string {
	if id, ok := ctx.Value(alarmIDKey).(string); ok {
		return id
	}
	return ""
}
