package scheduler

import (
	"fmt"

	"go.uber.org/zap"
)

type WarningCode string

const (
	WarnTurnTimeDefaulted  WarningCode = "turn_time_defaulted"
	WarnTurnTimeOutOfRange WarningCode = "turn_time_out_of_range"
	WarnHoursInverted      WarningCode = "hours_inverted"
	WarnTurnExceedsHours   WarningCode = "turn_time_exceeds_hours"
	WarnSlotCapReached     WarningCode = "slot_cap_reached"
	WarnTimedOut           WarningCode = "availability_timed_out"
)

// ConfigurationWarning reports restaurant configuration that could not be
// scheduled as given. It is returned with the result, never as an error.
type ConfigurationWarning struct {
	Code   WarningCode
	Detail string
}

func (w ConfigurationWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Detail)
}

func warnf(code WarningCode, format string, args ...any) ConfigurationWarning {
	return ConfigurationWarning{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// LogWarnings writes each warning at Warn level with the given context fields.
func LogWarnings(log *zap.Logger, warnings []ConfigurationWarning, fields ...zap.Field) {
	for _, w := range warnings {
		fs := make([]zap.Field, 0, len(fields)+2)
		fs = append(fs, fields...)
		fs = append(fs, zap.String("code", string(w.Code)), zap.String("detail", w.Detail))
		log.Warn("restaurant configuration warning", fs...)
	}
}
