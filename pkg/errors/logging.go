package errors

import (
	"go.uber.org/zap"
)

// LogError records err with its error code. Client-class errors are logged at warn level.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil || logger == nil {
		return
	}

	allFields := make([]zap.Field, 0, len(fields)+2)
	allFields = append(allFields, zap.Error(err))

	code := CodeOf(err)
	allFields = append(allFields, zap.String("error_code", code))
	allFields = append(allFields, fields...)

	if ToHTTPStatus(code) < 500 {
		logger.Warn(msg, allFields...)
		return
	}
	logger.Error(msg, allFields...)
}
