package logger

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"

	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
)

// NewEchoRequestLogger logs every request through zap and seeds the request context with a
// correlation id taken from X-Request-ID. Health and metrics requests are skipped.
func NewEchoRequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	config := middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/health" || p == "/metrics"
		},
		BeforeNextFunc: func(c echo.Context) {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			if id != "" {
				c.SetRequest(c.Request().WithContext(WithCorrelationID(c.Request().Context(), id)))
			}
		},
		HandleError: true,

		LogLatency:      true,
		LogRemoteIP:     true,
		LogMethod:       true,
		LogURI:          true,
		LogRoutePath:    true,
		LogRequestID:    true,
		LogUserAgent:    true,
		LogStatus:       true,
		LogError:        true,
		LogResponseSize: true,
		LogHeaders:      []string{"Authorization", "X-Device-Id"},
		LogQueryParams:  []string{"country", "channel_id"},

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request.remote_ip", v.RemoteIP),
				zap.String("request.method", v.Method),
				zap.String("request.uri", v.URI),
				zap.String("request.route", v.RoutePath),
				zap.String("request.user_agent", v.UserAgent),
				zap.String("correlation_id", v.RequestID),
				zap.Int("response.status", v.Status),
				zap.Duration("response.latency", v.Latency),
				zap.Int64("response.size", v.ResponseSize),
			}
			if len(v.Headers) > 0 {
				fields = append(fields, zap.Any("request.headers", maskHeaders(v.Headers)))
			}
			if len(v.QueryParams) > 0 {
				fields = append(fields, zap.Any("request.query_params", v.QueryParams))
			}

			switch {
			case v.Status >= 500:
				if v.Error != nil {
					fields = append(fields, zap.Error(v.Error))
				}
				logger.Error("Server error", fields...)
			case v.Status >= 400:
				if v.Error != nil {
					fields = append(fields, zap.Error(v.Error))
				}
				logger.Warn("Client error", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
			return nil
		},
	}

	return middleware.RequestLoggerWithConfig(config)
}

func maskHeaders(headers map[string][]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, values := range headers {
		if len(values) == 0 {
			continue
		}
		val := values[0]
		if strings.EqualFold(k, "Authorization") {
			if len(val) > 15 {
				val = val[:10] + "..." + val[len(val)-5:]
			} else {
				val = "[MASKED]"
			}
		}
		out[k] = val
	}
	return out
}

// WithEchoLogger installs the zap-backed echo logger and a JSON error handler that renders
// AppErrors with their code.
func WithEchoLogger(e *echo.Echo, logger *zap.Logger) {
	e.Logger = NewEchoZapLogger(logger)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := apperrors.CodeOf(err)
		httpErr := apperrors.ToHTTPError(err)
		var echoErr *echo.HTTPError
		if apperrors.As(err, &echoErr) {
			code = apperrors.CodeOf(apperrors.FromHTTPError(echoErr))
		}

		if httpErr.Code >= http.StatusInternalServerError {
			logger.Error("HTTP error",
				zap.Error(err),
				zap.Int("status", httpErr.Code),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.String("correlation_id", CorrelationID(c.Request().Context())),
			)
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(httpErr.Code)
		} else {
			message, ok := httpErr.Message.(string)
			if !ok {
				message = http.StatusText(httpErr.Code)
			}
			sendErr = c.JSON(httpErr.Code, echo.Map{
				"success": false,
				"message": message,
				"error":   echo.Map{"code": code},
			})
		}
		if sendErr != nil {
			logger.Error("Failed to send error response", zap.Error(sendErr))
		}
	}
}

// EchoZapLogger adapts zap to echo.Logger.
type EchoZapLogger struct {
	Logger *zap.Logger
	sugar  *zap.SugaredLogger
}

func NewEchoZapLogger(logger *zap.Logger) *EchoZapLogger {
	return &EchoZapLogger{Logger: logger, sugar: logger.Sugar()}
}

func (l *EchoZapLogger) Output() io.Writer { return &zapWriter{logger: l.Logger} }

// SetOutput, SetLevel, SetHeader and SetPrefix are no-ops; zap owns those settings.
func (l *EchoZapLogger) SetOutput(io.Writer) {}
func (l *EchoZapLogger) Level() log.Lvl { return log.INFO }
func (l *EchoZapLogger) SetLevel(log.Lvl) {}
func (l *EchoZapLogger) SetHeader(string) {}
func (l *EchoZapLogger) Prefix() string { return "" }
func (l *EchoZapLogger) SetPrefix(string) {}
func (l *EchoZapLogger) Print(i ...interface{}) { l.sugar.Info(i...) }
func (l *EchoZapLogger) Printf(format string, i ...interface{}) {
	l.sugar.Infof(format, i...)
}
func (l *EchoZapLogger) Printj(j log.JSON) { l.Logger.Info("echo", zap.Any("json", j)) }
func (l *EchoZapLogger) Debug(i ...interface{}) { l.sugar.Debug(i...) }
func (l *EchoZapLogger) Debugf(format string, i ...interface{}) {
	l.sugar.Debugf(format, i...)
}
func (l *EchoZapLogger) Debugj(j log.JSON) { l.Logger.Debug("echo", zap.Any("json", j)) }
func (l *EchoZapLogger) Info(i ...interface{}) { l.sugar.Info(i...) }
func (l *EchoZapLogger) Infof(format string, i ...interface{}) {
	l.sugar.Infof(format, i...)
}
func (l *EchoZapLogger) Infoj(j log.JSON) { l.Logger.Info("echo", zap.Any("json", j)) }
func (l *EchoZapLogger) Warn(i ...interface{}) { l.sugar.Warn(i...) }
func (l *EchoZapLogger) Warnf(format string, i ...interface{}) {
	l.sugar.Warnf(format, i...)
}
func (l *EchoZapLogger) Warnj(j log.JSON) { l.Logger.Warn("echo", zap.Any("json", j)) }
func (l *EchoZapLogger) Error(i ...interface{}) { l.sugar.Error(i...) }
func (l *EchoZapLogger) Errorf(format string, i ...interface{}) {
	l.sugar.Errorf(format, i...)
}
func (l *EchoZapLogger) Errorj(j log.JSON) { l.Logger.Error("echo", zap.Any("json", j)) }
func (l *EchoZapLogger) Fatal(i ...interface{}) { l.sugar.Fatal(i...) }
func (l *EchoZapLogger) Fatalf(format string, i ...interface{}) {
	l.sugar.Fatalf(format, i...)
}
func (l *EchoZapLogger) Fatalj(j log.JSON) { l.Logger.Fatal("echo", zap.Any("json", j)) }
func (l *EchoZapLogger) Panic(i ...interface{}) { l.sugar.Panic(i...) }
func (l *EchoZapLogger) Panicf(format string, i ...interface{}) {
	l.sugar.Panicf(format, i...)
}
func (l *EchoZapLogger) Panicj(j log.JSON) { l.Logger.Panic("echo", zap.Any("json", j)) }

type zapWriter struct {
	logger *zap.Logger
}

func (w *zapWriter) Write(p []byte) (int, error) {
	w.logger.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
