package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/configuration"
	"github.com/iota-uz/fieldops/pkg/httpapi"
)

type LoggerOptions struct {
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodyLength   int
	Repanic         bool
}

func NewLoggerOptions(logRequestBody bool, logResponseBody bool, maxBodyLength int) LoggerOptions {
	return LoggerOptions{
		LogRequestBody:  logRequestBody,
		LogResponseBody: logResponseBody,
		MaxBodyLength:   maxBodyLength,
	}
}

func DefaultLoggerOptions() LoggerOptions {
	return NewLoggerOptions(true, false, 512)
}

type responseCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
	body          *bytes.Buffer
	maxBody       int
}

func (w *responseCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

// Status returns the HTTP status code
func (w *responseCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *responseCaptureWriter) Write(b []byte) (int, error) {
	if !w.statusWritten {
		w.WriteHeader(http.StatusOK)
	}
	if room := w.maxBody - w.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		w.body.Write(b[:room])
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseCaptureWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseCaptureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

func wrapResponseWriter(w http.ResponseWriter, maxBody int) *responseCaptureWriter {
	return &responseCaptureWriter{
		ResponseWriter: w,
		body:           &bytes.Buffer{},
		maxBody:        maxBody,
	}
}

func getRealIP(r *http.Request, conf *configuration.Configuration) string {
	if len(r.Header.Get(conf.RealIPHeader)) > 0 {
		return r.Header.Get(conf.RealIPHeader)
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if len(r.Header.Get(conf.RequestIDHeader)) > 0 {
		return r.Header.Get(conf.RequestIDHeader)
	}
	return uuid.New().String()
}

var tracer = otel.Tracer("fieldops-middleware")

func TracedMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(
				r.Context(),
				"middleware."+name,
				trace.WithAttributes(
					attribute.String("middleware.name", name),
					attribute.String("http.method", r.Method),
				),
			)
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// WithLogger attaches a request-scoped logger and request params, opens the root span
// and turns panics into the JSON 500 envelope.
func WithLogger(logger *logrus.Logger, conf *configuration.Configuration, opts LoggerOptions) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				requestID := getRequestID(r, conf)
				realIP := getRealIP(r, conf)

				fieldsLogger := logger.WithFields(logrus.Fields{
					"request-id": requestID,
					"path":       r.URL.Path,
					"method":     r.Method,
				})

				fieldsLogger.WithFields(logrus.Fields{
					"timestamp":  start.UnixNano(),
					"host":       r.Host,
					"ip":         realIP,
					"user-agent": r.UserAgent(),
				}).Info("request started")

				isMutatingMethod := r.Method == http.MethodPost ||
					r.Method == http.MethodPut ||
					r.Method == http.MethodPatch ||
					r.Method == http.MethodDelete
				isJSON := strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json")

				if opts.LogRequestBody && isMutatingMethod && isJSON && r.Body != nil {
					bodyBuf := new(bytes.Buffer)
					if _, err := io.Copy(bodyBuf, r.Body); err != nil {
						fieldsLogger.WithError(err).Error("failed to read request-body")
						_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "failed to read request body", nil)
						return
					}
					r.Body = io.NopCloser(bytes.NewReader(bodyBuf.Bytes()))
					fieldsLogger.WithField("request-body", truncate(bodyBuf.String(), opts.MaxBodyLength)).Info("request-body captured")
				}

				propagator := propagation.TraceContext{}
				ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

				ctx, span := tracer.Start(
					ctx,
					"http.request",
					trace.WithAttributes(
						attribute.String("http.method", r.Method),
						attribute.String("http.url", r.URL.String()),
						attribute.String("http.route", r.URL.Path),
						attribute.String("http.user_agent", r.UserAgent()),
						attribute.String("http.request_id", requestID),
						attribute.String("net.host.name", r.Host),
						attribute.String("net.peer.ip", realIP),
					),
				)
				defer span.End()

				propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

				if spanContext := span.SpanContext(); spanContext.HasTraceID() {
					traceID := spanContext.TraceID().String()
					w.Header().Set("X-Trace-Id", traceID)
					fieldsLogger = fieldsLogger.WithField("trace-id", traceID)
				}
				w.Header().Set("X-Request-Id", requestID)

				wrappedWriter := wrapResponseWriter(w, opts.MaxBodyLength)

				ctx = composables.WithLogger(ctx, fieldsLogger)
				ctx = composables.WithParams(ctx, &composables.Params{
					IP:        realIP,
					UserAgent: r.UserAgent(),
					RequestID: requestID,
					Request:   r,
					Writer:    wrappedWriter,
				})

				defer func() {
					if recovered := recover(); recovered != nil {
						panicFields := logrus.Fields{
							"panic":       recovered,
							"stack":       string(debug.Stack()),
							"remote_addr": realIP,
							"status":      http.StatusInternalServerError,
							"duration":    time.Since(start),
						}
						if r.URL.RawQuery != "" {
							panicFields["query"] = r.URL.RawQuery
						}
						fieldsLogger.WithFields(panicFields).Error("panic recovered in request handler")

						if !wrappedWriter.statusWritten {
							_ = httpapi.WriteInternal(wrappedWriter, requestID, r.URL.Path)
						}
						if opts.Repanic {
							panic(recovered)
						}
					}
				}()

				next.ServeHTTP(wrappedWriter, r.WithContext(ctx))

				statusCode := wrappedWriter.Status()
				duration := time.Since(start)
				completed := fieldsLogger.WithFields(logrus.Fields{
					"duration":     duration,
					"completed":    true,
					"status-code":  statusCode,
					"status-class": statusCode / 100,
				})
				if opts.LogResponseBody && strings.Contains(wrappedWriter.Header().Get("Content-Type"), "application/json") {
					var parsed any
					if err := json.Unmarshal(wrappedWriter.body.Bytes(), &parsed); err == nil {
						completed = completed.WithField("response-body", parsed)
					}
				}
				completed.Info("request completed")

				span.SetAttributes(
					attribute.Int64("http.request_duration_ms", duration.Milliseconds()),
					attribute.Int("http.status_code", statusCode),
				)
			},
		)
	}
}
