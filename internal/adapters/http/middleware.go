package httpadapter

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 128
)

type requestIDContextKey struct{}

type requestTraceContextKey struct{}

// requestTrace collects pipeline facts a handler learns while serving the
// request so the access log line can carry them.
type requestTrace struct {
	corpus    domain.Corpus
	routed    bool
	citations int
	files     int
	chunks    int
}

func (t *requestTrace) attrs() []any {
	var out []any
	if t.routed {
		corpus := string(t.corpus)
		if corpus == "" {
			corpus = "none"
		}
		out = append(out, "corpus", corpus)
	}
	if t.citations > 0 {
		out = append(out, "citations", t.citations)
	}
	if t.files > 0 {
		out = append(out, "files", t.files, "chunks_indexed", t.chunks)
	}
	return out
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}

func traceFromContext(ctx context.Context) *requestTrace {
	trace, _ := ctx.Value(requestTraceContextKey{}).(*requestTrace)
	return trace
}

func noteDecision(ctx context.Context, decision domain.DecisionResult) {
	if trace := traceFromContext(ctx); trace != nil {
		trace.routed = true
		trace.corpus = decision.Code
	}
}

func noteAnswer(ctx context.Context, answer *domain.AnswerJSON) {
	if trace := traceFromContext(ctx); trace != nil && answer != nil {
		trace.citations = len(answer.Citations)
	}
}

func noteIngest(ctx context.Context, report *domain.IngestReport) {
	if trace := traceFromContext(ctx); trace != nil && report != nil {
		trace.files = report.FilesReceived
		trace.chunks = report.ChunksIndexed
	}
}

// requestIDMiddleware keeps a caller supplied id unless it is blank or longer
// than maxRequestIDLength.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		trace := &requestTrace{}

		next.ServeHTTP(recorder, r.WithContext(context.WithValue(r.Context(), requestTraceContextKey{}, trace)))

		remoteAddr := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			remoteAddr = host
		}

		logAttrs := []any{
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"bytes", recorder.bytesWritten,
			"remote_addr", remoteAddr,
		}
		logAttrs = append(logAttrs, trace.attrs()...)

		switch {
		case recorder.statusCode >= 500:
			slog.Error("http_request", logAttrs...)
		case recorder.statusCode >= 400:
			slog.Warn("http_request", logAttrs...)
		default:
			slog.Info("http_request", logAttrs...)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
