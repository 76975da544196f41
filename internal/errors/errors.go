// Package errors maps application errors onto gofulmen error envelopes for
// the HTTP service and the CLI.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/industrylens/industrylens/internal/ailink"
	"github.com/industrylens/industrylens/internal/core"
	"github.com/industrylens/industrylens/internal/metrics"
	"github.com/industrylens/industrylens/internal/observability"
	"github.com/industrylens/industrylens/internal/server/middleware"
	"github.com/industrylens/industrylens/internal/tables"
)

// Envelope codes.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeDecodeFailed       = "DECODE_FAILED"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	CodeTimeout            = "TIMEOUT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeCanceled           = "CANCELED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeInternal           = "INTERNAL_ERROR"
)

func NewInvalidInputError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInvalidInput, message)
}

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeNotFound, message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMethodNotAllowed, message)
}

func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInternal, message)
}

func NewServiceUnavailableError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeServiceUnavailable, message)
}

// Wrap builds an envelope for err carrying the request's correlation ID.
func Wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(code, message)
	envelope = envelope.WithCorrelationID(extractCorrelationID(ctx))
	envelope = envelope.WithTraceID(extractTraceID(ctx))
	return withWrappedError(envelope, err)
}

// FromError classifies an application error:
//
//   - core.ErrInvalidTitle and unknown table kinds become INVALID_INPUT
//   - a missing provider API key becomes CONFIG_INVALID
//   - *tables.DecodeError becomes DECODE_FAILED with the offset in details
//   - provider failures become EXTERNAL_SERVICE_ERROR, TIMEOUT, RATE_LIMITED,
//     CANCELED or SERVICE_UNAVAILABLE depending on the provider failure kind
//
// Anything else is INTERNAL_ERROR. Envelopes pass through unchanged.
func FromError(ctx context.Context, err error) *errors.ErrorEnvelope {
	if err == nil {
		return nil
	}

	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil {
		return envelope
	}

	if stderrors.Is(err, core.ErrInvalidTitle) || stderrors.Is(err, tables.ErrUnknownKind) {
		return Wrap(ctx, CodeInvalidInput, err, err.Error())
	}

	var decodeErr *tables.DecodeError
	if stderrors.As(err, &decodeErr) {
		env := Wrap(ctx, CodeDecodeFailed, err, decodeErr.Error())
		return env.WithDetails(map[string]interface{}{
			"offset": decodeErr.Offset,
			"reason": decodeErr.Reason,
		})
	}

	if stderrors.Is(err, ailink.ErrMissingAPIKey) {
		return Wrap(ctx, CodeConfigInvalid, err, "provider API key is not configured (set INDUSTRYLENS_AILINK_API_KEY or OPENAI_API_KEY)")
	}

	if stderrors.Is(err, core.ErrNotConfigured) {
		return Wrap(ctx, CodeServiceUnavailable, err, "generation service is not configured")
	}

	failure := ailink.ClassifyProviderError(err)
	code := CodeExternalService
	switch failure.Code {
	case "AILINK_PROVIDER_TIMEOUT":
		code = CodeTimeout
	case "AILINK_PROVIDER_RATE_LIMIT":
		code = CodeRateLimited
	case "AILINK_CANCELED":
		code = CodeCanceled
	case "AILINK_PROVIDER_AUTH":
		code = CodeServiceUnavailable
	}
	if code == CodeExternalService && !isProviderFailure(err) {
		env := Wrap(ctx, CodeInternal, err, "unexpected error")
		env, _ = env.WithSeverity(errors.SeverityHigh)
		return env
	}

	env := Wrap(ctx, code, err, failure.Message)
	details := map[string]interface{}{"provider_code": failure.Code}
	if failure.Details != "" {
		details["provider_message"] = failure.Details
	}
	return env.WithDetails(details)
}

func isProviderFailure(err error) bool {
	var perr interface{ Kind() string }
	return stderrors.As(err, &perr)
}

// extractCorrelationID gets correlation ID from context, falls back to generating new UUID
func extractCorrelationID(ctx context.Context) string {
	if ctx != nil {
		if requestID := middleware.GetRequestID(ctx); requestID != "" {
			return requestID
		}
	}
	return uuid.New().String()
}

// extractTraceID reuses the correlation ID; there is no distributed tracing.
func extractTraceID(ctx context.Context) string {
	return extractCorrelationID(ctx)
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}
	return FromError(context.Background(), err)
}

// EnsureCorrelationID attaches a correlation ID to the envelope using the context when available.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}
	if envelope.CorrelationID != "" {
		return envelope
	}

	var correlationID string
	if ctx != nil {
		correlationID = middleware.GetRequestID(ctx)
	}
	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}
	return envelope.WithCorrelationID(correlationID)
}

// HTTPStatusFromEnvelope resolves the HTTP status code corresponding to an error envelope.
func HTTPStatusFromEnvelope(envelope *errors.ErrorEnvelope) int {
	if envelope == nil {
		return http.StatusInternalServerError
	}
	return HTTPStatusFromCode(envelope.Code)
}

// HTTPStatusFromCode resolves the HTTP status code corresponding to an error code.
func HTTPStatusFromCode(code string) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeDecodeFailed:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeExternalService:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeCanceled:
		// nginx's client-closed-request; the caller is gone anyway.
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}
	updated, updateErr := envelope.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	if updateErr != nil {
		return envelope
	}
	return updated
}

// ResponseDetails returns the API-safe details of an envelope. Context
// (which carries raw wrapped errors) is kept for logs only.
func ResponseDetails(envelope *errors.ErrorEnvelope) map[string]interface{} {
	if envelope == nil || len(envelope.Details) == 0 {
		return nil
	}
	details := make(map[string]interface{}, len(envelope.Details))
	for key, value := range envelope.Details {
		details[key] = value
	}
	return details
}

// HTTPErrorDetail captures the error body returned to callers.
type HTTPErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// HTTPErrorResponse wraps HTTPErrorDetail in the standard envelope structure.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// RespondWithError classifies err and writes a JSON error response.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	envelope := FromError(ctx, err)
	if envelope == nil {
		envelope = EnsureEnvelope(nil)
	}
	RespondWithEnvelope(w, r, envelope)
}

// RespondWithEnvelope finalizes the provided envelope, logging and emitting metrics.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil {
		return
	}

	if r != nil {
		envelope = EnsureCorrelationID(envelope, r.Context())
	} else {
		envelope = EnsureCorrelationID(envelope, nil)
	}

	statusCode := HTTPStatusFromEnvelope(envelope)

	response := HTTPErrorResponse{
		Error: HTTPErrorDetail{
			Code:      envelope.Code,
			Message:   envelope.Message,
			Details:   ResponseDetails(envelope),
			RequestID: envelope.CorrelationID,
		},
	}

	logHTTPError(envelope, statusCode)
	emitErrorMetrics(r, envelope, statusCode)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func logHTTPError(envelope *errors.ErrorEnvelope, statusCode int) {
	logger := observability.Logger()
	if logger == nil || envelope == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", statusCode),
	}
	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}
	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}
	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("request_id", envelope.CorrelationID))
	}

	switch {
	case statusCode >= 500:
		logger.Error(envelope.Message, fields...)
	case statusCode >= 400 && statusCode != 499:
		logger.Warn(envelope.Message, fields...)
	default:
		logger.Info(envelope.Message, fields...)
	}
}

func emitErrorMetrics(r *http.Request, envelope *errors.ErrorEnvelope, statusCode int) {
	if envelope == nil {
		return
	}
	metrics.RecordError(envelope.Code, statusCode)
	if r != nil {
		metrics.RecordErrorByEndpoint(r.URL.Path, envelope.Code)
	}
}
