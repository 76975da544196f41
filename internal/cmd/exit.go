package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	apperrors "github.com/industrylens/industrylens/internal/errors"
	"github.com/industrylens/industrylens/internal/observability"
)

// ExitWithCode logs err with exit code metadata and exits the process.
// A nil logger writes to stderr instead.
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}

	if logger == nil {
		writeFatal(msg, err)
		fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
		os.Exit(info.Code)
	}

	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
	}
	if envelope, ok := err.(*errors.ErrorEnvelope); ok {
		fields = append(fields,
			zap.String("error_code", envelope.Code),
			zap.String("error_message", envelope.Message),
			zap.String("correlation_id", envelope.CorrelationID),
		)
		if envelope.Details != nil {
			fields = append(fields, zap.Any("error_details", envelope.Details))
		}
		if envelope.Context != nil {
			fields = append(fields, zap.Any("error_context", envelope.Context))
		}
	} else {
		fields = append(fields, zap.Error(err))
	}
	logger.Error(msg, fields...)

	os.Exit(info.Code)
}

// ExitWithCodeStderr is a variant that writes to stderr without a logger.
// Use this for early failures before logger initialization.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	ExitWithCode(nil, exitCode, msg, err)
}

func writeFatal(msg string, err error) {
	switch e := err.(type) {
	case nil:
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	case *errors.ErrorEnvelope:
		fmt.Fprintf(os.Stderr, "FATAL: %s [%s]: %s (correlation: %s)\n", msg, e.Code, e.Message, e.CorrelationID)
	default:
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	}
}

// exitCodeFor picks the process exit code for a command error.
func exitCodeFor(err error) foundry.ExitCode {
	envelope := apperrors.FromError(context.Background(), err)
	if envelope == nil {
		return foundry.ExitFailure
	}
	switch envelope.Code {
	case apperrors.CodeConfigInvalid:
		return foundry.ExitConfigInvalid
	case apperrors.CodeExternalService, apperrors.CodeTimeout, apperrors.CodeRateLimited, apperrors.CodeServiceUnavailable:
		return foundry.ExitExternalServiceUnavailable
	default:
		return foundry.ExitFailure
	}
}

// Fail reports a command error and exits with the matching code. It is used
// by main for errors returned from RunE.
func Fail(err error) {
	envelope := apperrors.FromError(context.Background(), err)
	code := exitCodeFor(err)
	if observability.CLILogger != nil && envelope != nil {
		ExitWithCode(observability.CLILogger, code, envelope.Message, envelope)
	}
	ExitWithCodeStderr(code, "Command failed", err)
}
