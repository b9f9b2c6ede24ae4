package provider

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/sells-group/visibility-cli/internal/model"
)

// Classify maps a provider call error to a FailureKind for the failed
// ProviderResult. Classification is best-effort: vendor SDKs wrap HTTP
// errors differently, so string heuristics back up the typed checks.
func Classify(err error) model.FailureKind {
	if err == nil {
		return model.FailureNone
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return model.FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return model.FailureTimeout
		}
		return model.FailureNetwork
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return model.FailureNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "401", "403", "unauthorized", "authentication", "invalid api key", "permission"):
		return model.FailureAuth
	case containsAny(msg, "429", "rate limit", "quota", "overloaded"):
		return model.FailureRateLimit
	case containsAny(msg, "timeout", "deadline exceeded"):
		return model.FailureTimeout
	case containsAny(msg, "connection reset", "connection refused", "broken pipe", "no such host", "eof"):
		return model.FailureNetwork
	default:
		return model.FailureUnknown
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
