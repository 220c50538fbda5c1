// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/bogdan-ai/bogdan-tui/internal/proxy"
)

var (
	// ErrBusy is returned when a submission is already in flight. Callers
	// typically ignore it: the user just has to wait for the current answer.
	ErrBusy = errors.New("submission already in flight")
	// ErrNoProviders means no provider is enabled and credentialed.
	ErrNoProviders = errors.New("no providers configured")
	// ErrProviderUnavailable means the pinned provider is disabled or has no
	// credential. Detected locally; no network call is made.
	ErrProviderUnavailable = errors.New("pinned provider unavailable")
	// ErrNothingToSend means neither typed text nor attachments produced any
	// dispatchable content.
	ErrNothingToSend = errors.New("nothing to send")
)

// FailureKind classifies a dispatch failure for user-facing reporting.
type FailureKind int

const (
	FailureGeneric FailureKind = iota
	FailureAuth
	FailureTimeout
	FailureNetwork
	FailureConfig
	FailureAttachment
)

// classifyFailure maps an error to a failure kind. Typed errors are checked
// first; anything else is classified by message substring, which also covers
// server-supplied error strings passed through verbatim.
func classifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrNoProviders), errors.Is(err, ErrProviderUnavailable):
		return FailureConfig
	case errors.Is(err, proxy.ErrAuthFailed):
		return FailureAuth
	case errors.Is(err, proxy.ErrTimeout):
		return FailureTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized"):
		return FailureAuth
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "deadline"):
		return FailureTimeout
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection") ||
		strings.Contains(msg, "no such host") || strings.Contains(msg, "refused"):
		return FailureNetwork
	default:
		return FailureGeneric
	}
}

// noticeText returns the transient notice shown for a failure kind.
func (k FailureKind) noticeText() string {
	switch k {
	case FailureAuth:
		return "Ошибка авторизации. Проверьте ключи API в настройках."
	case FailureTimeout:
		return "Превышено время ожидания ответа. Попробуйте ещё раз."
	case FailureNetwork:
		return "Ошибка сети. Проверьте подключение к интернету."
	case FailureConfig:
		return "Нет доступных моделей. Включите хотя бы одного провайдера."
	case FailureAttachment:
		return "Не удалось обработать вложение."
	default:
		return "Произошла ошибка при обработке запроса."
	}
}
