// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates message dispatch: provider resolution,
// attachment extraction, proxy calls, failure reporting, regeneration,
// and usage accounting.
//
// An orchestrator moves through Idle -> Submitting -> Idle per message.
// Exactly one submission may be in flight; a second Submit while busy
// returns ErrBusy without side effects.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/bogdan-ai/bogdan-tui/internal/extract"
	"github.com/bogdan-ai/bogdan-tui/internal/model"
	"github.com/bogdan-ai/bogdan-tui/internal/provider"
	"github.com/bogdan-ai/bogdan-tui/internal/proxy"
	"github.com/bogdan-ai/bogdan-tui/internal/router"
	"github.com/bogdan-ai/bogdan-tui/internal/session"
	"github.com/bogdan-ai/bogdan-tui/internal/settings"
	"github.com/bogdan-ai/bogdan-tui/internal/store"
)

// attachmentSeparator joins typed text and extracted attachment text in the
// dispatch payload. Only the typed text is kept on the displayed message.
const attachmentSeparator = "\n\n---\n\n"

// Dispatcher sends one chat request. Satisfied by *proxy.Client.
type Dispatcher interface {
	Send(ctx context.Context, req proxy.ChatRequest) (*proxy.ChatResponse, error)
}

// Notice is a transient user-facing report that never enters the transcript.
type Notice struct {
	Kind FailureKind
	Info bool
	Text string
}

// ============================================================================
// ORCHESTRATOR
// ============================================================================

// Orchestrator owns the conversation state for the active session.
type Orchestrator struct {
	mu   sync.Mutex
	busy bool

	store    *store.Store
	sessions *session.Manager
	client   Dispatcher
	registry *extract.Registry

	config   provider.ConfigMap
	settings settings.Settings
	stats    store.Stats

	// notify, when set, receives transient notices. Called without the
	// orchestrator lock held.
	notify func(Notice)
}

// New creates an orchestrator over persisted state.
func New(st *store.Store, sessions *session.Manager, client Dispatcher, registry *extract.Registry) *Orchestrator {
	if registry == nil {
		registry = extract.DefaultRegistry()
	}
	return &Orchestrator{
		store:    st,
		sessions: sessions,
		client:   client,
		registry: registry,
		config:   st.LoadConfig(),
		settings: st.LoadSettings(),
		stats:    st.LoadStats(),
	}
}

// OnNotice registers the transient notice sink.
func (o *Orchestrator) OnNotice(fn func(Notice)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notify = fn
}

func (o *Orchestrator) emit(n Notice) {
	o.mu.Lock()
	fn := o.notify
	o.mu.Unlock()
	if fn != nil {
		fn(n)
	}
}

// acquire flips the busy flag, failing with ErrBusy when already set.
func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return ErrBusy
	}
	o.busy = true
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

// ============================================================================
// SUBMISSION
// ============================================================================

// Submit sends a user message, optionally with file attachments, and returns
// the assistant's reply once it lands in the transcript.
//
// The typed text plus all attachment records always enter the history, even
// when dispatch fails; failures additionally record a synthetic assistant
// message and emit a notice. A nil message with a nil error means nothing was
// dispatchable (attachments yielded no text and no text was typed).
func (o *Orchestrator) Submit(ctx context.Context, text string, attachmentPaths ...string) (*model.Message, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	// Attachments are extracted sequentially before anything is recorded.
	// An extraction failure still leaves a transcript entry and a notice;
	// failures are never swallowed.
	attachments, extracted, err := o.extractAll(ctx, attachmentPaths)
	if err != nil {
		o.emit(Notice{
			Kind: FailureAttachment,
			Text: "Не удалось обработать вложение: " + err.Error(),
		})
		failed := model.NewFailedMessage("Извините, не удалось обработать вложение. " + err.Error())
		o.appendMessages(failed)
		return &failed, err
	}

	payload := buildPayload(text, extracted)
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return nil, ErrNothingToSend
	}

	history := o.sessions.Messages()
	userMsg := model.NewUserMessage(text)
	userMsg.Attachments = attachments
	o.appendMessages(userMsg)

	if payload == "" {
		// The attachment is on record; there is nothing to ask the model.
		return nil, nil
	}
	return o.dispatch(ctx, payload, history)
}

// extractAll runs extraction for each path in order.
func (o *Orchestrator) extractAll(ctx context.Context, paths []string) ([]model.Attachment, []string, error) {
	var attachments []model.Attachment
	var texts []string
	for _, path := range paths {
		att, text, err := o.registry.ExtractFile(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		attachments = append(attachments, att)
		if text != "" {
			texts = append(texts, text)
		}
	}
	return attachments, texts, nil
}

// buildPayload joins typed text and extracted attachment text.
func buildPayload(text string, extracted []string) string {
	parts := make([]string, 0, len(extracted)+1)
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, extracted...)
	return strings.Join(parts, attachmentSeparator)
}

// dispatch resolves a provider, calls the proxy, and records the outcome.
// history is the transcript as it stood before the user message was added.
func (o *Orchestrator) dispatch(ctx context.Context, payload string, history []model.Message) (*model.Message, error) {
	o.mu.Lock()
	cfg := o.config
	st := o.settings
	o.mu.Unlock()

	preferred, err := resolveProvider(payload, cfg)
	if err != nil {
		return o.recordFailure(err), err
	}

	req := proxy.NewChatRequest(payload, cfg,
		model.Window(history, st.ContextLength), st, preferred)

	resp, err := o.client.Send(ctx, req)
	if err != nil {
		log.Printf("CHAT: dispatch failed: %v", err)
		return o.recordFailure(err), err
	}

	reply := model.NewAssistantMessage(resp.Response, resp.Model)
	reply.Fallback = resp.FallbackUsed
	o.appendMessages(reply)

	// Credit goes to the provider that answered, not the one requested.
	o.mu.Lock()
	o.stats.Record(resp.Model, resp.FallbackUsed)
	stats := o.stats
	o.mu.Unlock()
	if err := o.store.SaveStats(stats); err != nil {
		log.Printf("CHAT: save stats: %v", err)
	}

	if resp.FallbackUsed {
		o.emit(Notice{
			Info: true,
			Text: fmt.Sprintf("Ответила резервная модель: %s.", resp.Model),
		})
	}
	return &reply, nil
}

// resolveProvider picks the preferred provider for a dispatch. A pinned
// provider is validated locally; automatic mode runs the selector over every
// usable provider.
func resolveProvider(payload string, cfg provider.ConfigMap) (provider.Provider, error) {
	if pinned, ok := cfg.Pinned(); ok {
		if !cfg.Providers[pinned].Usable() {
			return "", fmt.Errorf("%s: %w", pinned, ErrProviderUnavailable)
		}
		return pinned, nil
	}

	usable := cfg.Usable()
	if len(usable) == 0 {
		return "", ErrNoProviders
	}
	sel := router.SelectBestModel(payload, usable)
	log.Printf("CHAT: selected %s", sel)
	return sel.Provider, nil
}

// recordFailure appends the synthetic assistant message for err and emits
// the matching notice. The user message stays in the transcript. Generic
// upstream errors pass the server's text through verbatim behind a prefix.
func (o *Orchestrator) recordFailure(err error) *model.Message {
	kind := classifyFailure(err)
	notice := kind.noticeText()
	if kind == FailureGeneric {
		notice = "Ошибка API: " + err.Error()
	}
	o.emit(Notice{Kind: kind, Text: notice})

	failed := model.NewFailedMessage("Извините, не удалось получить ответ. " + notice)
	o.appendMessages(failed)
	return &failed
}

// appendMessages adds messages to the active session, persisting when
// auto-save is on.
func (o *Orchestrator) appendMessages(messages ...model.Message) {
	updated := append(o.sessions.Messages(), messages...)
	o.sessions.SetMessages(updated)

	o.mu.Lock()
	autoSave := o.settings.AutoSave
	o.mu.Unlock()
	if autoSave {
		if err := o.store.SaveHistory(updated); err != nil {
			log.Printf("CHAT: save history: %v", err)
		}
	}
}

// ============================================================================
// REGENERATION
// ============================================================================

// Regenerate removes the targeted assistant message and re-dispatches the
// user message that preceded it. The preceding user message is not
// duplicated; only the assistant turn is replaced.
//
// A no-op (nil, nil) when the target is missing, is not an assistant
// message, or has no preceding user message.
func (o *Orchestrator) Regenerate(ctx context.Context, messageID string) (*model.Message, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	messages := o.sessions.Messages()
	i := model.IndexByID(messages, messageID)
	if i < 0 || messages[i].Role != model.RoleAssistant {
		return nil, nil
	}
	j := model.LastUserMessageBefore(messages, i)
	if j < 0 {
		// The greeting and other lead-off assistant messages have nothing
		// to regenerate from.
		return nil, nil
	}
	payload := messages[j].Content

	trimmed := append([]model.Message{}, messages[:i]...)
	trimmed = append(trimmed, messages[i+1:]...)
	o.sessions.SetMessages(trimmed)

	// History stops before the user turn being re-asked; the payload
	// carries its content.
	return o.dispatch(ctx, payload, trimmed[:j])
}

// ============================================================================
// TRANSCRIPT OPERATIONS
// ============================================================================

// React adds an emoji reaction to a message.
func (o *Orchestrator) React(messageID, emoji string) error {
	messages := o.sessions.Messages()
	i := model.IndexByID(messages, messageID)
	if i < 0 {
		return fmt.Errorf("react: message %q not found", messageID)
	}
	messages[i].React(emoji)
	o.sessions.SetMessages(messages)
	return nil
}

// Clear resets the active session to a fresh greeting.
func (o *Orchestrator) Clear() {
	o.sessions.SetMessages([]model.Message{model.NewGreetingMessage()})
}

// Messages returns a snapshot of the active session's transcript.
func (o *Orchestrator) Messages() []model.Message {
	return o.sessions.Messages()
}

// ============================================================================
// STATE ACCESSORS
// ============================================================================

// Config returns the current provider configuration.
func (o *Orchestrator) Config() provider.ConfigMap {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.config
}

// SetConfig replaces and persists the provider configuration.
func (o *Orchestrator) SetConfig(cfg provider.ConfigMap) error {
	o.mu.Lock()
	o.config = cfg
	o.mu.Unlock()
	return o.store.SaveConfig(cfg)
}

// Settings returns the current generation settings.
func (o *Orchestrator) Settings() settings.Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// SetSettings validates, replaces, and persists the generation settings.
func (o *Orchestrator) SetSettings(st settings.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	o.mu.Lock()
	o.settings = st
	o.mu.Unlock()
	return o.store.SaveSettings(st)
}

// Stats returns a snapshot of usage statistics.
func (o *Orchestrator) Stats() store.Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := store.NewStats()
	for k, v := range o.stats.Messages {
		out.Messages[k] = v
	}
	out.Fallbacks = o.stats.Fallbacks
	return out
}

// ResetStats zeroes and persists usage statistics.
func (o *Orchestrator) ResetStats() error {
	o.mu.Lock()
	o.stats.Reset()
	stats := o.stats
	o.mu.Unlock()
	return o.store.SaveStats(stats)
}
