// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bogdan-ai/bogdan-tui/internal/export"
	"github.com/bogdan-ai/bogdan-tui/internal/model"
	"github.com/bogdan-ai/bogdan-tui/internal/provider"
)

const helpText = `Команды:
  /model <имя>          закрепить провайдера (gemini, llama, gigachat, phi, qwen, mistral)
  /auto                 вернуть автоматический выбор модели
  /sessions             список сессий
  /new [имя]            новая сессия
  /switch <номер>       переключить сессию
  /rename <номер> <имя> переименовать сессию
  /delete <номер>       удалить сессию
  /stats                статистика использования
  /resetstats           сбросить статистику
  /export <формат> [файл]  экспорт сессии (txt, md, json)
  /exportall <файл>     экспорт всех сессий в JSON
  /import <файл>        импорт сессий из JSON
  /clear                очистить текущую сессию
  /regen                перегенерировать последний ответ
  /react <эмодзи>       реакция на последний ответ
  /attach <файл> [текст] отправить сообщение с вложением
  /settings [ключ значение]  показать или изменить настройки
  /help                 эта справка
  /quit                 выход`

// handleCommand dispatches one slash command.
func (c *ChatCLI) handleCommand(ctx context.Context, input string) {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help":
		fmt.Println(helpText)
	case "/quit", "/exit":
		c.quit = true
	case "/model":
		c.cmdModel(args)
	case "/auto":
		c.cmdAuto()
	case "/sessions":
		fmt.Print(export.FormatSessionList(c.sessions.List(), c.sessions.ActiveID()))
	case "/new":
		s := c.sessions.Create(strings.Join(args, " "))
		c.printNotice(fmt.Sprintf("Создана сессия %q.", s.Name))
	case "/switch":
		c.cmdSwitch(args)
	case "/rename":
		c.cmdRename(args)
	case "/delete":
		c.cmdDelete(args)
	case "/stats":
		c.cmdStats()
	case "/resetstats":
		if err := c.orchestrator.ResetStats(); err != nil {
			c.printError(err)
			return
		}
		c.printNotice("Статистика сброшена.")
	case "/export":
		c.cmdExport(args)
	case "/exportall":
		c.cmdExportAll(args)
	case "/import":
		c.cmdImport(args)
	case "/clear":
		c.orchestrator.Clear()
		c.printNotice("Сессия очищена.")
	case "/regen":
		c.cmdRegen(ctx)
	case "/react":
		c.cmdReact(args)
	case "/attach":
		c.cmdAttach(ctx, args)
	case "/settings":
		c.cmdSettings(args)
	default:
		c.printNotice(fmt.Sprintf("Неизвестная команда %s. /help для справки.", cmd))
	}
}

func (c *ChatCLI) printError(err error) {
	fmt.Println(c.styles.Error.Render("! " + err.Error()))
}

// ============================================================================
// PROVIDERS
// ============================================================================

func (c *ChatCLI) cmdModel(args []string) {
	cfg := c.orchestrator.Config()
	if len(args) == 0 {
		if pinned, ok := cfg.Pinned(); ok {
			c.printNotice(fmt.Sprintf("Закреплена модель: %s.", pinned.DisplayName()))
		} else {
			c.printNotice("Автоматический выбор модели.")
		}
		return
	}

	p, err := provider.Parse(args[0])
	if err != nil {
		c.printError(err)
		return
	}
	cfg.Active = p.String()
	if err := c.orchestrator.SetConfig(cfg); err != nil {
		c.printError(err)
		return
	}
	c.printNotice(fmt.Sprintf("Модель закреплена: %s.", p.DisplayName()))
}

func (c *ChatCLI) cmdAuto() {
	cfg := c.orchestrator.Config()
	cfg.Active = provider.ActiveAuto
	if err := c.orchestrator.SetConfig(cfg); err != nil {
		c.printError(err)
		return
	}
	c.printNotice("Автоматический выбор модели включён.")
}

// ============================================================================
// SESSIONS
// ============================================================================

// sessionByNumber resolves a 1-based list index from the first argument.
func (c *ChatCLI) sessionByNumber(args []string) (model.Session, bool) {
	if len(args) == 0 {
		c.printNotice("Укажите номер сессии (см. /sessions).")
		return model.Session{}, false
	}
	n, err := strconv.Atoi(args[0])
	list := c.sessions.List()
	if err != nil || n < 1 || n > len(list) {
		c.printNotice(fmt.Sprintf("Нет сессии с номером %q.", args[0]))
		return model.Session{}, false
	}
	return list[n-1], true
}

func (c *ChatCLI) cmdSwitch(args []string) {
	s, ok := c.sessionByNumber(args)
	if !ok {
		return
	}
	if err := c.sessions.Switch(s.ID); err != nil {
		c.printError(err)
		return
	}
	c.printNotice(fmt.Sprintf("Активна сессия %q.", s.Name))
	c.printTranscript(c.sessions.Messages())
}

func (c *ChatCLI) cmdRename(args []string) {
	s, ok := c.sessionByNumber(args)
	if !ok {
		return
	}
	if len(args) < 2 {
		c.printNotice("Укажите новое имя.")
		return
	}
	name := strings.Join(args[1:], " ")
	if err := c.sessions.Rename(s.ID, name); err != nil {
		c.printError(err)
		return
	}
	c.printNotice(fmt.Sprintf("Сессия переименована в %q.", name))
}

func (c *ChatCLI) cmdDelete(args []string) {
	s, ok := c.sessionByNumber(args)
	if !ok {
		return
	}
	if err := c.sessions.Delete(s.ID); err != nil {
		c.printError(err)
		return
	}
	c.printNotice(fmt.Sprintf("Сессия %q удалена. Активна %q.", s.Name, c.sessions.Active().Name))
}

// ============================================================================
// STATS
// ============================================================================

func (c *ChatCLI) cmdStats() {
	stats := c.orchestrator.Stats()
	if stats.Total() == 0 {
		c.printNotice("Статистика пуста.")
		return
	}
	fmt.Printf("Всего ответов: %d\n", stats.Total())
	for _, p := range provider.All {
		if n := stats.Messages[p.String()]; n > 0 {
			fmt.Printf("  %-10s %d\n", p, n)
		}
	}
	if stats.Fallbacks > 0 {
		fmt.Printf("Ответов от резервных моделей: %d\n", stats.Fallbacks)
	}
}

// ============================================================================
// EXPORT / IMPORT
// ============================================================================

func (c *ChatCLI) cmdExport(args []string) {
	if len(args) == 0 {
		c.printNotice("Укажите формат: txt, md или json.")
		return
	}
	exporter, err := export.ByFormat(args[0])
	if err != nil {
		c.printError(err)
		return
	}

	active := c.sessions.Active()
	path := strings.ReplaceAll(active.Name, " ", "-")
	if len(args) > 1 {
		path = args[1]
	}
	written, err := export.ToFile(exporter, active, path)
	if err != nil {
		c.printError(err)
		return
	}
	c.printNotice(fmt.Sprintf("Экспортировано в %s.", written))
}

func (c *ChatCLI) cmdExportAll(args []string) {
	path := "bogdan-sessions.json"
	if len(args) > 0 {
		path = args[0]
	}
	data, err := c.sessions.ExportAll()
	if err != nil {
		c.printError(err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printError(err)
		return
	}
	c.printNotice(fmt.Sprintf("Все сессии экспортированы в %s.", path))
}

func (c *ChatCLI) cmdImport(args []string) {
	if len(args) == 0 {
		c.printNotice("Укажите файл для импорта.")
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		c.printError(err)
		return
	}
	added, err := c.sessions.Import(data)
	if err != nil {
		c.printError(err)
		return
	}
	c.printNotice(fmt.Sprintf("Импортировано сессий: %d.", added))
}

// ============================================================================
// TRANSCRIPT
// ============================================================================

// lastAssistantID finds the most recent assistant message worth acting on.
func (c *ChatCLI) lastAssistantID() (string, bool) {
	messages := c.sessions.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleAssistant {
			return messages[i].ID, true
		}
	}
	return "", false
}

func (c *ChatCLI) cmdRegen(ctx context.Context) {
	id, ok := c.lastAssistantID()
	if !ok {
		c.printNotice("Нет ответа для перегенерации.")
		return
	}
	reply, err := c.orchestrator.Regenerate(ctx, id)
	if err != nil {
		if reply != nil {
			c.printMessage(*reply)
		}
		return
	}
	if reply == nil {
		c.printNotice("Этот ответ нельзя перегенерировать.")
		return
	}
	c.printMessage(*reply)
}

func (c *ChatCLI) cmdReact(args []string) {
	if len(args) == 0 {
		c.printNotice("Укажите эмодзи.")
		return
	}
	id, ok := c.lastAssistantID()
	if !ok {
		c.printNotice("Нет сообщения для реакции.")
		return
	}
	if err := c.orchestrator.React(id, args[0]); err != nil {
		c.printError(err)
		return
	}
	c.printNotice("Реакция добавлена.")
}

func (c *ChatCLI) cmdAttach(ctx context.Context, args []string) {
	if len(args) == 0 {
		c.printNotice("Укажите файл.")
		return
	}
	text := strings.Join(args[1:], " ")
	c.submit(ctx, text, args[0])
}

// ============================================================================
// SETTINGS
// ============================================================================

func (c *ChatCLI) cmdSettings(args []string) {
	st := c.orchestrator.Settings()

	if len(args) == 0 {
		fmt.Printf("temperature     %.2f\n", st.Temperature)
		fmt.Printf("max_tokens      %d\n", st.MaxTokens)
		fmt.Printf("context_length  %d\n", st.ContextLength)
		fmt.Printf("auto_save       %v\n", st.AutoSave)
		fmt.Printf("streaming       %v\n", st.Streaming)
		fmt.Printf("language        %s\n", st.Language)
		fmt.Printf("system_prompt   %q\n", st.SystemPrompt)
		return
	}
	if len(args) < 2 {
		c.printNotice("Использование: /settings <ключ> <значение>.")
		return
	}

	key, value := args[0], strings.Join(args[1:], " ")
	switch key {
	case "temperature":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			st.Temperature = v
		}
	case "max_tokens":
		if v, err := strconv.Atoi(value); err == nil {
			st.MaxTokens = v
		}
	case "context_length":
		if v, err := strconv.Atoi(value); err == nil {
			st.ContextLength = v
		}
	case "auto_save":
		st.AutoSave = value == "true" || value == "on"
	case "streaming":
		st.Streaming = value == "true" || value == "on"
	case "language":
		st.Language = value
	case "system_prompt":
		st.SystemPrompt = value
	default:
		c.printNotice(fmt.Sprintf("Неизвестная настройка %q.", key))
		return
	}

	if err := c.orchestrator.SetSettings(st); err != nil {
		c.printError(err)
		return
	}
	c.printNotice("Настройки сохранены.")
}
