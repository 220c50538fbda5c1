// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/bogdan-ai/bogdan-tui/internal/model"
	"github.com/bogdan-ai/bogdan-tui/internal/util"
)

// maxListNameRunes caps session names in the list so one long name cannot
// blow up the table.
const maxListNameRunes = 40

// FormatSessionList renders sessions as an aligned table for the terminal.
// Column widths are computed with display width, not byte length, so Cyrillic
// names line up. Each row ends with a short preview of the latest message.
func FormatSessionList(sessions []model.Session, activeID string) string {
	if len(sessions) == 0 {
		return "Нет сессий.\n"
	}

	nameWidth := 0
	for _, s := range sessions {
		name := util.TruncateRunesNoEllipsis(s.Name, maxListNameRunes)
		if w := runewidth.StringWidth(name); w > nameWidth {
			nameWidth = w
		}
	}

	var b strings.Builder
	for i, s := range sessions {
		marker := "  "
		if s.ID == activeID {
			marker = "* "
		}
		preview := ""
		if n := len(s.Messages); n > 0 {
			preview = "  " + s.Messages[n-1].Preview(30)
		}
		fmt.Fprintf(&b, "%s%d. %s  %d сообщ.  %s%s\n",
			marker, i+1,
			runewidth.FillRight(util.TruncateRunesNoEllipsis(s.Name, maxListNameRunes), nameWidth),
			s.MessageCount(),
			s.UpdatedAt.Format("2006-01-02 15:04"),
			preview)
	}
	return b.String()
}
