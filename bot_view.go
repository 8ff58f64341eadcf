package main

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/turbekoff/staminabot/pkg/calc"
	"github.com/turbekoff/staminabot/pkg/card"
	"github.com/turbekoff/staminabot/pkg/session"
)

const selectPrefix = "sel:"

var keypadKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("AC", "clear"),
		tgbotapi.NewInlineKeyboardButtonData("⌫", "undo"),
		tgbotapi.NewInlineKeyboardButtonData("%", "percent"),
		tgbotapi.NewInlineKeyboardButtonData("÷", "/"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("7", "7"),
		tgbotapi.NewInlineKeyboardButtonData("8", "8"),
		tgbotapi.NewInlineKeyboardButtonData("9", "9"),
		tgbotapi.NewInlineKeyboardButtonData("×", "*"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("4", "4"),
		tgbotapi.NewInlineKeyboardButtonData("5", "5"),
		tgbotapi.NewInlineKeyboardButtonData("6", "6"),
		tgbotapi.NewInlineKeyboardButtonData("-", "-"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("1", "1"),
		tgbotapi.NewInlineKeyboardButtonData("2", "2"),
		tgbotapi.NewInlineKeyboardButtonData("3", "3"),
		tgbotapi.NewInlineKeyboardButtonData("+", "+"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("(", "("),
		tgbotapi.NewInlineKeyboardButtonData(")", ")"),
		tgbotapi.NewInlineKeyboardButtonData("0", "0"),
		tgbotapi.NewInlineKeyboardButtonData("00", "00"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(".", "."),
		tgbotapi.NewInlineKeyboardButtonData("=", "equals"),
	),
)

func cardsKeyboard(cards []card.Card, selectedID string) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(cards) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cards))
	for _, c := range cards {
		label := fmt.Sprintf("%s %s %s / %s", levelMark(c.Level()), c.Name, calc.Format(c.Current), calc.Format(c.Max))
		if c.ID == selectedID {
			label = "▶ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, selectPrefix+c.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func levelMark(l card.Level) string {
	switch l {
	case card.LevelHigh:
		return "🔵"
	case card.LevelMid:
		return "🟠"
	}
	return "🔴"
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func keypadText(s *session.Session) string {
	c, ok := s.Store().Selected()
	if !ok {
		return "No card selected. Use /cards to pick one."
	}
	return fmt.Sprintf("%s\n%s %d%%\n\n%s",
		s.Status(),
		progressBar(c.Percent(), 10),
		c.Percent(),
		s.Display(),
	)
}

// splitNameMax reads "<name...> [max]" command arguments. The last word is
// the maximum when it looks like a number.
func splitNameMax(args string) (name, rawMax string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", ""
	}
	last := fields[len(fields)-1]
	if _, ok := calc.ParseNumber(last); ok {
		return strings.Join(fields[:len(fields)-1], " "), last
	}
	return strings.Join(fields, " "), ""
}

// presetMaxes maps "/preset" arguments onto body parts: a single value is
// used for every part, several values are taken in part order.
func presetMaxes(args string) map[string]string {
	fields := strings.Fields(args)
	maxes := make(map[string]string, len(card.PresetParts))
	for i, part := range card.PresetParts {
		switch {
		case len(fields) == 1:
			maxes[part.Key] = fields[0]
		case i < len(fields):
			maxes[part.Key] = fields[i]
		}
	}
	return maxes
}

func sessionKey(chatID, userID int64) string {
	return fmt.Sprintf("%d_%d", chatID, userID)
}

func storageKeyFor(key string) string {
	return card.StorageKey + ":" + key
}
