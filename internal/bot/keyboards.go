package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/vfied-bot/internal/models"
)

const (
	callbackDecide     = "decide"
	callbackBusy       = "busy"
	callbackMood       = "mood"
	callbackDietPrefix = "diet:"
)

type dietOption struct {
	tag   string
	label string
}

var dietOptions = []dietOption{
	{"vegetarian", "🥦 Vegetarian"},
	{"vegan", "🌱 Vegan"},
	{"gluten_free", "🌾 Gluten-free"},
	{"dairy_free", "🥛 Dairy-free"},
	{"halal", "☪️ Halal"},
	{"kosher", "✡️ Kosher"},
	{"keto", "🥩 Keto"},
	{"nut_free", "🥜 Nut-free"},
}

func dietLabel(tag string) (string, bool) {
	for _, o := range dietOptions {
		if o.tag == tag {
			return o.label, true
		}
	}
	return "", false
}

func decideKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Decide for me", callbackDecide),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Mood", callbackMood),
		),
	)
}

// resultKeyboard carries the follow-up actions of a rendered result
func resultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 New picks", callbackDecide),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Change mood", callbackMood),
		),
	)
}

// busyKeyboard replaces the triggering keyboard while a cycle runs
func busyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏳ Finding your picks…", callbackBusy),
		),
	)
}

func dietKeyboard(p models.Preferences) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, o := range dietOptions {
		label := o.label
		if p.HasDiet(o.tag) {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, callbackDietPrefix+o.tag))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🎯 Decide for me", callbackDecide),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
