package service

import (
	"strconv"

	tb "gopkg.in/telebot.v3"
)

// callback endpoints, the payload follows the unique
var (
	btnRate  = tb.Btn{Unique: "rate"}
	btnReply = tb.Btn{Unique: "reply"}
)

type program struct {
	key         string
	name        string
	description string
	defaultURL  string
}

// keys of the download urls that are not in programs
const (
	urlKeyWindows = "windows"
	urlKeyMacOS   = "macos"
	urlKeyPlugin  = "plugin"
)

var defaultTrackerURLs = map[string]string{
	urlKeyWindows: "https://yaware.com.ua/uk/download/",
	urlKeyMacOS:   "https://yaware.com.ua/uk/download/",
	urlKeyPlugin:  "https://yaware.com.ua/uk/download/",
}

// programs of the "other programs" menu, ordered by their number button
var programs = []program{
	{"chrome", "Google Chrome", "Быстрый браузер для работы с веб-сервисами компании.", "https://www.google.com/chrome/"},
	{"anydesk", "AnyDesk", "Программа для удаленного доступа, через нее администратор подключится к твоему устройству.", "https://anydesk.com/download"},
	{"telegram", "Telegram", "Мессенджер для рабочих чатов.", "https://desktop.telegram.org/"},
	{"libreoffice", "LibreOffice", "Бесплатный офисный пакет для документов и таблиц.", "https://www.libreoffice.org/download/download-libreoffice/"},
	{"capcut", "CapCut", "Видеоредактор для монтажа роликов.", "https://www.capcut.com/download"},
	{"adspower", "ADSPower", "Антидетект-браузер для работы с несколькими профилями.", "https://www.adspower.com/download"},
}

var programButtons = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣"}

func programByButton(text string) (program, bool) {
	for i, b := range programButtons {
		if b == text {
			return programs[i], true
		}
	}

	return program{}, false
}

func programByKey(key string) (program, bool) {
	for _, p := range programs {
		if p.key == key {
			return p, true
		}
	}

	return program{}, false
}

func replyKeyboard(rows ...[]string) *tb.ReplyMarkup {
	menu := &tb.ReplyMarkup{ResizeKeyboard: true}
	kbRows := make([]tb.Row, 0, len(rows))
	for _, row := range rows {
		btns := make([]tb.Btn, 0, len(row))
		for _, text := range row {
			btns = append(btns, menu.Text(text))
		}
		kbRows = append(kbRows, menu.Row(btns...))
	}

	menu.Reply(kbRows...)
	return menu
}

func mainKeyboard() *tb.ReplyMarkup {
	return replyKeyboard(
		[]string{btnInstallTracker},
		[]string{btnInstalled, btnOtherPrograms},
		[]string{btnNeedAdmin},
	)
}

func trackerKeyboard() *tb.ReplyMarkup {
	return replyKeyboard(
		[]string{btnWindows, btnMacOS, btnPlugin},
		[]string{btnInstalled, btnNeedAdmin},
		[]string{btnBack},
	)
}

func helpKeyboard() *tb.ReplyMarkup {
	return replyKeyboard(
		[]string{btnContactAdmin},
		[]string{btnRetry, btnBack},
	)
}

func backKeyboard() *tb.ReplyMarkup {
	return replyKeyboard([]string{btnBack})
}

func requestKeyboard() *tb.ReplyMarkup {
	return replyKeyboard(
		[]string{btnSendRequest},
		[]string{btnBack, btnOtherPrograms},
	)
}

func otherProgramsKeyboard() *tb.ReplyMarkup {
	return replyKeyboard(
		programButtons[:3],
		programButtons[3:],
		[]string{btnMainMenu, btnNeedAdmin},
	)
}

func urlButton(text, url string) *tb.ReplyMarkup {
	menu := &tb.ReplyMarkup{}
	menu.Inline(menu.Row(menu.URL(text, url)))
	return menu
}

func downloadButton(url string) *tb.ReplyMarkup {
	return urlButton(textDownload, url)
}

func trackerInfoKeyboard() *tb.ReplyMarkup {
	menu := &tb.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.URL("Что такое Yaware?", "https://yaware.com.ua/uk/what-is-yaware/")),
		menu.Row(menu.URL("Yaware - программа шпион?",
			"https://yaware.com.ua/uk/blog/tajm-treker-ne-shpigunske-programne-zabezpechennya-u-chomu-rizniczya/")),
	)
	return menu
}

func ratingKeyboard() *tb.ReplyMarkup {
	menu := &tb.ReplyMarkup{}
	menu.Inline(menu.Row(
		menu.Data("⭐", btnRate.Unique, "1"),
		menu.Data("⭐⭐", btnRate.Unique, "2"),
		menu.Data("⭐⭐⭐", btnRate.Unique, "3"),
	))
	return menu
}

func adminReplyKeyboard(uid int64) *tb.ReplyMarkup {
	menu := &tb.ReplyMarkup{}
	menu.Inline(menu.Row(
		menu.Data(textAdminReplyButton, btnReply.Unique, strconv.FormatInt(uid, 10)),
	))
	return menu
}
