package service

import (
	"fmt"
	"strings"
)

// reply keyboard buttons, incoming text is matched against them
const (
	btnInstallTracker = "📥 Установить трекер"
	btnInstalled      = "✅ Я уже установил"
	btnOtherPrograms  = "🔧 Другие программы"
	btnNeedAdmin      = "❓ Нужна помощь админа"

	btnWindows = "🪟 Windows"
	btnMacOS   = "🍎 MacOS"
	btnPlugin  = "🌐 Плагин"
	btnBack    = "⬅️ Назад"

	btnContactAdmin = "👨‍💻 Обратиться к админу"
	btnRetry        = "🔄 Попробовать снова"
	btnSendRequest  = "📨 Отправить запрос"
	btnMainMenu     = "🏠 Главное меню"
)

const (
	textWelcome = "👋 *Привет!* Я бот поддержки.\n\n" +
		"Помогу установить трекер YaWare и другие рабочие программы, " +
		"отвечу на частые вопросы и передам твой запрос администраторам.\n\n" +
		"Выбери нужный пункт в меню ниже 👇"

	textHelp = "*Что я умею:*\n\n" +
		"📥 *Установить трекер* - инструкция по установке YaWare\n" +
		"🔧 *Другие программы* - ссылки на рабочие программы\n" +
		"❓ *Нужна помощь админа* - опиши проблему, я поищу решение или передам её администраторам\n\n" +
		"Команды: /start, /help, /chrome, /anydesk, /telegram, /yaware"

	textTrackerInfo = "⏱ *YaWare* - это тайм-трекер, который учитывает рабочее время.\n\n" +
		"Он фиксирует, когда ты работаешь и в каких программах, чтобы время считалось корректно."

	textTrackerDetails = "🔒 Трекер работает только в рабочей учетной записи и только в рабочее время.\n\n" +
		"Личные файлы, переписки и пароли он не собирает."

	textTrackerMoreInfo = "👇 Дополнительная информация:"

	textTrackerInstall = "Выбери версию для своего устройства 👇"

	textInstallationSuccess = "🎉 *Отлично!* Нажми «Отправить запрос», " +
		"и администратор проверит, что трекер подключен правильно."

	textOtherPrograms = "🔧 *Другие программы*\n\n" +
		"1️⃣ Google Chrome\n" +
		"2️⃣ AnyDesk\n" +
		"3️⃣ Telegram\n" +
		"4️⃣ LibreOffice\n" +
		"5️⃣ CapCut\n" +
		"6️⃣ ADSPower\n\n" +
		"Выбери номер программы 👇"

	textHelpRequest = "✍️ Опиши свою проблему одним сообщением, я попробую найти решение."

	textRetry = "Пожалуйста, опиши свою проблему другими словами:"

	textNoSolution = "😔 К сожалению, я не нашел готового решения этой проблемы."

	textOfferEscalation = "Хочешь обратиться к администраторам за помощью?"

	textAnydeskRecommendation = "💡 Чтобы администратор смог быстрее помочь, установи *AnyDesk*, " +
		"он понадобится для удаленного подключения."

	textRequestSent = "✅ *Запрос отправлен!* Администратор свяжется с тобой в ближайшее время."

	textRateRequest = "Пожалуйста, оцени мою работу 👇"

	textRatingThanks = "🙏 Спасибо за оценку!"

	textDownload = "📥 Скачать"

	textInstallAnydesk = "📥 Установить AnyDesk"

	textAdminReplyButton = "↩️ Відповісти"

	textAdminReplyLink = "*Я потурбувався про ваш час, то ж ось кнопка для відповіді користувачу:*\n" +
		"[Відкрити чат](%s)"

	textAdminReplyError = "Помилка при створенні посилання на чат"

	textRatingError = "Помилка при обробці оцінки"

	textNotAdmin = "Эта команда доступна только администраторам."

	textUnknownUserMessage = "Не указано"
)

func textTrackerDownload(platform string) string {
	return "🎉 *Отлично!* Ниже по ссылке ты сможешь скачать и установить *YaWare для " + platform + "* ⬇️.\n\n" +
		"Также на этой странице есть рекомендации по настройке устройства для работы с трекером 📋.\n\n" +
		"⚠️ Трекер устанавливается на *отдельную рабочую учетную запись* на личном или рабочем устройстве 🖥️."
}

const textPluginDownload = "🎉 *Отлично!* Ниже по ссылке ты сможешь скачать и установить плагин YaWare для браузера ⬇️🌐."

func textProgramCard(p program) string {
	return "*" + p.name + "*\n\n" + p.description + "\n\nНажми кнопку ниже для загрузки:"
}

func textAdminInstallRequest(username string) string {
	return "🆕 *Запрос на проверку установки трекера*\n\n" +
		"👤 Пользователь: " + escapeMsg(username)
}

func textAdminHelpRequest(ticket int64, username, userMessage string) string {
	return fmt.Sprintf("🆘 *Обращение №%d*\n\n"+
		"👤 Пользователь: %s\n"+
		"💬 Проблема: %s", ticket, escapeMsg(username), escapeMsg(userMessage))
}

func textRequestFailed(contacts []string) string {
	if len(contacts) == 0 {
		return "К сожалению, вышла ошибка при отправке запроса. Пожалуйста, попробуй позже."
	}

	return "К сожалению, вышла ошибка при отправке запроса. Пожалуйста, обратитесь к " +
		strings.Join(contacts, " или ") + " напрямую."
}

func textRatingStats(total int, byRating map[int]int) string {
	var sb strings.Builder
	sb.WriteString("📊 *Оценки*\n\n")
	for star := 3; star >= 1; star-- {
		sb.WriteString(strings.Repeat("⭐", star))
		fmt.Fprintf(&sb, ": %d\n", byRating[star])
	}
	fmt.Fprintf(&sb, "\nВсего: %d", total)
	return sb.String()
}

// escapeMsg escapes user supplied text for the legacy Markdown parse mode
func escapeMsg(msg string) string {
	// a backtick can not be escaped, replace it
	msg = strings.ReplaceAll(msg, "`", "'")

	msg = strings.ReplaceAll(msg, "_", "\\_")
	msg = strings.ReplaceAll(msg, "*", "\\*")
	msg = strings.ReplaceAll(msg, "[", "\\[")
	return msg
}
