package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "title.page", "somnia")
	message.SetString(lang, "meta.description", "A dream journal typed out on a shared clock.")

	message.SetString(lang, "tab.today", "today")
	message.SetString(lang, "tab.log", "log")
	message.SetString(lang, "tab.info", "info")

	message.SetString(lang, "banner.last_login", "Last login: %s on console")

	message.SetString(lang, "log.empty", "No dreams logged yet. Keep watching.")
	message.SetString(lang, "log.count", "%d entries")

	message.SetString(lang, "info.body", "Every visitor sees the same dream at the same moment. Each dream is typed sentence by sentence, held, erased, then its picture is shown and it is written to the log.")

	message.SetString(lang, "lang.en", "English")
	message.SetString(lang, "lang.ru", "Русский")
}
