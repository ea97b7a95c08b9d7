package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Russian

	message.SetString(lang, "title.page", "somnia")
	message.SetString(lang, "meta.description", "Дневник снов, который печатается по общим часам.")

	message.SetString(lang, "tab.today", "сегодня")
	message.SetString(lang, "tab.log", "журнал")
	message.SetString(lang, "tab.info", "инфо")

	message.SetString(lang, "banner.last_login", "Последний вход: %s с консоли")

	message.SetString(lang, "log.empty", "Пока ни одного сна. Смотрите дальше.")
	message.SetString(lang, "log.count", "записей: %d")

	message.SetString(lang, "info.body", "Все посетители видят один и тот же сон в один и тот же момент. Сон печатается по предложениям, задерживается, стирается, затем показывается картинка и сон попадает в журнал.")

	message.SetString(lang, "lang.en", "English")
	message.SetString(lang, "lang.ru", "Русский")
}
