package bot

import (
	"fmt"
	"strings"

	"github.com/tbourn/cfbot/internal/domain"
	"github.com/tbourn/cfbot/internal/services"
)

// Reply texts.
const (
	msgDenied = "У вас нет доступа к этому боту. Напишите администратору."

	msgStart = "Привет! Я бот для управления Cloudflare.\n" +
		"Команды:\n" +
		"/register_domain example.com — создать домен\n" +
		"/dns_add example.com A 1.2.3.4 — добавить DNS запись\n" +
		"/dns_update zoneId recordId A 5.6.7.8 — обновить запись\n" +
		"/dns_delete zoneId recordId — удалить запись\n" +
		"/domains — список доменов\n" +
		"/help — показать команды ещё раз"

	msgHelp = "Команды:\n" +
		"/register_domain example.com\n" +
		"/dns_add example.com A 1.2.3.4\n" +
		"/dns_update zoneId recordId A 5.6.7.8\n" +
		"/dns_delete zoneId recordId\n" +
		"/domains — список доменов"

	usageRegisterDomain = "Использование: /register_domain example.com"
	usageDNSAdd         = "Использование: /dns_add example.com A 1.2.3.4"
	usageDNSUpdate      = "Использование: /dns_update zoneId recordId A 5.6.7.8"
	usageDNSDelete      = "Использование: /dns_delete zoneId recordId"

	msgZoneNotFound = "Zone для этого домена не найдена. Сначала зарегистрируйте домен."
	msgNoDomains    = "Пока нет зарегистрированных доменов."
	msgUnknownError = "Неизвестная ошибка"

	failRegister = "Ошибка при регистрации домена"
	failAdd      = "Ошибка при создании DNS записи"
	failUpdate   = "Ошибка при обновлении DNS записи"
	failDelete   = "Ошибка при удалении DNS записи"
	failDomains  = "Ошибка при получении списка доменов"
)

func zoneExistsText(zoneID string) string {
	return "Домен уже есть в Cloudflare. Zone ID: " + zoneID
}

func registeredText(r services.Registration) string {
	return fmt.Sprintf("Домен зарегистрирован.\nZone ID: %s\nNS записи:\n%s", r.ZoneID, strings.Join(r.NameServers, "\n"))
}

func recordText(action string, ref services.RecordRef) string {
	return fmt.Sprintf("DNS запись %s.\nZone ID: %s\nRecord ID: %s", action, ref.ZoneID, ref.RecordID)
}

func domainsText(list []domain.DomainRecord) string {
	if len(list) == 0 {
		return msgNoDomains
	}
	var b strings.Builder
	b.WriteString("Зарегистрированные домены:")
	for _, d := range list {
		fmt.Fprintf(&b, "\n• %s (zoneId: %s)", d.Name, d.ZoneID)
	}
	return b.String()
}

// failureText prefixes the error message with the operation label.
func failureText(label string, err error) string {
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = msgUnknownError
	}
	return label + ": " + msg
}
