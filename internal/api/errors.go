package api

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Error is a failed backend call. Message is already user-facing; callers
// display it as-is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// GenericMessage is returned when nothing better can be derived from a
// failed response.
const GenericMessage = "Что-то пошло не так"

// messages maps backend detail strings, validation error kinds, and status
// codes to user-facing text. Lookups are ordered by specificity (see
// normalize), so a detail string can never be shadowed by a status-code key.
var messages = map[string]string{
	// detail strings the backend is known to send
	"Invalid credentials":            "Неверное имя пользователя или пароль",
	"Username already taken":         "Имя пользователя уже занято",
	"Task not found":                 "Задача не найдена",
	"Could not validate credentials": "Сессия истекла, войдите заново",
	"Not authenticated":              "Требуется вход в систему",

	// validation error kinds
	"string_too_short":        "Значение слишком короткое",
	"string_too_long":         "Значение слишком длинное",
	"missing":                 "Не заполнено обязательное поле",
	"string_pattern_mismatch": "Недопустимые символы в значении",

	// status-code fallbacks for bodies we can't parse
	"401": "Требуется вход в систему",
	"403": "Доступ запрещён",
	"404": "Не найдено",
	"422": "Проверьте заполнение полей",
	"500": "Ошибка сервера, попробуйте позже",
	"503": "Сервер временно недоступен",
}

// rewrites patches the few validation phrasings we pass through raw.
var rewrites = strings.NewReplacer(
	"String should have at least", "Минимальная длина:",
	"String should have at most", "Максимальная длина:",
	" characters", "",
	" character", "",
)

// fieldError is one entry of a validation error list.
type fieldError struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

// normalize derives a single user-facing message from a non-2xx response.
//
// Order: exact detail-string match, then the first field error's kind, then
// its raw message (with phrase rewrites), then the trimmed raw body, then
// the status code, then a cleaned-up raw body or the generic fallback.
func normalize(status int, body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
			if msg, ok := messages[detail]; ok {
				return msg
			}
			return cleanup(detail)
		}

		var fields []fieldError
		if err := json.Unmarshal(envelope.Detail, &fields); err == nil && len(fields) > 0 {
			if msg, ok := messages[fields[0].Type]; ok {
				return msg
			}
			if fields[0].Msg != "" {
				return rewrites.Replace(fields[0].Msg)
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if msg, ok := messages[text]; ok {
		return msg
	}
	if msg, ok := messages[strconv.Itoa(status)]; ok {
		return msg
	}
	return cleanup(text)
}

// cleanup strips quoting and a trailing period from raw error text.
func cleanup(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return GenericMessage
	}
	return s
}
