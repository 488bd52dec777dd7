package history

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout     = "2006-01-02 15:04:05"
	fileTimeLayout = "2006.01.02_15-04_05"
	separator      = "--------------------"
)

// ReportHeader is the first line of a report and the caption of the document.
func ReportHeader(telegramID int64, username string) string {
	if username == "" {
		username = "username is N/A"
	}
	return fmt.Sprintf("История запросов пользователя %d (%s)\n\n", telegramID, username)
}

// RenderReport numbers rows from 1 in the order given.
func RenderReport(header string, rows []Row) string {
	var b strings.Builder
	b.WriteString(header)

	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Запись #%d\n\n", i+1)
		fmt.Fprintf(&b, "Дата запроса:\n%s\n\n", r.RequestedAt.Format(dateLayout))
		fmt.Fprintf(&b, "Модель ИИ:\n%s\n\n", r.ModelName)
		fmt.Fprintf(&b, "Общее количество токенов:\n%d\n", r.TotalTokens)
		fmt.Fprintf(&b, "Запрос:\n%s\n%s\n", separator, r.Request)
		fmt.Fprintf(&b, "Ответ:\n%s\n%s\n\n", separator, r.Answer)
	}
	return b.String()
}

// FileName builds <tg_id>_<label>_<YYYY.MM.DD_HH-MM_SS>.txt. Seconds keep
// repeated requests from appending to the previous report.
func FileName(telegramID int64, f Filter, now time.Time) string {
	return fmt.Sprintf("%d_%s_%s.txt", telegramID, f.Label(), now.Format(fileTimeLayout))
}
