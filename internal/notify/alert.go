package notify

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// StartupMessage is sent once when the watcher starts.
const StartupMessage = "🟢 Bot działa i będzie monitorował ESPI."

// DetectedLayout formats the detection time of an alert.
const DetectedLayout = "2006-01-02 15:04:05"

// Alert describes a newly detected disclosure of a watched company.
type Alert struct {
	Company  string
	Title    string
	Link     string
	Date     string
	Topic    string
	Verdict  string
	Detected time.Time
}

// FormatAlert renders the alert as a Telegram HTML message.
func FormatAlert(a Alert) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🚨 <b>NOWY RAPORT ESPI - %s</b>\n\n", html.EscapeString(a.Company)))
	sb.WriteString(fmt.Sprintf("📋 <b>Nagłówek:</b> %s\n\n", html.EscapeString(a.Title)))
	sb.WriteString(fmt.Sprintf("🔗 <b>Link:</b> <a href=\"%s\">Zobacz raport</a>\n\n", html.EscapeString(a.Link)))
	sb.WriteString(fmt.Sprintf("📅 <b>Data ESPI:</b> %s\n\n", html.EscapeString(a.Date)))
	sb.WriteString(fmt.Sprintf("📋 <b>Temat:</b> %s\n\n", html.EscapeString(a.Topic)))
	sb.WriteString(fmt.Sprintf("⏰ <b>Wykryto:</b> %s\n\n", a.Detected.Format(DetectedLayout)))
	sb.WriteString("🤖 <b>OCENA AI:</b>\n")
	sb.WriteString(html.EscapeString(a.Verdict))
	return sb.String()
}
