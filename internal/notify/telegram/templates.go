package telegram

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/juststeveking/lookout/internal/notify"
)

var templates = template.Must(template.New("telegram").Funcs(template.FuncMap{
	"isHTTP": isHTTPURL,
}).Parse(`
{{- define "downtime" -}}
{{- if .StatuspageURL}}<a href="{{.StatuspageURL}}">⚠️ {{.Title}} ⚠️</a>{{else}}⚠️ {{.Title}} ⚠️{{end}}

{{range $i, $check := .FailedChecks}}{{if $i}}
{{end}}🔴 {{if isHTTP $check.Target}}<a href="{{$check.Target}}">{{$check.Name}}</a>{{else}}<b>{{$check.Name}}</b> ({{$check.Target}}){{end}}{{if $check.Error}}: {{$check.Error}}{{end}}{{end}}
{{- end -}}

{{- define "recovery" -}}
✅ All checks are up and running!
{{if .StatuspageURL}}<a href="{{.StatuspageURL}}">Status page</a>{{end}}
{{- end -}}
`))

type downtimeData struct {
	notify.DowntimeMessage
	StatuspageURL string
}

type recoveryData struct {
	StatuspageURL string
}

// DowntimeText renders the alert for the current failures
func DowntimeText(msg notify.DowntimeMessage, statuspageURL string) (string, error) {
	return render("downtime", downtimeData{DowntimeMessage: msg, StatuspageURL: statuspageURL})
}

// RecoveryText renders the all-clear reply
func RecoveryText(statuspageURL string) (string, error) {
	text, err := render("recovery", recoveryData{StatuspageURL: statuspageURL})
	return strings.TrimSpace(text), err
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func isHTTPURL(value string) bool {
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
