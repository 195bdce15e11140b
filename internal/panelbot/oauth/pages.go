package oauth

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var pages = template.Must(template.New("pages").Parse(`
{{define "layout_head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 36rem; margin: 4rem auto; padding: 0 1rem; color: #222; }
code { background: #f2f2f2; padding: 0.1rem 0.3rem; }
.error { color: #b00020; }
</style>
</head>
<body>{{end}}

{{define "success"}}{{template "layout_head" .}}
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<ul>
<li>Panel: <a href="{{.PanelURL}}">{{.PanelURL}}</a></li>
<li>Email: <code>{{.Email}}</code></li>
{{if .Username}}<li>Username: <code>{{.Username}}</code></li>{{end}}
{{if .Password}}<li>Password: <code>{{.Password}}</code></li>{{end}}
</ul>
{{if .Password}}<p>Save this password now, it will not be shown again.</p>{{end}}
<p>You can close this page and return to Discord.</p>
</body></html>{{end}}

{{define "error"}}{{template "layout_head" .}}
<h1>{{.Title}}</h1>
<p class="error">{{.Message}}</p>
<p>Please request a new link from Discord and try again.</p>
</body></html>{{end}}
`))

// pageData 页面数据
type pageData struct {
	Title    string
	Message  string
	PanelURL string
	Email    string
	Username string
	Password string
}

func renderPage(c *gin.Context, status int, name string, data *pageData) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	c.Status(status)
	if err := pages.ExecuteTemplate(c.Writer, name, data); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("page", name).Msg("Failed to render page")
	}
}

func renderError(c *gin.Context, status int, message string) {
	renderPage(c, status, "error", &pageData{Title: "Linking failed", Message: message})
}
