// internal/handlers/console/pages.go
package console

import "html/template"

type menuItem struct {
	Name     string
	Href     string
	Children []menuItem
}

type shellPage struct {
	Title    string
	Heading  string
	User     string
	Role     string
	Endpoint string
	Menu     []menuItem
}

var pages = template.Must(template.New("console").Parse(`
{{define "nav"}}<nav>
<ul>
{{range .}}<li>{{if .Href}}<a href="{{.Href}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}
{{if .Children}}<ul>{{range .Children}}<li><a href="{{.Href}}">{{.Name}}</a></li>{{end}}</ul>{{end}}
</li>{{end}}
</ul>
</nav>{{end}}
{{define "shell"}}<!doctype html>
<html lang="es">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<header>
  <span>{{.User}}</span> <small>{{.Role}}</small>
  <form method="post" action="/logout"><button type="submit">Cerrar sesión</button></form>
</header>
{{template "nav" .Menu}}
<main{{if .Endpoint}} data-endpoint="{{.Endpoint}}"{{end}}>
  <h1>{{.Heading}}</h1>
</main>
</body>
</html>{{end}}
`))
