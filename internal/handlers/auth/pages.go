// internal/handlers/auth/pages.go
package auth

import "html/template"

type loginPage struct {
	Action   string
	Email    string
	Redirect string
	Error    string
}

type forbiddenPage struct {
	Home string
}

var pages = template.Must(template.New("pages").Parse(`
{{define "login"}}<!doctype html>
<html lang="es">
<head><meta charset="utf-8"><title>Iniciar sesión (Admin)</title></head>
<body>
<form method="post" action="{{.Action}}">
  <h1>Iniciar sesión (Admin)</h1>
  {{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
  <input type="hidden" name="redirect" value="{{.Redirect}}">
  <label>Correo <input type="email" name="email" value="{{.Email}}" required></label>
  <label>Contraseña <input type="password" name="password" required></label>
  <label><input type="checkbox" name="remember" value="true"> Recordarme</label>
  <button type="submit">Entrar</button>
</form>
</body>
</html>{{end}}
{{define "forbidden"}}<!doctype html>
<html lang="es">
<head><meta charset="utf-8"><title>403</title></head>
<body>
<h1>403</h1>
<p>No tienes permisos para acceder a esta sección.</p>
<a href="{{.Home}}">Volver</a>
</body>
</html>{{end}}
`))
