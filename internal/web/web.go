// Package web содержит разметку консоли: страницу входа, страницу со списком
// пользователей и статические файлы. Разметка встроена в бинарник.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/InQaaaaGit/link_admin.git/internal/dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// LoginPage данные страницы входа
type LoginPage struct {
	APIPrefix string
}

// DashboardPage данные страницы со списком
type DashboardPage struct {
	APIPrefix string
	View      dashboard.View
	// Redirect и RedirectSeconds задают переход после ошибки загрузки
	Redirect        string
	RedirectSeconds int
}

// NewDashboardPage собирает данные страницы по результату загрузки и модели
func NewDashboardPage(apiPrefix string, result dashboard.LoadResult, view dashboard.View) DashboardPage {
	page := DashboardPage{APIPrefix: apiPrefix, View: view}
	if result.Failed() {
		page.View = dashboard.View{Message: result.Message}
		page.Redirect = result.Redirect
		page.RedirectSeconds = int(result.RedirectAfter / time.Second)
	}
	return page
}

// Renderer выводит страницы консоли
type Renderer struct {
	login     *template.Template
	dashboard *template.Template
}

// NewRenderer разбирает встроенные шаблоны
func NewRenderer() (*Renderer, error) {
	login, err := template.New("index.html").ParseFS(templateFS, "templates/layout.html", "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse login template: %w", err)
	}
	dash, err := template.New("dashboard.html").ParseFS(templateFS, "templates/layout.html", "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}
	return &Renderer{login: login, dashboard: dash}, nil
}

// Login выводит страницу входа
func (r *Renderer) Login(w io.Writer, page LoginPage) error {
	return render(w, r.login, "index.html", page)
}

// Dashboard выводит страницу со списком пользователей
func (r *Renderer) Dashboard(w io.Writer, page DashboardPage) error {
	return render(w, r.dashboard, "dashboard.html", page)
}

// render сначала собирает страницу в буфер, чтобы при ошибке шаблона не отдать половину ответа
func render(w io.Writer, t *template.Template, name string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler раздает встроенные JS и CSS
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
