// Package dashboard содержит клиентскую логику консоли без привязки к DOM:
// состояние списка, поиск, постраничный вывод, модель представления карточек
// и действия над ними (добавление блока, сохранение).
package dashboard

import (
	"strings"
	"time"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
)

const (
	// PageSize количество карточек на странице
	PageSize = 6
	// FeedbackDelay сколько держится результат сохранения и сколько ждет редирект после ошибки загрузки
	FeedbackDelay = 2 * time.Second
	// LoginPath страница входа
	LoginPath = "/index.html"
	// DashboardPath страница со списком пользователей
	DashboardPath = "/dashboard.html"
)

// FilterWithMappings оставляет только пользователей хотя бы с одним блоком ссылок
func FilterWithMappings(users []models.User) []models.User {
	result := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.HasMappings() {
			result = append(result, u)
		}
	}
	return result
}

// State неизменяемое состояние списка. Все переходы возвращают новое значение.
type State struct {
	all      []models.User
	filtered []models.User
	term     string
	page     int
}

// NewState создает состояние для уже отфильтрованного списка пользователей
func NewState(users []models.User) State {
	all := make([]models.User, len(users))
	copy(all, users)
	return State{
		all:      all,
		filtered: all,
		page:     1,
	}
}

// All весь загруженный список
func (s State) All() []models.User { return s.all }

// Filtered список после поиска
func (s State) Filtered() []models.User { return s.filtered }

// Term текущая строка поиска
func (s State) Term() string { return s.term }

// Page текущая страница, начиная с 1
func (s State) Page() int {
	if s.page < 1 {
		return 1
	}
	return s.page
}

// Search ищет подстроку в username без учета регистра и возвращается на первую страницу
func (s State) Search(term string) State {
	needle := strings.ToLower(term)
	filtered := make([]models.User, 0, len(s.all))
	for _, u := range s.all {
		if strings.Contains(strings.ToLower(u.Username), needle) {
			filtered = append(filtered, u)
		}
	}
	s.filtered = filtered
	s.term = term
	s.page = 1
	return s
}

// TotalPages ceil(len(filtered) / PageSize)
func (s State) TotalPages() int {
	return (len(s.filtered) + PageSize - 1) / PageSize
}

// GoTo переходит на страницу page, приводя ее к допустимому диапазону
func (s State) GoTo(page int) State {
	last := s.TotalPages()
	if last < 1 {
		last = 1
	}
	switch {
	case page < 1:
		page = 1
	case page > last:
		page = last
	}
	s.page = page
	return s
}

// Prev переходит на предыдущую страницу, если она есть
func (s State) Prev() State {
	if s.Page() > 1 {
		s.page = s.Page() - 1
	}
	return s
}

// Next переходит на следующую страницу, если она есть
func (s State) Next() State {
	if s.Page() < s.TotalPages() {
		s.page = s.Page() + 1
	}
	return s
}

// Visible пользователи текущей страницы: [(page-1)*PageSize, page*PageSize)
func (s State) Visible() []models.User {
	start := (s.Page() - 1) * PageSize
	if start >= len(s.filtered) {
		return nil
	}
	end := start + PageSize
	if end > len(s.filtered) {
		end = len(s.filtered)
	}
	return s.filtered[start:end]
}

// WithUser заменяет документ пользователя с тем же username в обоих списках
func (s State) WithUser(user models.User) State {
	s.all = replaceUser(s.all, user)
	s.filtered = replaceUser(s.filtered, user)
	return s
}

func replaceUser(users []models.User, user models.User) []models.User {
	result := make([]models.User, len(users))
	copy(result, users)
	for i := range result {
		if result[i].Username == user.Username {
			result[i] = user
		}
	}
	return result
}
