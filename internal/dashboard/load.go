package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/InQaaaaGit/link_admin.git/internal/client"
	"github.com/InQaaaaGit/link_admin.git/internal/models"
)

// Lister источник списка пользователей: API-клиент или сервис на стороне сервера
type Lister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// LoadResult итог загрузки списка.
// Если Redirect не пуст, нужно перейти на него через RedirectAfter (0 означает сразу).
type LoadResult struct {
	Users         []models.User
	Err           error
	Message       string
	Redirect      string
	RedirectAfter time.Duration
}

// Failed сообщает, что загрузка не удалась
func (r LoadResult) Failed() bool {
	return r.Err != nil
}

// LoadUsers загружает список и оставляет только пользователей с блоками ссылок.
// На 401 сразу отправляет на вход, на любую другую ошибку показывает сообщение
// и отправляет на вход через FeedbackDelay. Повторов нет.
func LoadUsers(ctx context.Context, lister Lister) LoadResult {
	users, err := lister.ListUsers(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return LoadResult{Err: err, Redirect: LoginPath}
		}
		return LoadResult{
			Err:           err,
			Message:       LoadErrorMessage,
			Redirect:      LoginPath,
			RedirectAfter: FeedbackDelay,
		}
	}
	return LoadResult{Users: FilterWithMappings(users)}
}
