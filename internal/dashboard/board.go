package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/InQaaaaGit/link_admin.git/internal/client"
	"github.com/InQaaaaGit/link_admin.git/internal/models"
)

var (
	// ErrCardNotRendered карточка пользователя не выведена на текущей странице
	ErrCardNotRendered = errors.New("card is not rendered")
	// ErrSaveInProgress кнопка сохранения заблокирована
	ErrSaveInProgress = errors.New("save is in progress")
	// ErrBlockOutOfRange нет блока с таким индексом
	ErrBlockOutOfRange = errors.New("block index out of range")
)

// Saver отправляет полный список блоков пользователя
type Saver interface {
	SaveLinkMappings(ctx context.Context, username string, mappings []models.LinkMapping) error
}

// SaveResult итог сохранения карточки. Alert непуст при ошибке.
type SaveResult struct {
	Mappings []models.LinkMapping
	Err      error
	Alert    string
}

type editor struct {
	username string
	blocks   []string
	button   Button
}

// Board контейнер состояния страницы: список, редакторы выведенных карточек и подписчики.
// Любое изменение списка (загрузка, поиск, смена страницы) пересоздает редакторы,
// поэтому несохраненные блоки теряются.
type Board struct {
	mu        sync.Mutex
	state     State
	editors   map[string]*editor
	saver     Saver
	afterFunc func(time.Duration, func())
	nextID    int
	listeners map[int]func(View)
}

// BoardOption настраивает Board
type BoardOption func(*Board)

// WithAfterFunc подменяет таймер, которым кнопка возвращается в исходное состояние
func WithAfterFunc(fn func(time.Duration, func())) BoardOption {
	return func(b *Board) {
		b.afterFunc = fn
	}
}

// NewBoard создает пустую доску
func NewBoard(saver Saver, opts ...BoardOption) *Board {
	b := &Board{
		state:   NewState(nil),
		editors: make(map[string]*editor),
		saver:   saver,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		listeners: make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe регистрирует обработчик, который получает модель после каждого изменения
func (b *Board) Subscribe(fn func(View)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Load загружает список через lister и заменяет состояние при успехе
func (b *Board) Load(ctx context.Context, lister Lister) LoadResult {
	result := LoadUsers(ctx, lister)
	if result.Failed() {
		return result
	}
	b.update(func(State) State { return NewState(result.Users) })
	return result
}

// Search применяет поиск
func (b *Board) Search(term string) {
	b.update(func(s State) State { return s.Search(term) })
}

// GoTo переходит на страницу
func (b *Board) GoTo(page int) {
	b.update(func(s State) State { return s.GoTo(page) })
}

// Prev переходит на предыдущую страницу
func (b *Board) Prev() {
	b.update(State.Prev)
}

// Next переходит на следующую страницу
func (b *Board) Next() {
	b.update(State.Next)
}

// Reveal ищет пользователя по точному username и переходит на его страницу
func (b *Board) Reveal(username string) bool {
	found := false
	b.update(func(s State) State {
		s = s.Search(username)
		for i, u := range s.Filtered() {
			if u.Username == username {
				found = true
				return s.GoTo(i/PageSize + 1)
			}
		}
		return s
	})
	return found
}

// State текущее состояние списка
func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// View текущая модель страницы с учетом несохраненных блоков и состояния кнопок
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

// Blocks текущее содержимое блоков карточки
func (b *Board) Blocks(username string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ed, ok := b.editors[username]
	if !ok {
		return nil, ErrCardNotRendered
	}
	blocks := make([]string, len(ed.blocks))
	copy(blocks, ed.blocks)
	return blocks, nil
}

// AddLinkBlock добавляет пустой блок в конец карточки. Запрос на сервер не отправляется.
func (b *Board) AddLinkBlock(username string) error {
	return b.edit(username, func(ed *editor) error {
		ed.blocks = append(ed.blocks, "")
		return nil
	})
}

// SetBlock меняет содержимое блока index
func (b *Board) SetBlock(username string, index int, content string) error {
	return b.edit(username, func(ed *editor) error {
		if index < 0 || index >= len(ed.blocks) {
			return fmt.Errorf("%w: %d", ErrBlockOutOfRange, index)
		}
		ed.blocks[index] = content
		return nil
	})
}

// SaveUser отправляет все блоки карточки в их порядке как полный новый список.
// Кнопка блокируется на время запроса и возвращается в исходное состояние
// через FeedbackDelay независимо от результата. Повторов нет.
func (b *Board) SaveUser(ctx context.Context, username string) SaveResult {
	b.mu.Lock()
	ed, ok := b.editors[username]
	if !ok {
		b.mu.Unlock()
		return SaveResult{Err: ErrCardNotRendered}
	}
	if ed.button.Disabled {
		b.mu.Unlock()
		return SaveResult{Err: ErrSaveInProgress}
	}

	mappings := make([]models.LinkMapping, 0, len(ed.blocks))
	for _, content := range ed.blocks {
		mappings = append(mappings, models.LinkMapping{Links: content})
	}
	ed.button = Button{Label: SavingLabel, Disabled: true, Phase: PhaseSaving}
	b.mu.Unlock()
	b.publish()

	err := b.saver.SaveLinkMappings(ctx, username, mappings)

	result := SaveResult{Mappings: mappings, Err: err}
	b.mu.Lock()
	if err == nil {
		ed.button = Button{Label: SuccessLabel, Disabled: true, Phase: PhaseSucceeded}
		for _, u := range b.state.All() {
			if u.Username == username {
				b.state = b.state.WithUser(u.WithMappings(mappings))
				break
			}
		}
	} else {
		ed.button = Button{Label: FailedLabel, Disabled: true, Phase: PhaseFailed}
		result.Alert = saveAlert(err)
	}
	b.mu.Unlock()
	b.publish()

	b.afterFunc(FeedbackDelay, func() {
		b.mu.Lock()
		if b.editors[username] == ed {
			ed.button = IdleButton(username)
		}
		b.mu.Unlock()
		b.publish()
	})

	return result
}

func saveAlert(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return "Save failed: " + apiErr.Message
	}
	return "An error occurred while saving."
}

func (b *Board) edit(username string, fn func(ed *editor) error) error {
	b.mu.Lock()
	ed, ok := b.editors[username]
	if !ok {
		b.mu.Unlock()
		return ErrCardNotRendered
	}
	err := fn(ed)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	b.publish()
	return nil
}

// update применяет переход состояния и пересоздает редакторы видимых карточек
func (b *Board) update(transition func(State) State) {
	b.mu.Lock()
	b.state = transition(b.state)
	b.editors = make(map[string]*editor)
	for _, u := range b.state.Visible() {
		blocks := make([]string, 0, len(u.Mappings()))
		for _, m := range u.Mappings() {
			blocks = append(blocks, m.Links)
		}
		b.editors[u.Username] = &editor{
			username: u.Username,
			blocks:   blocks,
			button:   IdleButton(u.Username),
		}
	}
	b.mu.Unlock()
	b.publish()
}

func (b *Board) viewLocked() View {
	view := BuildView(b.state)
	for i, card := range view.Cards {
		ed, ok := b.editors[card.Username]
		if !ok {
			continue
		}
		view.Cards[i] = buildCard(ed.username, ed.blocks, ed.button)
	}
	return view
}

func (b *Board) publish() {
	b.mu.Lock()
	view := b.viewLocked()
	listeners := make([]func(View), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(view)
	}
}
