package dashboard

import (
	"strconv"

	"github.com/InQaaaaGit/link_admin.git/internal/models"
)

// Тексты интерфейса
const (
	NoMatchMessage   = "No matching users found."
	NoLinksMessage   = "This user has no links yet. Add a link block to start."
	LoadErrorMessage = "Unable to load user data, you may need to log in again."
	BlockPlaceholder = "One link per line..."
	PrevLabel        = "Previous"
	NextLabel        = "Next"
	SavingLabel      = "Saving..."
	SuccessLabel     = "Saved!"
	FailedLabel      = "Save failed"
)

// ButtonPhase фаза кнопки сохранения
type ButtonPhase int

const (
	// PhaseIdle кнопка доступна
	PhaseIdle ButtonPhase = iota
	// PhaseSaving идет запрос
	PhaseSaving
	// PhaseSucceeded запрос завершился успешно
	PhaseSucceeded
	// PhaseFailed запрос завершился ошибкой
	PhaseFailed
)

// Button состояние кнопки сохранения карточки
type Button struct {
	Label    string
	Disabled bool
	Phase    ButtonPhase
}

// Block один блок ссылок (textarea) в карточке
type Block struct {
	Index       int
	Content     string
	Placeholder string
}

// Card карточка пользователя
type Card struct {
	Username     string
	Blocks       []Block
	EmptyMessage string
	Save         Button
}

// PageButton кнопка постраничной навигации
type PageButton struct {
	Label    string
	Page     int
	Active   bool
	Disabled bool
}

// Pagination модель блока навигации. При Visible == false блок не выводится.
type Pagination struct {
	Visible    bool
	TotalPages int
	Prev       PageButton
	Pages      []PageButton
	Next       PageButton
}

// View полная модель страницы со списком
type View struct {
	Term       string
	Page       int
	Cards      []Card
	NoMatch    bool
	Message    string
	Pagination Pagination
}

// SaveLabel исходная надпись кнопки сохранения
func SaveLabel(username string) string {
	return "Save links for " + username
}

// IdleButton кнопка в исходном состоянии
func IdleButton(username string) Button {
	return Button{Label: SaveLabel(username), Phase: PhaseIdle}
}

// BuildView строит модель страницы по состоянию. Модель пересчитывается целиком.
func BuildView(s State) View {
	view := View{
		Term:       s.Term(),
		Page:       s.Page(),
		Pagination: BuildPagination(s),
	}

	if len(s.Filtered()) == 0 {
		view.NoMatch = true
		view.Message = NoMatchMessage
		return view
	}

	visible := s.Visible()
	view.Cards = make([]Card, 0, len(visible))
	for _, u := range visible {
		view.Cards = append(view.Cards, BuildCard(u))
	}
	return view
}

// BuildCard строит карточку по документу пользователя
func BuildCard(user models.User) Card {
	contents := make([]string, 0, len(user.Mappings()))
	for _, m := range user.Mappings() {
		contents = append(contents, m.Links)
	}
	return buildCard(user.Username, contents, IdleButton(user.Username))
}

func buildCard(username string, contents []string, button Button) Card {
	card := Card{
		Username: username,
		Blocks:   make([]Block, 0, len(contents)),
		Save:     button,
	}
	for i, c := range contents {
		card.Blocks = append(card.Blocks, Block{Index: i, Content: c, Placeholder: BlockPlaceholder})
	}
	if len(card.Blocks) == 0 {
		card.EmptyMessage = NoLinksMessage
	}
	return card
}

// BuildPagination строит навигацию: Previous, все номера страниц, Next.
// Если страниц не больше одной, навигация скрыта.
func BuildPagination(s State) Pagination {
	total := s.TotalPages()
	p := Pagination{TotalPages: total}
	if total <= 1 {
		return p
	}

	current := s.Page()
	p.Visible = true
	p.Prev = PageButton{Label: PrevLabel, Page: current - 1, Disabled: current == 1}
	p.Next = PageButton{Label: NextLabel, Page: current + 1, Disabled: current == total}
	p.Pages = make([]PageButton, 0, total)
	for i := 1; i <= total; i++ {
		p.Pages = append(p.Pages, PageButton{Label: strconv.Itoa(i), Page: i, Active: i == current})
	}
	return p
}
