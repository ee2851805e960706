package models

// AdminUsername имя служебной учетной записи, которая никогда не попадает
// в список управляемых пользователей и не редактируется через API.
const AdminUsername = "admin"

// LinkMapping представляет один блок ссылок пользователя.
// Содержимое Links непрозрачно для системы: обычно это URL, разделенные переводом строки.
type LinkMapping struct {
	Links string `json:"links"`
}

// Preferences хранит пользовательские настройки, из которых консоль использует только linkMappings
type Preferences struct {
	LinkMappings []LinkMapping `json:"linkMappings"`
}

// User представляет документ пользователя в проекции, которую отдает API
type User struct {
	ID          string       `json:"_id,omitempty"`
	Username    string       `json:"username"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// Mappings возвращает блоки ссылок пользователя или nil, если настроек нет
func (u User) Mappings() []LinkMapping {
	if u.Preferences == nil {
		return nil
	}
	return u.Preferences.LinkMappings
}

// HasMappings сообщает, есть ли у пользователя хотя бы один блок ссылок
func (u User) HasMappings() bool {
	return len(u.Mappings()) > 0
}

// WithMappings возвращает копию пользователя с замененным списком блоков
func (u User) WithMappings(mappings []LinkMapping) User {
	cp := make([]LinkMapping, len(mappings))
	copy(cp, mappings)
	u.Preferences = &Preferences{LinkMappings: cp}
	return u
}
