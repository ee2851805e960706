// Package buildinfo хранит сведения о сборке бинарника: версию, дату и commit.
// Значения передаются через -ldflags "-X main.buildVersion=...".
package buildinfo

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// NotAvailable подставляется вместо значений, не заданных при сборке
const NotAvailable = "N/A"

// Info содержит информацию о сборке приложения
type Info struct {
	Version string
	Date    string
	Commit  string
}

// NewInfo создает структуру с информацией о сборке. Пустые значения заменяются на NotAvailable.
func NewInfo(version, date, commit string) *Info {
	return &Info{
		Version: orNA(version),
		Date:    orNA(date),
		Commit:  orNA(commit),
	}
}

// Print выводит информацию о сборке в w
func (info *Info) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n", info.Version, info.Date, info.Commit)
	return err
}

// String возвращает строковое представление информации о сборке
func (info *Info) String() string {
	return fmt.Sprintf("Version: %s, Date: %s, Commit: %s", info.Version, info.Date, info.Commit)
}

// Fields поля для структурного лога при старте
func (info *Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("build_version", info.Version),
		zap.String("build_date", info.Date),
		zap.String("build_commit", info.Commit),
	}
}

func orNA(v string) string {
	if v == "" {
		return NotAvailable
	}
	return v
}
