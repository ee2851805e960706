// Команда linkctl работает с консолью управления ссылками через HTTP API:
// выводит список пользователей и сохраняет их блоки ссылок.
package main

import "log"

// Задаются при сборке через -ldflags
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
