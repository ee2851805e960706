package fatallib

import "log"

func Load(path string) string {
	if path == "" {
		log.Fatalf("empty path") // want `log.Fatalf outside package main, return an error instead`
	}
	log.Printf("loading %s", path)
	return path
}

func Must(err error) {
	if err != nil {
		log.Fatal(err) // want `log.Fatal outside package main, return an error instead`
	}
}
