package main

import (
	"os"

	"github.com/chenxu233/memexia/internal/repository"
	"github.com/chenxu233/memexia/internal/vcs"
)

// openRepo opens the repository rooted at or above the current working directory.
func openRepo() (*repository.Repository, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return repository.Open(wd)
}

// resolveAuthor prefers git's own configured identity, falling back to
// the config file's author fields when git has none configured.
func resolveAuthor(repo *repository.Repository) vcs.Author {
	a := repo.GitEngine().DefaultAuthor()
	if a.Name == "Memexia User" && cfg.AuthorName != "" && cfg.AuthorName != "Memexia User" {
		return vcs.Author{Name: cfg.AuthorName, Email: cfg.AuthorEmail}
	}
	return a
}
