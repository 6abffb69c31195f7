package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/discipulado/internal/domain"
	"github.com/alexanderramin/discipulado/internal/repository"
)

// resolveID matches input against full IDs first, then unique ID prefixes,
// so the 8-character IDs printed in tables can be pasted back.
func resolveID[T any](kind, input string, items []T, idOf func(T) string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}

	for _, it := range items {
		if idOf(it) == input {
			return input, nil
		}
	}

	var matches []string
	for _, it := range items {
		if strings.HasPrefix(idOf(it), input) {
			matches = append(matches, idOf(it))
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", kind, input, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

func resolveCaseID(ctx context.Context, app *App, input string) (string, error) {
	cases, err := app.Cases.List(ctx, app.Congregation, repository.CaseFilter{})
	if err != nil {
		return "", err
	}
	return resolveID("case", input, cases, func(c *domain.Case) string { return c.ID })
}

func resolveMemberID(ctx context.Context, app *App, input string) (string, error) {
	members, err := app.Members.List(ctx, app.Congregation)
	if err != nil {
		return "", err
	}
	return resolveID("member", input, members, func(m *domain.Member) string { return m.ID })
}

func resolveModuleID(ctx context.Context, app *App, input string) (string, error) {
	modules, err := app.Modules.List(ctx, app.Congregation, false)
	if err != nil {
		return "", err
	}
	return resolveID("module", input, modules, func(m *domain.Module) string { return m.ID })
}

func resolveEventID(ctx context.Context, app *App, input string) (string, error) {
	events, err := app.Confras.List(ctx, app.Congregation)
	if err != nil {
		return "", err
	}
	return resolveID("confraternização", input, events, func(e *domain.Confraternizacao) string { return e.ID })
}

// moduleTitles maps module IDs to titles for progress listings.
func moduleTitles(ctx context.Context, app *App) map[string]string {
	modules, err := app.Modules.List(ctx, app.Congregation, false)
	if err != nil {
		return nil
	}
	titles := make(map[string]string, len(modules))
	for _, m := range modules {
		titles[m.ID] = m.Title
	}
	return titles
}
