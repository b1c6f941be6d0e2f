// Package packages provides the compiled-in package manager: an overview of
// installed extensions with a way to authorize rejected ones.
package packages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/claytechnologie/toolsdk/internal/config"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/execctx"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/handler"
	"github.com/claytechnologie/toolsdk/internal/menu"
	"github.com/claytechnologie/toolsdk/internal/plugin"
)

// Unit location and entry point of the package manager.
const (
	Method = "package"
	Path   = "packages"
	Source = "package.lua"
	Action = "start"
)

// Label keys used by the package manager.
const (
	LabelTitle      = "package_management"
	LabelInput      = "input"
	LabelInvalid    = "invalid_option"
	LabelQuitHint   = "quit_hint"
	LabelNone       = "no_packages"
	LabelAuthorized = "package_authorized"
	LabelRestart    = "restart_required"
)

// Inventory lists what the extension registry found at startup.
type Inventory interface {
	Root() string
	Descriptors() []menu.Descriptor
	Rejections() []plugin.Rejection
	Problems() []plugin.Problem
}

// Manager shows the extension registry.
type Manager struct {
	source Inventory
}

// New creates a package manager over source.
func New(source Inventory) *Manager {
	return &Manager{source: source}
}

// Unit returns the manager as a compiled-in unit.
func (m *Manager) Unit() handler.Entries {
	return handler.Entries{Action: handler.HandlerFunc(m.Run)}
}

// Run shows the overview and authorizes the chosen rejected extension.
// Authorization is written to the configuration; the registry only picks it
// up on the next start.
func (m *Manager) Run(ctx context.Context, ec *execctx.Context) error {
	if err := ec.ValidateForSettings(); err != nil {
		return err
	}
	if m.source == nil {
		return errors.New("package manager has no registry")
	}

	for {
		candidates := m.render(ec)

		text, err := ec.Console.ReadLine(ctx, ec.Translate(LabelInput))
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		text = strings.TrimSpace(text)
		if strings.EqualFold(text, "q") || text == "" {
			return nil
		}

		i, err := strconv.Atoi(text)
		if err != nil || i < 0 || i >= len(candidates) {
			ec.Console.Println(ec.Translate(LabelInvalid))
			continue
		}

		id := candidates[i].ID
		if err := authorize(ec.Settings, id); err != nil {
			return fmt.Errorf("authorize %s: %w", id, err)
		}
		ec.Logger.Info("extension authorized", "name", candidates[i].Name, "id", id)
		ec.Console.Printf("%s: %s (%s)\n", ec.Translate(LabelAuthorized), candidates[i].Name, id)
		ec.Console.Println(ec.Translate(LabelRestart))
	}
}

// render prints the overview and returns the rejections that can be
// authorized, in the order they were numbered.
func (m *Manager) render(ec *execctx.Context) []plugin.Rejection {
	ec.Console.Println()
	ec.Console.Println(ec.Translate(LabelTitle), m.source.Root())
	ec.Console.Println()

	descriptors := m.source.Descriptors()
	rejections := m.source.Rejections()
	problems := m.source.Problems()
	if len(descriptors)+len(rejections)+len(problems) == 0 {
		ec.Console.Println(ec.Translate(LabelNone))
	}

	for _, d := range descriptors {
		ec.Console.Printf("  [ok] %s (%s)\n", d.Name, d.ID)
	}

	var candidates []plugin.Rejection
	for _, r := range rejections {
		switch {
		case r.Reason == plugin.RejectUnauthorized && r.ID != "":
			ec.Console.Printf("%d [%s] %s (%s)\n", len(candidates), r.Reason, r.Name, r.ID)
			candidates = append(candidates, r)
		default:
			// Manifests without an id can never pass the allow-list.
			line := fmt.Sprintf("  [%s] %s (%s)", r.Reason, r.Name, r.ID)
			if len(r.Missing) > 0 {
				line += ": " + strings.Join(r.Missing, ", ")
			}
			ec.Console.Println(line)
		}
	}
	for _, p := range problems {
		ec.Console.Printf("  [error] %s: %v\n", p.Name, p.Err)
	}

	ec.Console.Println()
	ec.Console.Println(ec.Translate(LabelQuitHint))
	return candidates
}

// authorize appends id to the durable allow-list. The list is read from the
// record, not the applied config, so repeated calls before a reload add up.
func authorize(settings execctx.Settings, id string) error {
	ids := settings.Current().AuthorizedIDs
	entries, err := settings.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		list, ok := e.Value.([]any)
		if e.Key != config.KeyAuthorizedIDs || !ok {
			continue
		}
		ids = make([]string, 0, len(list))
		for _, v := range list {
			if s, ok := v.(string); ok {
				ids = append(ids, s)
			}
		}
	}

	if slices.Contains(ids, id) {
		return nil
	}
	return settings.Set(config.KeyAuthorizedIDs, append(slices.Clone(ids), id))
}
