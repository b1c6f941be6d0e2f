package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/claytechnologie/toolsdk/internal/config/watcher"
	"github.com/claytechnologie/toolsdk/internal/dispatcher"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/handler"
)

// errReloaded ends a prompt whose wake-up applied a configuration update,
// so the loop redraws the menu.
var errReloaded = errors.New("configuration reloaded")

// Run drives the host loop until the exit entry is selected, an interrupt
// is confirmed, input ends or fails, or ctx is cancelled. Failures of
// dispatched code never end the loop.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.shutdown()

	a.interrupts = a.opts.Interrupts
	if a.interrupts == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		defer signal.Stop(ch)
		a.interrupts = ch
	}

	a.console.Println(a.catalog.Translate(LabelAppRunning))
	a.logger.Info("host loop started")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.metrics.RecordIteration()
		a.clearTemp()

		if a.store.CheckForExternalUpdate() {
			a.reload()
		}

		if a.dispatcher.Exited() {
			a.console.Println(a.catalog.Translate(LabelExitSelected))
			a.console.Println(a.catalog.Translate(LabelExitingApp))
			return nil
		}

		a.showMenu()

		text, err := a.readSelection(ctx)
		switch {
		case err == nil:
		case errors.Is(err, errReloaded):
			continue
		case errors.Is(err, ErrInterrupted):
			if a.confirmExit(ctx) {
				return ctx.Err()
			}
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			if errors.Is(err, io.EOF) {
				a.logger.Info("input closed")
			} else {
				a.logger.Error("input failed", "error", err)
			}
			a.console.Println(a.catalog.Translate(LabelExitingApp))
			return nil
		}

		if a.handle(ctx, text) {
			return ctx.Err()
		}
	}
}

// handle dispatches one input line. It reports whether the loop must stop
// because an interrupt during dispatch was confirmed.
func (a *Application) handle(ctx context.Context, text string) bool {
	sel, err := dispatcher.ParseSelection(text)
	if err != nil {
		a.metrics.RecordInvalidInput()
		a.logger.Debug("invalid selection", "input", text)
		a.console.Println(a.catalog.Translate(LabelInvalidOption))
		return false
	}

	dctx, done := a.interruptible(ctx, false)
	result := a.dispatcher.Select(dctx, sel)
	interrupted := errors.Is(context.Cause(dctx), ErrInterrupted)
	done()

	if interrupted {
		a.logger.Info("dispatch interrupted", "entry", result.Name, "run", result.RunID)
		return a.confirmExit(ctx)
	}
	a.report(result)
	return false
}

// report turns a dispatch result into a notice shown under the next menu.
func (a *Application) report(res dispatcher.Result) {
	if res.IsOK() {
		return
	}
	switch res.Status {
	case handler.StatusExit, handler.StatusExited:
		return
	case handler.StatusNoSelection:
		a.notice(a.catalog.Translate(LabelInvalidOption))
	case handler.StatusRuntimeError:
		a.notice(fmt.Sprintf("%s %s: %v", a.catalog.Translate(LabelWarning), res.Name, res.Err))
	default:
		a.notice(fmt.Sprintf("%s %s: %s", a.catalog.Translate(LabelWarning), res.Name, res.Message))
	}
}

func (a *Application) notice(msg string) {
	a.notices = append(a.notices, msg)
}

// readSelection prompts for a selection. A config file hint wakes the
// prompt; if the poll then applies an update the menu is redrawn, otherwise
// reading resumes without a second prompt.
func (a *Application) readSelection(ctx context.Context) (string, error) {
	prompt := a.cfg.InputPrompt
	for {
		rctx, done := a.interruptible(ctx, true)
		text, err := a.console.ReadLine(rctx, prompt)
		done()

		if !errors.Is(err, ErrConfigHint) {
			return text, err
		}
		if a.store.CheckForExternalUpdate() {
			a.reload()
			return "", errReloaded
		}
		prompt = ""
	}
}

// confirmExit asks whether to leave after an interrupt. An empty line, a
// second interrupt or the end of input confirms; anything else resumes.
func (a *Application) confirmExit(ctx context.Context) bool {
	a.console.Println()
	a.console.Println(a.catalog.Translate(LabelAskExit))

	cctx, done := a.interruptible(ctx, false)
	text, err := a.console.ReadLine(cctx, "")
	done()

	if err != nil || text == "" {
		a.logger.Info("exit confirmed")
		a.console.Println(a.catalog.Translate(LabelExitingApp))
		return true
	}
	a.logger.Info("exit declined")
	return false
}

// interruptible derives a context that an interrupt cancels with
// ErrInterrupted. With wake set, a config file hint cancels it with
// ErrConfigHint. The returned func must be called once the step is over.
func (a *Application) interruptible(parent context.Context, wake bool) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	var hints <-chan watcher.Hint
	if wake && a.watcher != nil {
		hints = a.watcher.Hints()
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-a.interrupts:
			a.metrics.RecordInterrupt()
			cancel(ErrInterrupted)
		case h := <-hints:
			a.metrics.RecordWakeup()
			a.logger.Debug("config file hint", "op", h.Op.String(), "path", h.Path)
			cancel(ErrConfigHint)
		case <-stop:
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		close(stop)
		wg.Wait()
		cancel(nil)
	}
}

// reload applies a configuration update: translations, built-ins,
// extensions and labels are rebuilt from the new record.
func (a *Application) reload() {
	previous := a.cfg
	if a.pending != nil {
		previous = a.pending.Previous
		a.pending = nil
	}
	a.cfg = a.store.Current()
	a.metrics.RecordReload()

	if previous.LanguageRoot != a.cfg.LanguageRoot {
		a.catalog = a.newCatalog(a.cfg)
		a.dispatcher.SetCatalog(a.catalog)
	} else if err := a.catalog.Reload(a.cfg.Language); err != nil {
		a.logger.Warn("no translation table loaded", "root", a.cfg.LanguageRoot, "language", a.cfg.Language, "error", err)
	}
	if previous.ModRoot != a.cfg.ModRoot {
		a.logger.Warn("mod root changed, extensions keep their install-time scan", "from", previous.ModRoot, "to", a.cfg.ModRoot)
	}

	a.rebuild()
	a.logger.Info("configuration reloaded",
		"language", a.catalog.Language(),
		"mods_enabled", a.cfg.ModsEnabled,
		"entries", a.table.Len())

	a.notice(a.catalog.Translate(LabelSettingsChanged))
	a.notice(a.catalog.Translate(LabelMenuReloaded))
}

// showMenu clears the screen and prints header, entries, the exit hint and
// pending notices.
func (a *Application) showMenu() {
	a.console.Clear()
	a.console.Header(a.title())

	if err := a.table.Render(a.console.Writer()); err != nil {
		a.logger.Error("menu labels stale, rebuilding", "error", err)
		a.table.RebuildLabelCache(a.catalog)
		if err := a.table.Render(a.console.Writer()); err != nil {
			a.logger.Error("menu render failed", "error", err)
		}
	}
	a.console.Printf("%s %s\n", dispatcher.ExitSentinel, a.catalog.Translate(LabelExit))

	if len(a.notices) > 0 {
		a.console.Println()
		for _, n := range a.notices {
			a.console.Println(n)
		}
		a.notices = nil
	}
}

// title prefers the translated header and falls back to the record's
// header field.
func (a *Application) title() string {
	if t := a.catalog.Translate(LabelHeader); t != LabelHeader {
		return t
	}
	return a.cfg.Header
}

func (a *Application) shutdown() {
	a.running.Store(false)
	if m := a.dispatcher.Metrics(); m != nil {
		m.LogSummary(a.logger)
	}
	a.metrics.LogSummary(a.logger)

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.Warn("closing config watcher", "error", err)
		}
	}
	a.sub.Unsubscribe()
	a.store.Close()
	a.logger.Info("host loop stopped")
}
