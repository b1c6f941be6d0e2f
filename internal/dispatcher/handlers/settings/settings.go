package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/claytechnologie/toolsdk/internal/config"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/execctx"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/handler"
)

// Unit location and entry point of the editor.
const (
	Method = "main"
	Path   = "settings"
	Source = "settings.lua"
	Action = "main"
)

// Label keys used by the editor.
const (
	LabelTitle    = "settings"
	LabelInput    = "input"
	LabelNewValue = "new_value"
	LabelSaved    = "setting_saved"
	LabelInvalid  = "invalid_option"
	LabelQuitHint = "quit_hint"
)

// QuitCommand leaves the editor.
const QuitCommand = "q"

// ErrInvalidValue is returned when text cannot be converted to the type of
// the value it replaces.
var ErrInvalidValue = errors.New("invalid value")

// Unit returns the editor as a compiled-in unit.
func Unit() handler.Entries {
	return handler.Entries{Action: handler.HandlerFunc(Run)}
}

// Run runs the editor until the user quits or input ends.
func Run(ctx context.Context, ec *execctx.Context) error {
	if err := ec.ValidateForSettings(); err != nil {
		return err
	}

	for {
		entries, err := ec.Settings.Entries()
		if err != nil {
			return err
		}

		ec.Console.Println()
		ec.Console.Println(ec.Translate(LabelTitle))
		ec.Console.Println()
		for i, e := range entries {
			ec.Console.Printf("%d: %s = %s\n", i, e.Key, Format(e.Value))
		}
		ec.Console.Println()
		ec.Console.Println(ec.Translate(LabelQuitHint))

		text, err := ec.Console.ReadLine(ctx, ec.Translate(LabelInput))
		if err != nil {
			return quitOnEOF(err)
		}
		text = strings.TrimSpace(text)
		if strings.EqualFold(text, QuitCommand) {
			return nil
		}

		i, err := strconv.Atoi(text)
		if err != nil || i < 0 || i >= len(entries) {
			ec.Console.Println(ec.Translate(LabelInvalid))
			continue
		}
		entry := entries[i]

		raw, err := ec.Console.ReadLine(ctx, ec.Translate(LabelNewValue))
		if err != nil {
			return quitOnEOF(err)
		}
		value, err := Parse(entry.Value, raw)
		if err != nil {
			ec.Logger.Warn("setting not changed", "key", entry.Key, "error", err)
			ec.Console.Println(ec.Translate(LabelInvalid))
			continue
		}
		if err := ec.Settings.Set(entry.Key, value); err != nil {
			return fmt.Errorf("set %s: %w", entry.Key, err)
		}

		ec.Logger.Info("setting changed", "key", entry.Key)
		ec.Console.Printf("%s: %s = %s\n", ec.Translate(LabelSaved), entry.Key, Format(value))
	}
}

// Parse converts text to the type of old. Booleans accept true/false in any
// case, numbers keep their integer form when possible, and lists are comma
// separated. Anything else stays a string.
func Parse(old any, text string) (any, error) {
	text = strings.TrimSpace(text)

	switch old.(type) {
	case bool:
		b, ok := config.CoerceBool(text)
		if !ok {
			b2, err := strconv.ParseBool(strings.ToLower(text))
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, text)
			}
			b = b2
		}
		return b, nil
	case float64, int, int64:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, text)
		}
		return f, nil
	case []any, []string:
		if text == "" {
			return []string{}, nil
		}
		parts := strings.Split(text, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				list = append(list, p)
			}
		}
		return list, nil
	default:
		return text, nil
	}
}

// Format renders a record value for display.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Format(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func quitOnEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
