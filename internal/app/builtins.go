package app

import (
	"github.com/claytechnologie/toolsdk/internal/dispatcher/handlers/packages"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/handlers/settings"
	"github.com/claytechnologie/toolsdk/internal/menu"
)

// Label keys printed by the host loop.
const (
	LabelHeader          = "header"
	LabelExit            = "exit"
	LabelWarning         = "warning"
	LabelAppRunning      = "app_is_running"
	LabelSettingsChanged = "setting_changed"
	LabelMenuReloaded    = "menu_reloaded"
	LabelInvalidOption   = "invalid_option"
	LabelAskExit         = "ask_exit"
	LabelExitSelected    = "exit_selected"
	LabelExitingApp      = "exiting_app"
)

// Diary unit shipped with the host.
const (
	bookMethod = "main"
	bookPath   = "book"
	bookSource = "book.lua"
	bookAction = "start"
)

// Builtins returns the built-in menu entries in display order.
func Builtins() []menu.Descriptor {
	return []menu.Descriptor{
		{
			Name: "settings",
			Mesh: "settings",
			Build: menu.Build{
				Method: settings.Method,
				Path:   settings.Path,
				Source: settings.Source,
				Action: settings.Action,
			},
		},
		{
			Name: "book",
			Mesh: "book",
			Build: menu.Build{
				Method: bookMethod,
				Path:   bookPath,
				Source: bookSource,
				Action: bookAction,
			},
		},
		{
			Name: "package_management",
			Mesh: "package_management",
			Build: menu.Build{
				Method: packages.Method,
				Path:   packages.Path,
				Source: packages.Source,
				Action: packages.Action,
			},
		},
	}
}
