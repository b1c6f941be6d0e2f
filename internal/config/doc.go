// Package config provides the durable host configuration record.
//
// The record is a JSON object on disk. It is read once at startup (a failure
// there is fatal) and re-read on every host loop iteration to detect external
// edits. An external editor signals a change by setting "update" to true; the
// Store clears the flag in the record, re-applies every field, and publishes a
// reload event through the notify sub-package.
//
// # Fields
//
//	version         string
//	language        string   (default "de")
//	modpath         string   (default "data/lib/mods")
//	languagepath    string   (default "data/assets/manager/lang")
//	temppath        string   (default "data/assets/temp")
//	cachepath       string   (default "data/assets/cache")
//	logpath         string   (default "data/assets/logs")
//	mods_enabled    bool | "True" | "False" (default true)
//	authorized_ids  []string (default ["0-000exec"])
//	header          string   (default "Meine Anwendung")
//	errors          []string
//	inputname       string   (default "Eingabe")
//	update          bool | "True" | "False"
//
// # Usage
//
//	store := config.NewStore("data/assets/manager/settings.json")
//	cfg, err := store.Load()
//	if err != nil {
//	    return err // fatal
//	}
//
//	sub := store.Subscribe(func(c notify.Change) { ... })
//	defer sub.Unsubscribe()
//
//	if store.CheckForExternalUpdate() {
//	    // record changed; rebuild whatever depends on it
//	}
package config
