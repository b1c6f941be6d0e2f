// Package settings provides the compiled-in settings editor.
//
// The editor lists the durable configuration record in file order, lets the
// user pick a key by number and enter a new value, and writes it through the
// settings store. Writes raise the record's update flag, so the host applies
// them on its next loop iteration like any external edit.
package settings
