// Package theme exposes the OS dark-mode state and change notifications.
package theme

import (
	"reflect"
	"sync"

	"github.com/1broseidon/deskutil/internal/platform"
)

// Source is the host's theme service.
type Source interface {
	IsDark() bool
	// Subscribe registers fn for change notifications and returns a function
	// that removes exactly that registration.
	Subscribe(fn func()) (unsubscribe func())
}

// DarkMode reports dark mode on macOS and is inert elsewhere.
type DarkMode struct {
	enabled bool
	source  Source
}

// NewDarkMode binds the theme source to the current platform. A nil source,
// including a typed nil pointer, leaves dark mode disabled.
func NewDarkMode(tag platform.Tag, source Source) *DarkMode {
	return &DarkMode{
		enabled: tag == platform.MacOS && !isNil(source),
		source:  source,
	}
}

func isNil(source Source) bool {
	if source == nil {
		return true
	}
	v := reflect.ValueOf(source)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// IsEnabled reports whether dark mode is on. Always false off macOS.
func (d *DarkMode) IsEnabled() bool {
	if !d.enabled {
		return false
	}
	return d.source.IsDark()
}

// OnChange calls cb whenever the system theme changes and returns a disposer
// that stops it. The disposer may be called any number of times. Off macOS
// nothing is registered and cb is never called.
func (d *DarkMode) OnChange(cb func()) (dispose func()) {
	if !d.enabled {
		return func() {}
	}

	unsubscribe := d.source.Subscribe(func() {
		cb()
	})

	var once sync.Once
	return func() {
		once.Do(unsubscribe)
	}
}
