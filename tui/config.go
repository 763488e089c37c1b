package tui

import (
	"context"
	"reflect"

	"github.com/iw2rmb/plume/editor"
)

// Config configures the Model.
type Config struct {
	// Editor configures the hosted controller. Layout and PickFiles are
	// owned by the Model and overwritten. A nil Scheduler gets a Loop the
	// Model drains; any other scheduler must run callbacks on the goroutine
	// calling Update.
	Editor editor.Config

	// Height is the surface height in rows while the widget is not
	// expanded. Zero uses the whole window.
	Height int

	KeyMap KeyMap
	Style  Style

	// Clipboard backs the copy, cut, and paste bindings. Nil disables them.
	Clipboard Clipboard

	// OnChange receives a snapshot whenever the controller commits content.
	OnChange func(ChangeEvent)

	// Context bounds the scheduler wait. Nil means context.Background.
	Context context.Context
}

const defaultPopupWidth = 40

func normalizeConfig(cfg Config) Config {
	if reflect.DeepEqual(cfg.KeyMap, KeyMap{}) {
		cfg.KeyMap = DefaultKeyMap()
	}
	if reflect.DeepEqual(cfg.Style, Style{}) {
		cfg.Style = DefaultStyle()
	}
	if cfg.Height < 0 {
		cfg.Height = 0
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	return cfg
}
