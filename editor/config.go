package editor

import "time"

const (
	defaultRenumberScanMargin = 1
	defaultRenumberDelay      = 16 * time.Millisecond
	defaultSlashRenderDelay   = 10 * time.Millisecond
	defaultDragPromoteDelay   = 200 * time.Millisecond
	defaultMenuMaxWidth       = 40
)

// Config configures the extension engine. The zero value is usable:
// menus position at the origin without a PositionMapper, decoration
// passes cover the whole document without a Viewport, and deferred work
// runs on timers.
type Config struct {
	Mapper     PositionMapper
	Viewport   Viewport
	Scheduler  Scheduler
	Dispatcher Dispatcher

	Images   ImageLoader
	Files    FileReader
	Generate Generator

	ListKeys  ListKeyMap
	SlashKeys SlashKeyMap

	// Commands is appended after the default slash command table.
	Commands []CommandOption

	Style Style

	// OnImageMeasured fires once per widget after its first successful
	// load, so the host can reserve vertical space.
	OnImageMeasured func(src, alt string, info ImageInfo)

	// RenumberScanMargin is the ±line window scanned around each edited
	// range when deciding whether a document change warrants a renumber
	// pass. A heuristic, not a guarantee.
	RenumberScanMargin int

	RenumberDelay    time.Duration
	SlashRenderDelay time.Duration
	DragPromoteDelay time.Duration

	MenuMaxWidth int
}

func normalizeConfig(cfg Config) Config {
	if cfg.Scheduler == nil {
		cfg.Scheduler = timeScheduler{}
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = inlineDispatcher{}
	}
	if cfg.ListKeys.isZero() {
		cfg.ListKeys = DefaultListKeyMap()
	}
	if cfg.SlashKeys.isZero() {
		cfg.SlashKeys = DefaultSlashKeyMap()
	}
	if cfg.Style.isZero() {
		cfg.Style = DefaultStyle()
	}
	if cfg.RenumberScanMargin <= 0 {
		cfg.RenumberScanMargin = defaultRenumberScanMargin
	}
	if cfg.RenumberDelay <= 0 {
		cfg.RenumberDelay = defaultRenumberDelay
	}
	if cfg.SlashRenderDelay <= 0 {
		cfg.SlashRenderDelay = defaultSlashRenderDelay
	}
	if cfg.DragPromoteDelay <= 0 {
		cfg.DragPromoteDelay = defaultDragPromoteDelay
	}
	if cfg.MenuMaxWidth <= 0 {
		cfg.MenuMaxWidth = defaultMenuMaxWidth
	}
	return cfg
}
