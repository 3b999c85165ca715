package styles

var (
	IconCheck   = "✓"
	IconCross   = "✗"
	IconWarn    = "!"
	IconPending = "…"
	IconArrow   = "→"
	IconDot     = "•"
)
