// Package styles contains Lip Gloss style definitions.
package styles

// ColorToken represents a named, themeable color.
type ColorToken string

// Color tokens users can override under theme.colors in their config.
const (
	TokenTextPrimary   ColorToken = "text.primary"
	TokenTextSecondary ColorToken = "text.secondary"
	TokenTextMuted     ColorToken = "text.muted"
	TokenTextLabel     ColorToken = "text.label"

	TokenBorderDefault ColorToken = "border.default"
	TokenBorderFocus   ColorToken = "border.focus"

	TokenStatusSuccess ColorToken = "status.success"
	TokenStatusWarning ColorToken = "status.warning"
	TokenStatusError   ColorToken = "status.error"

	TokenSelectionIndicator ColorToken = "selection.indicator"

	TokenDragSource ColorToken = "drag.source"
	TokenDragTarget ColorToken = "drag.target"
	TokenPending    ColorToken = "drag.pending"

	TokenOverlayTitle  ColorToken = "overlay.title"
	TokenOverlayBorder ColorToken = "overlay.border"

	TokenToastSuccess ColorToken = "toast.success"
	TokenToastError   ColorToken = "toast.error"
	TokenToastInfo    ColorToken = "toast.info"
	TokenToastWarn    ColorToken = "toast.warn"

	TokenIssueOpen   ColorToken = "issue.state.opened"
	TokenIssueClosed ColorToken = "issue.state.closed" //nolint:gosec // UI color token, not credentials

	TokenSpinner ColorToken = "spinner"
)

// AllTokens returns all valid color tokens for validation.
func AllTokens() []ColorToken {
	return []ColorToken{
		TokenTextPrimary,
		TokenTextSecondary,
		TokenTextMuted,
		TokenTextLabel,
		TokenBorderDefault,
		TokenBorderFocus,
		TokenStatusSuccess,
		TokenStatusWarning,
		TokenStatusError,
		TokenSelectionIndicator,
		TokenDragSource,
		TokenDragTarget,
		TokenPending,
		TokenOverlayTitle,
		TokenOverlayBorder,
		TokenToastSuccess,
		TokenToastError,
		TokenToastInfo,
		TokenToastWarn,
		TokenIssueOpen,
		TokenIssueClosed,
		TokenSpinner,
	}
}
