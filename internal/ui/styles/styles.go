package styles

import "github.com/charmbracelet/lipgloss"

// Colors are rewritten by ApplyTheme; the values here are the dark defaults.
var (
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#696969"}
	TextLabelColor     = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#A29BFE"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}

	DragSourceColor = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
	DragTargetColor = lipgloss.AdaptiveColor{Light: "#FF9F43", Dark: "#FF9F43"}
	PendingColor    = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}

	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#C9C9C9"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#8C8C8C"}

	ToastBorderSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	ToastBorderErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"}
	ToastBorderWarnColor    = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}

	IssueOpenColor   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	IssueClosedColor = lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#BBBBBB"}

	SpinnerColor = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#FFFFFF"}
)

// Styles built from the colors above. rebuildStyles recreates them because
// a lipgloss.Style captures colors when it is built.
var (
	SelectionIndicatorStyle lipgloss.Style
	MutedStyle              lipgloss.Style
	SecondaryStyle          lipgloss.Style
	LabelStyle              lipgloss.Style
	PendingStyle            lipgloss.Style
	DragSourceStyle         lipgloss.Style
	StatusBarStyle          lipgloss.Style
	ErrorStyle              lipgloss.Style
	SpinnerStyle            lipgloss.Style
	OverlayTitleStyle       lipgloss.Style
	OverlayBoxStyle         lipgloss.Style
)

func init() {
	rebuildStyles()
}

func rebuildStyles() {
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)
	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	SecondaryStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	LabelStyle = lipgloss.NewStyle().Foreground(TextLabelColor)
	PendingStyle = lipgloss.NewStyle().Foreground(PendingColor).Italic(true)
	DragSourceStyle = lipgloss.NewStyle().Foreground(DragSourceColor).Faint(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(TextSecondaryColor).
		Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(StatusErrorColor).
		Bold(true).
		Padding(1, 2)

	SpinnerStyle = lipgloss.NewStyle().Foreground(SpinnerColor)
	OverlayTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(OverlayTitleColor)
	OverlayBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(OverlayBorderColor).
		Padding(0, 1)

	for _, fn := range styleRebuilders {
		fn()
	}
}

// StateColor is the color of an issue state badge.
func StateColor(closed bool) lipgloss.TerminalColor {
	if closed {
		return IssueClosedColor
	}
	return IssueOpenColor
}
