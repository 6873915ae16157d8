package styles

import (
	"maps"
	"slices"
)

// DefaultPresetName keeps the built-in adaptive palette.
const DefaultPresetName = "default"

// Preset represents a complete color theme.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// Presets contains the built-in themes other than the default palette.
var Presets = map[string]Preset{
	"dracula":       DraculaPreset,
	"nord":          NordPreset,
	"high-contrast": HighContrastPreset,
}

// PresetNames lists every accepted theme.preset value, default first.
func PresetNames() []string {
	return append([]string{DefaultPresetName}, slices.Sorted(maps.Keys(Presets))...)
}

var DraculaPreset = Preset{
	Name:        "dracula",
	Description: "Dracula - dark theme with vibrant colors",
	Colors: map[ColorToken]string{
		TokenTextPrimary:        "#F8F8F2", // foreground
		TokenTextSecondary:      "#F8F8F2",
		TokenTextMuted:          "#6272A4", // comment
		TokenTextLabel:          "#BD93F9", // purple
		TokenBorderDefault:      "#6272A4",
		TokenBorderFocus:        "#F8F8F2",
		TokenStatusSuccess:      "#50FA7B", // green
		TokenStatusWarning:      "#F1FA8C", // yellow
		TokenStatusError:        "#FF5555", // red
		TokenSelectionIndicator: "#F8F8F2",
		TokenDragSource:         "#44475A", // current line
		TokenDragTarget:         "#FFB86C", // orange
		TokenPending:            "#F1FA8C",
		TokenOverlayTitle:       "#F8F8F2",
		TokenOverlayBorder:      "#6272A4",
		TokenToastSuccess:       "#50FA7B",
		TokenToastError:         "#FF5555",
		TokenToastInfo:          "#8BE9FD", // cyan
		TokenToastWarn:          "#F1FA8C",
		TokenIssueOpen:          "#50FA7B",
		TokenIssueClosed:        "#6272A4",
		TokenSpinner:            "#FF79C6", // pink
	},
}

var NordPreset = Preset{
	Name:        "nord",
	Description: "Nord - arctic, north-bluish palette",
	Colors: map[ColorToken]string{
		TokenTextPrimary:        "#ECEFF4", // snow storm
		TokenTextSecondary:      "#E5E9F0",
		TokenTextMuted:          "#4C566A", // polar night
		TokenTextLabel:          "#B48EAD", // aurora purple
		TokenBorderDefault:      "#4C566A",
		TokenBorderFocus:        "#88C0D0", // frost
		TokenStatusSuccess:      "#A3BE8C", // aurora green
		TokenStatusWarning:      "#EBCB8B", // aurora yellow
		TokenStatusError:        "#BF616A", // aurora red
		TokenSelectionIndicator: "#88C0D0",
		TokenDragSource:         "#434C5E",
		TokenDragTarget:         "#D08770", // aurora orange
		TokenPending:            "#EBCB8B",
		TokenOverlayTitle:       "#ECEFF4",
		TokenOverlayBorder:      "#4C566A",
		TokenToastSuccess:       "#A3BE8C",
		TokenToastError:         "#BF616A",
		TokenToastInfo:          "#81A1C1",
		TokenToastWarn:          "#EBCB8B",
		TokenIssueOpen:          "#A3BE8C",
		TokenIssueClosed:        "#4C566A",
		TokenSpinner:            "#88C0D0",
	},
}

var HighContrastPreset = Preset{
	Name:        "high-contrast",
	Description: "High contrast for accessibility",
	Colors: map[ColorToken]string{
		TokenTextPrimary:        "#FFFFFF",
		TokenTextSecondary:      "#FFFFFF",
		TokenTextMuted:          "#C0C0C0",
		TokenTextLabel:          "#FF00FF",
		TokenBorderDefault:      "#FFFFFF",
		TokenBorderFocus:        "#FFFF00",
		TokenStatusSuccess:      "#00FF00",
		TokenStatusWarning:      "#FFFF00",
		TokenStatusError:        "#FF0000",
		TokenSelectionIndicator: "#FFFF00",
		TokenDragSource:         "#808080",
		TokenDragTarget:         "#00FFFF",
		TokenPending:            "#FFFF00",
		TokenOverlayTitle:       "#FFFFFF",
		TokenOverlayBorder:      "#FFFFFF",
		TokenToastSuccess:       "#00FF00",
		TokenToastError:         "#FF0000",
		TokenToastInfo:          "#00FFFF",
		TokenToastWarn:          "#FFFF00",
		TokenIssueOpen:          "#00FF00",
		TokenIssueClosed:        "#C0C0C0",
		TokenSpinner:            "#FFFFFF",
	},
}
