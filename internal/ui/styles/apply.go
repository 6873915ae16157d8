package styles

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styleRebuilders holds callbacks to rebuild styles in other packages.
var styleRebuilders []func()

// RegisterStyleRebuilder adds a callback run after ApplyTheme updates colors.
// Packages that cache styles derived from these colors register here.
func RegisterStyleRebuilder(fn func()) {
	styleRebuilders = append(styleRebuilders, fn)
}

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Preset string
	Mode   string
	Colors map[string]string
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// palette maps each token to the variable it drives.
func palette() map[ColorToken]*lipgloss.AdaptiveColor {
	return map[ColorToken]*lipgloss.AdaptiveColor{
		TokenTextPrimary:        &TextPrimaryColor,
		TokenTextSecondary:      &TextSecondaryColor,
		TokenTextMuted:          &TextMutedColor,
		TokenTextLabel:          &TextLabelColor,
		TokenBorderDefault:      &BorderDefaultColor,
		TokenBorderFocus:        &BorderFocusColor,
		TokenStatusSuccess:      &StatusSuccessColor,
		TokenStatusWarning:      &StatusWarningColor,
		TokenStatusError:        &StatusErrorColor,
		TokenSelectionIndicator: &SelectionIndicatorColor,
		TokenDragSource:         &DragSourceColor,
		TokenDragTarget:         &DragTargetColor,
		TokenPending:            &PendingColor,
		TokenOverlayTitle:       &OverlayTitleColor,
		TokenOverlayBorder:      &OverlayBorderColor,
		TokenToastSuccess:       &ToastBorderSuccessColor,
		TokenToastError:         &ToastBorderErrorColor,
		TokenToastInfo:          &ToastBorderInfoColor,
		TokenToastWarn:          &ToastBorderWarnColor,
		TokenIssueOpen:          &IssueOpenColor,
		TokenIssueClosed:        &IssueClosedColor,
		TokenSpinner:            &SpinnerColor,
	}
}

// builtin is the adaptive palette captured before any theme was applied.
var builtin = func() map[ColorToken]lipgloss.AdaptiveColor {
	out := make(map[ColorToken]lipgloss.AdaptiveColor)
	for token, ptr := range palette() {
		out[token] = *ptr
	}
	return out
}()

// ApplyTheme resets the palette, layers the preset and then the individual
// overrides on top, and rebuilds every derived style. On error nothing is
// changed.
func ApplyTheme(cfg ThemeConfig) error {
	colors := make(map[ColorToken]string)

	if cfg.Preset != "" && cfg.Preset != DefaultPresetName {
		preset, ok := Presets[cfg.Preset]
		if !ok {
			return fmt.Errorf("unknown theme preset: %s", cfg.Preset)
		}
		maps.Copy(colors, preset.Colors)
	}

	var errs []error
	for _, key := range slices.Sorted(maps.Keys(cfg.Colors)) {
		token, value := ColorToken(key), cfg.Colors[key]
		if !slices.Contains(AllTokens(), token) {
			errs = append(errs, fmt.Errorf("unknown color token: %s", key))
			continue
		}
		if !IsHexColor(value) {
			errs = append(errs, fmt.Errorf("invalid hex color for %s: %s", key, value))
			continue
		}
		colors[token] = value
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	switch strings.ToLower(cfg.Mode) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "":
	default:
		return fmt.Errorf("theme mode must be \"light\" or \"dark\", got %q", cfg.Mode)
	}

	for token, ptr := range palette() {
		if hex, ok := colors[token]; ok {
			*ptr = lipgloss.AdaptiveColor{Light: hex, Dark: hex}
			continue
		}
		*ptr = builtin[token]
	}
	rebuildStyles()
	return nil
}

// IsHexColor accepts #RGB and #RRGGBB.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}
