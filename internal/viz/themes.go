package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour of each draw role.
type Theme struct {
	Name       string
	Background lipgloss.Color
	Axis       lipgloss.Color
	Open       lipgloss.Color
	Closed     lipgloss.Color
	Target     lipgloss.Color
	Spike      lipgloss.Color
	Histogram  lipgloss.Color
	Theory     lipgloss.Color
	Label      lipgloss.Color
}

// Available themes
var (
	ThemeZinc = Theme{
		Name:       "zinc",
		Background: lipgloss.Color("#09090b"),
		Axis:       lipgloss.Color("#27272a"),
		Open:       lipgloss.Color("#10b981"), // emerald
		Closed:     lipgloss.Color("#ef4444"),
		Target:     lipgloss.Color("#fbbf24"),
		Spike:      lipgloss.Color("#a855f7"), // purple
		Histogram:  lipgloss.Color("#7c4dbd"),
		Theory:     lipgloss.Color("#0ed3cf"),
		Label:      lipgloss.Color("#a1a1aa"),
	}

	ThemeCyberpunk = Theme{
		Name:       "cyberpunk",
		Background: lipgloss.Color("#0a0a0a"),
		Axis:       lipgloss.Color("#666666"),
		Open:       lipgloss.Color("#00ff00"),
		Closed:     lipgloss.Color("#ff0000"),
		Target:     lipgloss.Color("#ffff00"),
		Spike:      lipgloss.Color("#ff00ff"),
		Histogram:  lipgloss.Color("#00ffff"),
		Theory:     lipgloss.Color("#ffff00"),
		Label:      lipgloss.Color("#ffffff"),
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Background: lipgloss.Color("#001100"),
		Axis:       lipgloss.Color("#005500"),
		Open:       lipgloss.Color("#88ff88"),
		Closed:     lipgloss.Color("#00aa00"),
		Target:     lipgloss.Color("#ffff00"),
		Spike:      lipgloss.Color("#00ff00"),
		Histogram:  lipgloss.Color("#00cc00"),
		Theory:     lipgloss.Color("#88ff88"),
		Label:      lipgloss.Color("#00ff00"),
	}

	ThemeMinimal = Theme{
		Name:       "minimal",
		Background: lipgloss.Color("#000000"),
		Axis:       lipgloss.Color("#888888"),
		Open:       lipgloss.Color("#ffffff"),
		Closed:     lipgloss.Color("#888888"),
		Target:     lipgloss.Color("#0088ff"),
		Spike:      lipgloss.Color("#ffffff"),
		Histogram:  lipgloss.Color("#cccccc"),
		Theory:     lipgloss.Color("#0088ff"),
		Label:      lipgloss.Color("#ffffff"),
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Background: lipgloss.Color("#001a33"),
		Axis:       lipgloss.Color("#4488aa"),
		Open:       lipgloss.Color("#00ff88"),
		Closed:     lipgloss.Color("#ff4444"),
		Target:     lipgloss.Color("#ffd700"),
		Spike:      lipgloss.Color("#00a8cc"),
		Histogram:  lipgloss.Color("#0077be"),
		Theory:     lipgloss.Color("#ffd700"),
		Label:      lipgloss.Color("#e0f0ff"),
	}

	// All available themes, default first.
	Themes = []Theme{
		ThemeZinc,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeZinc
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func (t Theme) Color(r Role) lipgloss.Color {
	switch r {
	case RoleBackground:
		return t.Background
	case RoleAxis:
		return t.Axis
	case RoleOpen:
		return t.Open
	case RoleClosed:
		return t.Closed
	case RoleTarget:
		return t.Target
	case RoleSpike:
		return t.Spike
	case RoleHistogram:
		return t.Histogram
	case RoleTheory:
		return t.Theory
	default:
		return t.Label
	}
}

func (t Theme) Style(r Role) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Color(r))
}
