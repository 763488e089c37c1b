package tui

import "github.com/charmbracelet/lipgloss"

// Style controls the widget's rendering.
type Style struct {
	// Surface frames the document. Pulse replaces it while a rejected
	// attachment pulses the widget.
	Surface lipgloss.Style
	Pulse   lipgloss.Style

	Toolbar        lipgloss.Style
	Control        lipgloss.Style
	ControlActive  lipgloss.Style
	ControlFocused lipgloss.Style

	Text        lipgloss.Style
	Placeholder lipgloss.Style
	Selection   lipgloss.Style
	Cursor      lipgloss.Style
	Link        lipgloss.Style
	Heading     lipgloss.Style
	Code        lipgloss.Style
	Image       lipgloss.Style
	Bullet      lipgloss.Style

	Popup        lipgloss.Style
	PopupTitle   lipgloss.Style
	Field        lipgloss.Style
	FieldInvalid lipgloss.Style
	Choice       lipgloss.Style
	ChoiceActive lipgloss.Style

	Panel lipgloss.Style
	Card  lipgloss.Style
}

func DefaultStyle() Style {
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	control := lipgloss.NewStyle().Padding(0, 1)
	return Style{
		Surface: border,
		Pulse:   border.BorderForeground(lipgloss.Color("203")),

		Toolbar:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Control:        control,
		ControlActive:  control.Bold(true).Foreground(lipgloss.Color("81")),
		ControlFocused: control.Reverse(true),

		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true),
		Selection:   lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Cursor:      lipgloss.NewStyle().Reverse(true),
		Link:        lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Underline(true),
		Heading:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		Code:        lipgloss.NewStyle().Foreground(lipgloss.Color("180")),
		Image:       lipgloss.NewStyle().Foreground(lipgloss.Color("142")),
		Bullet:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),

		Popup:        lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		PopupTitle:   lipgloss.NewStyle().Bold(true),
		Field:        lipgloss.NewStyle(),
		FieldInvalid: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Choice:       lipgloss.NewStyle(),
		ChoiceActive: lipgloss.NewStyle().Reverse(true),

		Panel: lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		Card:  lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1),
	}
}
