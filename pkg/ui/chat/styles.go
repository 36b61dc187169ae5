package chat

import "github.com/charmbracelet/lipgloss"

// palette names the chalkboard colors shared by every chat region.
type palette struct {
	chalk   lipgloss.Color
	board   lipgloss.Color
	slate   lipgloss.Color
	desk    lipgloss.Color
	ink     lipgloss.Color
	green   lipgloss.Color
	amber   lipgloss.Color
	teal    lipgloss.Color
	photo   lipgloss.Color
	muted   lipgloss.Color
	pale    lipgloss.Color
	cream   lipgloss.Color
	success lipgloss.Color
	dust    lipgloss.Color
}

var chalkboard = palette{
	chalk:   "230",
	board:   "24",
	slate:   "233",
	desk:    "236",
	ink:     "16",
	green:   "29",
	amber:   "214",
	teal:    "44",
	photo:   "109",
	muted:   "244",
	pale:    "250",
	cream:   "223",
	success: "114",
	dust:    "180",
}

// theme groups reusable styles for chat UI regions.
type theme struct {
	header         lipgloss.Style
	headerMeta     lipgloss.Style
	divider        lipgloss.Style
	bootLine       lipgloss.Style
	bootDone       lipgloss.Style
	userBox        lipgloss.Style
	userTitle      lipgloss.Style
	assistantBox   lipgloss.Style
	assistantTitle lipgloss.Style
	imageBox       lipgloss.Style
	imageTitle     lipgloss.Style
	status         lipgloss.Style
	statusBusy     lipgloss.Style
	hint           lipgloss.Style
	inputLabel     lipgloss.Style
	input          lipgloss.Style
	viewport       lipgloss.Style
}

func defaultTheme() theme {
	return newTheme(chalkboard)
}

func newTheme(p palette) theme {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	// Each message role gets a bordered card and a matching title tab.
	card := func(border lipgloss.Border, accent lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Border(border).BorderForeground(accent).Background(p.desk).Padding(0, 1)
	}
	tab := func(accent lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(p.ink).Background(accent).Padding(0, 1)
	}

	return theme{
		header:         lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(p.chalk).Background(p.board),
		headerMeta:     fg(p.cream),
		divider:        fg(p.green),
		bootLine:       fg(p.dust),
		bootDone:       fg(p.success).Bold(true),
		userBox:        card(lipgloss.DoubleBorder(), p.amber),
		userTitle:      tab(p.amber),
		assistantBox:   card(lipgloss.DoubleBorder(), p.teal).Background(lipgloss.Color("234")),
		assistantTitle: tab(p.teal),
		imageBox:       card(lipgloss.RoundedBorder(), p.photo).Foreground(lipgloss.Color("252")),
		imageTitle:     tab(p.photo),
		status:         fg(p.pale).Bold(true),
		statusBusy:     fg(lipgloss.Color("222")).Bold(true),
		hint:           fg(p.muted),
		inputLabel:     fg(lipgloss.Color("229")).Bold(true),
		input:          card(lipgloss.RoundedBorder(), lipgloss.Color("173")),
		viewport: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(p.green).
			Background(p.slate).
			Padding(0, 1),
	}
}
