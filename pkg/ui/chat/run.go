package chat

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"edutune/pkg/bus"
)

// ReplyFunc answers one line of user input with an ordered reply sequence.
type ReplyFunc func(ctx context.Context, text string) []bus.OutboundMessage

// RuntimeInfo is shown in the chat header.
type RuntimeInfo struct {
	Capabilities map[string]bool
}

func RunInteractive(ctx context.Context, replyFn ReplyFunc, info RuntimeInfo) error {
	model := newModel(ctx, replyFn, modeInteractive, "", info)
	program := tea.NewProgram(model, tea.WithMouseCellMotion())
	_, err := program.Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(renderGoodbyeBanner())
	return nil
}

func RunOneShot(ctx context.Context, replyFn ReplyFunc, text string, info RuntimeInfo) error {
	model := newModel(ctx, replyFn, modeOneShot, text, info)
	program := tea.NewProgram(model)
	_, err := program.Run()
	return err
}

func renderGoodbyeBanner() string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("24")).
		Padding(1, 2)

	return style.Render("🎓 Thanks for studying with EduTune")
}
