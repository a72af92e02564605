package ui

import (
	"errors"
	"fmt"

	"github.com/brogergvhs/mandl/internal/settings"

	"github.com/manifoldco/promptui"
)

const (
	ToggleLabel     = "Scrape"
	QuitLabel       = "Quit"
	AutoScrollLabel = "Auto-Scroll"
	DownloadLabel   = "Download"
	CloseLabel      = "Close"
)

// ErrQuit ends the panel loop.
var ErrQuit = errors.New("quit")

// Prompter draws one menu or one text input.
type Prompter interface {
	Select(label string, items []string) (int, error)
	// Input edits text starting from initial; onChange sees every edit.
	Input(label, initial string, onChange func(string)) (string, error)
}

type Actions struct {
	AutoScroll func()
	Download   func()
}

// Panel is the settings form: a toggle that shows it, six inputs bound to
// the live settings, and the Auto-Scroll, Download and Close buttons.
type Panel struct {
	live    *settings.Live
	actions Actions
	log     interface {
		Errorf(string, ...any)
	}

	visible bool
}

func NewPanel(live *settings.Live, actions Actions, log interface{ Errorf(string, ...any) }) *Panel {
	return &Panel{live: live, actions: actions, log: log}
}

func (p *Panel) Visible() bool {
	return p.visible
}

func (p *Panel) Show() {
	p.visible = true
}

func (p *Panel) Hide() {
	p.visible = false
}

// Rows lists the input rows as "<label> <value>".
func (p *Panel) Rows() []string {
	rows := make([]string, len(settings.Fields))
	for i, f := range settings.Fields {
		rows[i] = fmt.Sprintf("%-22s %s", f.Label, p.live.Raw(f.Key))
	}

	return rows
}

// Input pushes raw into a row's setting and persists it right away.
func (p *Panel) Input(row int, raw string) {
	f := settings.Fields[row]
	if err := p.live.Set(f.Key, raw); err != nil && p.log != nil {
		p.log.Errorf("failed to save %s: %v", f.Key, err)
	}
}

// Run drives the panel until the user quits or the prompter fails.
func (p *Panel) Run(pr Prompter) error {
	for {
		var err error
		if p.visible {
			err = p.step(pr)
		} else {
			err = p.toggle(pr)
		}

		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (p *Panel) toggle(pr Prompter) error {
	idx, err := pr.Select("ManDL", []string{ToggleLabel, QuitLabel})
	if isInterrupt(err) {
		return ErrQuit
	}
	if err != nil {
		return err
	}

	if idx == 0 {
		p.Show()
		return nil
	}

	return ErrQuit
}

func (p *Panel) step(pr Prompter) error {
	rows := p.Rows()
	items := append(rows, AutoScrollLabel, DownloadLabel, CloseLabel)

	idx, err := pr.Select("ManDL settings", items)
	if isInterrupt(err) {
		p.Hide()
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case idx < len(rows):
		f := settings.Fields[idx]
		_, err := pr.Input(f.Label, p.live.Raw(f.Key), func(s string) { p.Input(idx, s) })
		if isInterrupt(err) {
			return nil
		}
		return err

	case items[idx] == AutoScrollLabel:
		if p.actions.AutoScroll != nil {
			p.actions.AutoScroll()
		}

	case items[idx] == DownloadLabel:
		if p.actions.Download != nil {
			p.actions.Download()
		}

	case items[idx] == CloseLabel:
		p.Hide()
	}

	return nil
}

func isInterrupt(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort)
}

// TerminalPrompter renders the panel with promptui.
type TerminalPrompter struct{}

func (TerminalPrompter) Select(label string, items []string) (int, error) {
	prompt := promptui.Select{
		Label:        label,
		Items:        items,
		Size:         len(items),
		HideSelected: true,
	}

	idx, _, err := prompt.Run()
	return idx, err
}

func (TerminalPrompter) Input(label, initial string, onChange func(string)) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   initial,
		AllowEdit: true,
		// promptui validates on every keystroke; that is the change hook.
		Validate: func(s string) error {
			onChange(s)
			return nil
		},
	}

	v, err := prompt.Run()
	if err != nil {
		return "", err
	}

	onChange(v)
	return v, nil
}
