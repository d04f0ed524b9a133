package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/evrenbey/grove/internal/background"
	"github.com/evrenbey/grove/internal/store"
	"github.com/evrenbey/grove/internal/user"
)

// backdropWidth and backdropHeight size the optimized crop requested
// from the image source.
const (
	backdropWidth  = 1920
	backdropHeight = 1080
)

type settingsModel struct {
	app    *store.App
	images *background.Client
	width  int
	height int

	fetching   bool
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	pseudo        *string
	theme         *string
	accentColor   *string
	fontSize      *string
	language      *string
	photoCategory *string
	opacity       *string
	notifVolume   *string
	showSeconds   *bool
	soundEnabled  *bool
}

func newSettingsModel(app *store.App, images *background.Client) settingsModel {
	ps, th, ac, fs := "", "", "", ""
	la, pc, op, nv := "", "", "", ""
	sec, snd := false, false
	return settingsModel{
		app:           app,
		images:        images,
		pseudo:        &ps,
		theme:         &th,
		accentColor:   &ac,
		fontSize:      &fs,
		language:      &la,
		photoCategory: &pc,
		opacity:       &op,
		notifVolume:   &nv,
		showSeconds:   &sec,
		soundEnabled:  &snd,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case backdropFetchedMsg:
		s.fetching = false
		if msg.err != nil {
			return s, statusCmd(fmt.Sprintf("Backdrop error: %v", msg.err))
		}
		s.app.Settings.SetCustomBackgroundURL(msg.url)
		return s, statusCmd("Backdrop photo by " + msg.photo.User.Name)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		case key.Matches(msg, keys.Fetch):
			if s.fetching {
				return s, nil
			}
			cmd := s.fetchBackdrop()
			s.fetching = s.images != nil
			return s, cmd
		case key.Matches(msg, keys.Repeat):
			s.app.Settings.ResetAll()
			return s, statusCmd("Settings reset to defaults")
		}
	}
	return s, nil
}

// fetchBackdrop pulls a fresh photo for the configured category and
// reports its display to the image source, as the provider requires.
func (s settingsModel) fetchBackdrop() tea.Cmd {
	if s.images == nil {
		return statusCmd("No image source configured")
	}
	images := s.images
	query := s.app.Settings.Background().PhotoCategory
	if cat, ok := background.CategoryByID(query); ok {
		query = cat.Query
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		photo, err := images.RandomPhoto(ctx, query)
		if err != nil {
			return backdropFetchedMsg{err: err}
		}
		if err := images.TrackDownload(ctx, photo); err != nil {
			return backdropFetchedMsg{err: err}
		}
		return backdropFetchedMsg{
			photo: photo,
			url:   images.OptimizedURL(photo, backdropWidth, backdropHeight),
		}
	}
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	ui := s.app.Settings.UI()
	bg := s.app.Settings.Background()
	gen := s.app.Settings.General()

	*s.pseudo = ""
	if p, ok := s.app.User.Profile(); ok {
		*s.pseudo = p.Pseudo
	}
	*s.theme = ui.Theme
	*s.accentColor = ui.AccentColor
	*s.fontSize = ui.FontSize
	*s.language = gen.Language
	*s.photoCategory = bg.PhotoCategory
	*s.opacity = strconv.Itoa(bg.BackgroundOpacity)
	*s.notifVolume = strconv.Itoa(ui.NotificationVolume)
	*s.showSeconds = ui.ShowSeconds
	*s.soundEnabled = ui.SoundEnabled

	catOptions := make([]huh.Option[string], len(background.Categories))
	for i, c := range background.Categories {
		catOptions[i] = huh.NewOption(c.Name, c.ID)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Pseudo").Value(s.pseudo).
				Validate(func(v string) error {
					if v == "" {
						return nil
					}
					_, err := user.ValidatePseudo(v)
					return err
				}),
		).Title("Profile"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Light", "light"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("System", "system"),
				).Value(s.theme),
			huh.NewInput().Title("Accent color").Value(s.accentColor),
			huh.NewSelect[string]().Title("Font size").
				Options(
					huh.NewOption("Small", "small"),
					huh.NewOption("Medium", "medium"),
					huh.NewOption("Large", "large"),
				).Value(s.fontSize),
			huh.NewConfirm().Title("Show seconds").Value(s.showSeconds),
			huh.NewConfirm().Title("Sound enabled").Value(s.soundEnabled),
			huh.NewInput().Title("Notification volume (0-100)").Value(s.notifVolume),
		).Title("Interface"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Photo category").Options(catOptions...).Value(s.photoCategory),
			huh.NewInput().Title("Background opacity (0-100)").Value(s.opacity),
			huh.NewInput().Title("Language").Value(s.language),
		).Title("Background & General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.save()
		return s, statusCmd("Settings saved")
	}

	return s, cmd
}

func (s settingsModel) save() {
	st := s.app.Settings
	st.SetTheme(*s.theme)
	st.SetAccentColor(*s.accentColor)
	st.SetFontSize(*s.fontSize)
	st.SetShowSeconds(*s.showSeconds)
	st.SetSoundEnabled(*s.soundEnabled)
	if v, err := strconv.Atoi(*s.notifVolume); err == nil {
		st.SetNotificationVolume(v)
	}
	st.SetPhotoCategory(*s.photoCategory)
	if v, err := strconv.Atoi(*s.opacity); err == nil {
		st.SetBackgroundOpacity(v)
	}
	st.SetLanguage(*s.language)

	if *s.pseudo != "" {
		s.app.User.SubmitPseudo(*s.pseudo)
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	ui := s.app.Settings.UI()
	bg := s.app.Settings.Background()
	gen := s.app.Settings.General()

	pseudo := mutedStyle.Render("(not set)")
	if p, ok := s.app.User.Profile(); ok {
		pseudo = highlightStyle.Render(p.Pseudo) +
			mutedStyle.Render(fmt.Sprintf("  %d sessions", p.TotalSessions))
	}

	rows := []string{
		title,
		"",
		settingRow("Pseudo", pseudo),
		settingRow("Theme", highlightStyle.Render(ui.Theme)),
		settingRow("Accent color", highlightStyle.Render(ui.AccentColor)),
		settingRow("Font size", highlightStyle.Render(ui.FontSize)),
		settingRow("Show seconds", highlightStyle.Render(strconv.FormatBool(ui.ShowSeconds))),
		settingRow("Sound", highlightStyle.Render(strconv.FormatBool(ui.SoundEnabled))),
		settingRow("Notification volume", highlightStyle.Render(strconv.Itoa(ui.NotificationVolume))),
		settingRow("Photo category", highlightStyle.Render(bg.PhotoCategory)),
		settingRow("Background opacity", highlightStyle.Render(strconv.Itoa(bg.BackgroundOpacity))),
		settingRow("Language", highlightStyle.Render(gen.Language)),
	}

	backdrop := mutedStyle.Render("(none)")
	if bg.CustomURL != "" {
		backdrop = highlightStyle.Render("custom photo")
	}
	if s.fetching {
		backdrop = mutedStyle.Render("fetching...")
	}
	rows = append(rows, settingRow("Backdrop", backdrop))

	if s.app.Settings.HasUnsavedChanges() {
		rows = append(rows, "", warningStyle.Render("  ● unsaved changes"))
	}
	rows = append(rows, "", mutedStyle.Render("enter: edit  f: fetch backdrop  r: reset all"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render(label), value)
}
