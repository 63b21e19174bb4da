package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"verdant/internal/advisor"
	"verdant/internal/config"
	"verdant/internal/keystore"
	"verdant/internal/workflow"
)

// Advisor is the slice of advisor.Client the wizard drives. Tests substitute
// a fake.
type Advisor interface {
	Identify(ctx context.Context, images []advisor.Image) (string, error)
	AnalyzeHealth(ctx context.Context, images []advisor.Image, name string) (string, error)
	GoalAdvice(ctx context.Context, name, priorReport, goal string) (string, error)
}

// AdvisorFactory builds an Advisor once a credential is known. A fresh one
// is built whenever the user submits a new key.
type AdvisorFactory func(ctx context.Context, apiKey string) (Advisor, error)

// Messages produced by asynchronous model calls.
type (
	resultMsg     string
	callFailedMsg struct{ err error }
)

var errSessionExpired = errors.New("your session key expired; enter it again")

// Wizard is the bubbletea model for the plant-care flow.
type Wizard struct {
	machine    *workflow.Machine
	keys       *keystore.Store
	newAdvisor AdvisorFactory
	adv        Advisor
	cfg        config.Config
	logger     *zap.Logger
	styles     Styles
	sessionID  string

	keyInput  textinput.Model
	nameInput textinput.Model
	goalInput textinput.Model
	picker    filepicker.Model
	spinner   spinner.Model
	viewport  viewport.Model

	notice   string // transient one-line info, cleared on the next keypress
	width    int
	height   int
	ready    bool
	quitting bool
}

// New builds the wizard. When the key store already holds a valid
// credential the key step is skipped.
func New(keys *keystore.Store, factory AdvisorFactory, cfg config.Config, logger *zap.Logger) Wizard {
	if logger == nil {
		logger = zap.NewNop()
	}
	styles := StylesFor(cfg.Theme)

	ki := textinput.New()
	ki.Placeholder = "Paste your Gemini API key..."
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '*'
	ki.CharLimit = 256
	ki.Width = 60
	ki.Prompt = "│ "
	ki.PromptStyle = styles.Prompt
	ki.TextStyle = styles.UserInput

	ni := textinput.New()
	ni.Placeholder = "Plant name..."
	ni.CharLimit = 120
	ni.Width = 60
	ni.Prompt = "│ "
	ni.PromptStyle = styles.Prompt
	ni.TextStyle = styles.UserInput

	gi := textinput.New()
	gi.Placeholder = "What do you want for your plant? e.g. bigger leaves, more flowers..."
	gi.CharLimit = 300
	gi.Width = 60
	gi.Prompt = "│ "
	gi.PromptStyle = styles.Prompt
	gi.TextStyle = styles.UserInput

	fp := filepicker.New()
	fp.AllowedTypes = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".heic"}
	fp.Height = 10
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)

	w := Wizard{
		machine:    workflow.New(),
		keys:       keys,
		newAdvisor: factory,
		cfg:        cfg,
		logger:     logger,
		styles:     styles,
		sessionID:  uuid.NewString(),
		keyInput:   ki,
		nameInput:  ni,
		goalInput:  gi,
		picker:     fp,
		spinner:    sp,
		viewport:   vp,
	}

	if key, ok := keys.Load(); ok {
		if adv, err := factory(context.Background(), key); err == nil {
			w.adv = adv
			w.machine.CredentialReady()
		} else {
			logger.Error("advisor setup failed", zap.Error(err))
		}
	}
	if w.machine.Step() == workflow.StepAPIKey {
		w.keyInput.Focus()
	}

	logger.Info("wizard started",
		zap.String("session_id", w.sessionID),
		zap.String("step", w.machine.Step().String()))
	return w
}

// Step exposes the wizard's position for logging and tests.
func (w Wizard) Step() workflow.Step {
	return w.machine.Step()
}

func (w Wizard) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, w.spinner.Tick, w.picker.Init())
}

func (w Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		w.viewport.Width = msg.Width - 4
		w.viewport.Height = msg.Height - 10
		w.keyInput.Width = msg.Width - 8
		w.nameInput.Width = msg.Width - 8
		w.goalInput.Width = msg.Width - 8
		w.ready = true
		return w, nil

	case spinner.TickMsg:
		if w.machine.State().Loading != "" {
			var cmd tea.Cmd
			w.spinner, cmd = w.spinner.Update(msg)
			return w, cmd
		}
		return w, nil

	case resultMsg:
		w.machine.Complete(string(msg))
		return w.enterStep(), nil

	case callFailedMsg:
		w.logger.Error("model call failed",
			zap.String("session_id", w.sessionID),
			zap.String("step", w.machine.Step().String()),
			zap.Error(msg.err))
		w.machine.Fail(msg.err)
		return w, nil

	case tea.KeyMsg:
		return w.handleKey(msg)
	}

	return w.routeToStep(msg)
}

func (w Wizard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w.notice = ""

	switch msg.String() {
	case "ctrl+c":
		w.quitting = true
		return w, tea.Quit
	case "ctrl+r":
		return w.reset(), nil
	}

	st := w.machine.State()

	// The recovery view swallows everything except its one action.
	if isServiceError(st.Err) {
		switch msg.String() {
		case "enter", "r":
			return w.reset(), nil
		}
		return w, nil
	}

	// Navigation is frozen while a call is outstanding.
	if st.Loading != "" {
		return w, nil
	}

	switch st.Step {
	case workflow.StepAPIKey:
		if msg.String() == "enter" {
			return w.submitKey()
		}
	case workflow.StepUpload:
		switch msg.String() {
		case "n":
			return w.startNext()
		case "x":
			w.machine.SetImages(nil)
			return w, nil
		}
	case workflow.StepConfirm:
		if msg.String() == "enter" {
			w.machine.SetPlantName(w.nameInput.Value())
			return w.startNext()
		}
	case workflow.StepDiagnose:
		if msg.String() == "enter" {
			return w.startNext()
		}
	case workflow.StepGoal:
		switch msg.String() {
		case "enter":
			w.machine.SetUserGoal(w.goalInput.Value())
			return w.startNext()
		case "ctrl+s":
			if st.GoalAdvice != "" {
				return w.saveReport(), nil
			}
		}
	}

	return w.routeToStep(msg)
}

// routeToStep forwards a message to the active step's component.
func (w Wizard) routeToStep(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch w.machine.Step() {
	case workflow.StepAPIKey:
		w.keyInput, cmd = w.keyInput.Update(msg)
		return w, cmd

	case workflow.StepUpload:
		w.picker, cmd = w.picker.Update(msg)
		if ok, path := w.picker.DidSelectFile(msg); ok {
			return w.selectImage(path), cmd
		}
		return w, cmd

	case workflow.StepConfirm:
		w.nameInput, cmd = w.nameInput.Update(msg)
		return w, cmd

	case workflow.StepDiagnose:
		w.viewport, cmd = w.viewport.Update(msg)
		return w, cmd

	case workflow.StepGoal:
		var vpCmd tea.Cmd
		w.goalInput, cmd = w.goalInput.Update(msg)
		w.viewport, vpCmd = w.viewport.Update(msg)
		return w, tea.Batch(cmd, vpCmd)
	}

	return w, nil
}

func (w Wizard) submitKey() (tea.Model, tea.Cmd) {
	if err := w.keys.Submit(w.keyInput.Value()); err != nil {
		w.machine.SetError(err)
		return w, nil
	}
	key, _ := w.keys.Load()

	adv, err := w.newAdvisor(context.Background(), key)
	if err != nil {
		w.machine.SetError(err)
		return w, nil
	}
	w.adv = adv
	w.keyInput.Reset()
	w.machine.CredentialReady()
	w.logger.Info("credential accepted", zap.String("session_id", w.sessionID))
	return w, nil
}

func (w Wizard) selectImage(path string) Wizard {
	img, err := advisor.LoadImage(path)
	if err != nil {
		w.machine.SetError(err)
		return w
	}
	if err := w.machine.AddImage(img); errors.Is(err, workflow.ErrTooManyImages) {
		// Picking while full replaces the oldest photo.
		images := w.machine.State().Images
		replaced := images[0]
		w.machine.SetImages(append(images[1:], img))
		w.notice = "replaced " + filepath.Base(replaced.Path)
	}
	return w
}

// startNext fires the state machine. The credential window is re-checked at
// every transition; an expired key sends the whole flow back to the key step.
func (w Wizard) startNext() (tea.Model, tea.Cmd) {
	if _, ok := w.keys.Load(); !ok {
		w.machine.Reset(false)
		w.adv = nil
		w.notice = errSessionExpired.Error()
		w.keyInput.Focus()
		return w, textinput.Blink
	}

	action, err := w.machine.Next()
	if err != nil {
		return w, nil // inline guard error, already recorded in state
	}
	if action == workflow.ActionNone {
		return w.enterStep(), nil
	}

	w.logger.Debug("action started",
		zap.String("session_id", w.sessionID),
		zap.Int("action", int(action)))
	return w, tea.Batch(w.spinner.Tick, w.runAction(action))
}

// runAction executes the model call outside the event loop and settles it
// with a message.
func (w Wizard) runAction(action workflow.Action) tea.Cmd {
	st := w.machine.State()
	adv := w.adv
	return func() tea.Msg {
		if adv == nil {
			return callFailedMsg{err: &advisor.ServiceError{Op: "setup", Err: errors.New("advisor not initialized")}}
		}

		ctx := context.Background()
		var (
			text string
			err  error
		)
		switch action {
		case workflow.ActionIdentify:
			text, err = adv.Identify(ctx, st.Images)
		case workflow.ActionAnalyze:
			text, err = adv.AnalyzeHealth(ctx, st.Images, st.PlantName)
		case workflow.ActionAdvise:
			text, err = adv.GoalAdvice(ctx, st.PlantName, st.HealthReport, st.UserGoal)
		}
		if err != nil {
			return callFailedMsg{err: err}
		}
		return resultMsg(text)
	}
}

// enterStep prepares the components of the step just entered.
func (w Wizard) enterStep() Wizard {
	st := w.machine.State()
	switch st.Step {
	case workflow.StepConfirm:
		w.nameInput.SetValue(st.PlantName)
		w.nameInput.CursorEnd()
		w.nameInput.Focus()
	case workflow.StepDiagnose:
		w.viewport.SetContent(RenderMarkdown(st.HealthReport, w.styles, w.contentWidth()))
		w.viewport.GotoTop()
	case workflow.StepGoal:
		if st.GoalAdvice != "" {
			w.viewport.SetContent(RenderMarkdown(st.GoalAdvice, w.styles, w.contentWidth()))
			w.viewport.GotoTop()
		}
		w.goalInput.Focus()
	}
	return w
}

func (w Wizard) reset() Wizard {
	_, ok := w.keys.Load()
	w.machine.Reset(ok)
	w.nameInput.Reset()
	w.goalInput.Reset()
	w.viewport.SetContent("")
	if !ok {
		w.adv = nil
		w.keyInput.Focus()
	}
	w.logger.Info("wizard reset",
		zap.String("session_id", w.sessionID),
		zap.Bool("credential_present", ok))
	return w
}

// saveReport writes the identification, health report and goal advice to a
// markdown file in the working directory.
func (w Wizard) saveReport() Wizard {
	st := w.machine.State()
	name := fmt.Sprintf("verdant-report-%s.md", uuid.NewString()[:8])

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n## Goal: %s\n\n%s\n", st.PlantName, st.HealthReport, st.UserGoal, st.GoalAdvice)

	if err := os.WriteFile(name, []byte(sb.String()), 0644); err != nil {
		w.notice = fmt.Sprintf("could not save report: %v", err)
		return w
	}
	w.notice = "saved " + name
	return w
}

func (w Wizard) contentWidth() int {
	if w.width > 8 {
		return w.width - 8
	}
	return 72
}

func isServiceError(err error) bool {
	var svcErr *advisor.ServiceError
	return errors.As(err, &svcErr)
}
