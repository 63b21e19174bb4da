// Package workflow drives the plant-care wizard as an explicit finite-state
// machine. The machine knows nothing about rendering or the model backend:
// Next reports which asynchronous action (if any) the caller must run, and
// Complete/Fail settle that action. This keeps every guard and transition
// testable without a terminal.
package workflow

import (
	"errors"
	"strings"

	"verdant/internal/advisor"
)

// Step is the wizard's position.
type Step int

const (
	StepAPIKey Step = iota
	StepUpload
	StepConfirm
	StepDiagnose
	StepGoal
)

func (s Step) String() string {
	switch s {
	case StepAPIKey:
		return "api-key"
	case StepUpload:
		return "upload"
	case StepConfirm:
		return "confirm"
	case StepDiagnose:
		return "diagnose"
	case StepGoal:
		return "goal"
	default:
		return "unknown"
	}
}

// Action is the asynchronous work a transition requires. The caller runs it
// and settles the machine with Complete or Fail.
type Action int

const (
	ActionNone Action = iota
	ActionIdentify
	ActionAnalyze
	ActionAdvise
)

// Guard failures. Each leaves the step unchanged and is surfaced inline.
var (
	ErrNoImages      = errors.New("select at least one photo of your plant")
	ErrEmptyName     = errors.New("the plant name cannot be empty")
	ErrEmptyGoal     = errors.New("describe what you want for your plant")
	ErrTooManyImages = errors.New("at most two photos can be attached")
	ErrBusy          = errors.New("a request is already in progress")
)

// State is everything the wizard has gathered so far. At most one of
// Loading/Err is set at any time.
type State struct {
	Step         Step
	Images       []advisor.Image
	PlantName    string
	HealthReport string
	UserGoal     string
	GoalAdvice   string
	Loading      string
	Err          error
}

// transition is one row of the state table: from a step, when the guard
// passes, run action and land on to. Rows with ActionNone commit
// immediately; the rest commit on Complete.
type transition struct {
	from    Step
	guard   func(*State) error
	action  Action
	to      Step
	loading string
}

func needImages(s *State) error {
	if len(s.Images) == 0 {
		return ErrNoImages
	}
	return nil
}

func needName(s *State) error {
	if strings.TrimSpace(s.PlantName) == "" {
		return ErrEmptyName
	}
	return nil
}

func needGoal(s *State) error {
	if strings.TrimSpace(s.UserGoal) == "" {
		return ErrEmptyGoal
	}
	return nil
}

var transitions = []transition{
	{from: StepUpload, guard: needImages, action: ActionIdentify, to: StepConfirm, loading: "Identifying your plant..."},
	{from: StepConfirm, guard: needName, action: ActionAnalyze, to: StepDiagnose, loading: "Analyzing plant health..."},
	{from: StepDiagnose, action: ActionNone, to: StepGoal},
	{from: StepGoal, guard: needGoal, action: ActionAdvise, to: StepGoal, loading: "Tailoring advice to your goal..."},
}

// Machine holds the wizard state and at most one in-flight transition.
type Machine struct {
	state   State
	pending *transition
}

// New creates a machine waiting for a credential.
func New() *Machine {
	return &Machine{state: State{Step: StepAPIKey}}
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	return m.state
}

// Step returns the current step.
func (m *Machine) Step() Step {
	return m.state.Step
}

// CredentialReady moves the wizard past the key step once a valid credential
// exists. A no-op on every other step.
func (m *Machine) CredentialReady() {
	if m.state.Step == StepAPIKey {
		m.state.Step = StepUpload
	}
}

// AddImage attaches a photo. Editing input clears any inline error.
func (m *Machine) AddImage(img advisor.Image) error {
	if len(m.state.Images) >= advisor.MaxImages {
		return ErrTooManyImages
	}
	m.state.Images = append(m.state.Images, img)
	m.clearErr()
	return nil
}

// SetImages replaces the whole image selection.
func (m *Machine) SetImages(images []advisor.Image) {
	if len(images) > advisor.MaxImages {
		images = images[:advisor.MaxImages]
	}
	m.state.Images = images
	m.clearErr()
}

// SetPlantName updates the editable species name on the confirm step.
func (m *Machine) SetPlantName(name string) {
	m.state.PlantName = name
	m.clearErr()
}

// SetUserGoal updates the free-text goal.
func (m *Machine) SetUserGoal(goal string) {
	m.state.UserGoal = goal
	m.clearErr()
}

// Next fires the current step's transition. When the row's guard fails, the
// step is unchanged, the error is recorded inline and returned. When the row
// carries an asynchronous action, the machine enters the loading state and
// the caller must settle it with Complete or Fail; until then further Next
// calls fail with ErrBusy.
func (m *Machine) Next() (Action, error) {
	if m.state.Loading != "" {
		return ActionNone, ErrBusy
	}

	for i := range transitions {
		t := &transitions[i]
		if t.from != m.state.Step {
			continue
		}
		if t.guard != nil {
			if err := t.guard(&m.state); err != nil {
				m.setErr(err)
				return ActionNone, err
			}
		}
		if t.action == ActionNone {
			m.state.Step = t.to
			m.clearErr()
			return ActionNone, nil
		}
		m.setLoading(t.loading)
		m.pending = t
		return t.action, nil
	}

	// No row for this step (the key step advances via CredentialReady).
	return ActionNone, nil
}

// Complete settles the in-flight action with the model's text and commits
// the pending step transition.
func (m *Machine) Complete(text string) {
	if m.pending == nil {
		return
	}
	switch m.pending.action {
	case ActionIdentify:
		m.state.PlantName = text
	case ActionAnalyze:
		m.state.HealthReport = text
	case ActionAdvise:
		m.state.GoalAdvice = text
	}
	m.state.Step = m.pending.to
	m.pending = nil
	m.state.Loading = ""
}

// Fail settles the in-flight action with an error. The wizard stays on its
// pre-call step. Like Complete, a settlement arriving after the action was
// abandoned by Reset is dropped.
func (m *Machine) Fail(err error) {
	if m.pending == nil {
		return
	}
	m.pending = nil
	m.setErr(err)
}

// SetError records an error that happened outside any in-flight action, such
// as a rejected credential or an unreadable file. The step is unchanged.
func (m *Machine) SetError(err error) {
	m.setErr(err)
}

// Reset abandons all progress. The wizard restarts at the upload step, or at
// the key step when no valid credential remains.
func (m *Machine) Reset(credentialPresent bool) {
	step := StepUpload
	if !credentialPresent {
		step = StepAPIKey
	}
	m.pending = nil
	m.state = State{Step: step}
}

// setErr and setLoading keep the loading/error exclusivity invariant.
func (m *Machine) setErr(err error) {
	m.state.Loading = ""
	m.state.Err = err
}

func (m *Machine) setLoading(msg string) {
	m.state.Err = nil
	m.state.Loading = msg
}

func (m *Machine) clearErr() {
	m.state.Err = nil
}
