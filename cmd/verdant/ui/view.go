package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"verdant/internal/advisor"
	"verdant/internal/keystore"
	"verdant/internal/workflow"
)

var stepTitles = map[workflow.Step]string{
	workflow.StepAPIKey:   "Step 0 of 4 · Session key",
	workflow.StepUpload:   "Step 1 of 4 · Photos",
	workflow.StepConfirm:  "Step 2 of 4 · Confirm species",
	workflow.StepDiagnose: "Step 3 of 4 · Health report",
	workflow.StepGoal:     "Step 4 of 4 · Your goal",
}

func (w Wizard) View() string {
	if w.quitting {
		return "Happy growing! 🌱\n"
	}

	st := w.machine.State()

	if isServiceError(st.Err) {
		return w.errorView(st.Err)
	}
	if st.Loading != "" {
		return w.loadingView(st.Loading)
	}

	var body string
	switch st.Step {
	case workflow.StepAPIKey:
		body = w.keyView()
	case workflow.StepUpload:
		body = w.uploadView()
	case workflow.StepConfirm:
		body = w.confirmView()
	case workflow.StepDiagnose:
		body = w.diagnoseView()
	case workflow.StepGoal:
		body = w.goalView()
	}

	var sb strings.Builder
	sb.WriteString(w.styles.Title.Render("🌿 verdant") + "\n")
	sb.WriteString(w.styles.StepLabel.Render(stepTitles[st.Step]) + "\n\n")
	sb.WriteString(body)

	// Inline errors and notices share the line below the form.
	if st.Err != nil {
		sb.WriteString("\n\n" + w.styles.Error.Render(st.Err.Error()))
	} else if w.notice != "" {
		sb.WriteString("\n\n" + w.styles.Help.Render(w.notice))
	}

	sb.WriteString("\n\n" + w.styles.Help.Render(w.footer(st.Step)))
	return sb.String()
}

func (w Wizard) keyView() string {
	var sb strings.Builder
	sb.WriteString("Enter your Gemini API key. It is kept on this machine only and\n")
	sb.WriteString(fmt.Sprintf("forgotten after %s.\n\n", keystore.TTL))
	sb.WriteString(w.keyInput.View())
	return sb.String()
}

func (w Wizard) uploadView() string {
	st := w.machine.State()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pick up to %d photos of your plant.\n\n", advisor.MaxImages))

	if len(st.Images) > 0 {
		names := make([]string, 0, len(st.Images))
		for _, img := range st.Images {
			names = append(names, filepath.Base(img.Path))
		}
		sb.WriteString(w.styles.Selected.Render("Selected: "+strings.Join(names, ", ")) + "\n\n")
	}

	sb.WriteString(w.picker.View())
	return sb.String()
}

func (w Wizard) confirmView() string {
	var sb strings.Builder
	sb.WriteString("Is this your plant? Edit the name if not.\n\n")
	sb.WriteString(w.nameInput.View())
	return sb.String()
}

func (w Wizard) diagnoseView() string {
	var sb strings.Builder
	sb.WriteString(w.styles.Card.Render(w.viewport.View()))
	return sb.String()
}

func (w Wizard) goalView() string {
	st := w.machine.State()

	var sb strings.Builder
	if st.GoalAdvice != "" {
		sb.WriteString(w.styles.Card.Render(w.viewport.View()))
		sb.WriteString("\n\n")
	}
	sb.WriteString(w.goalInput.View())
	return sb.String()
}

func (w Wizard) loadingView(msg string) string {
	var sb strings.Builder
	sb.WriteString(w.styles.Title.Render("🌿 verdant") + "\n\n")
	sb.WriteString(w.spinner.View() + " " + msg)
	sb.WriteString("\n\n" + w.styles.Help.Render("ctrl+c quit"))
	return sb.String()
}

// errorView is the full-screen recovery prompt: the only way forward is back
// to the upload step.
func (w Wizard) errorView(err error) string {
	var sb strings.Builder
	sb.WriteString(w.styles.Error.Render("Something went wrong talking to the model.") + "\n\n")
	sb.WriteString(err.Error() + "\n\n")
	sb.WriteString("Your progress past the photo step is lost; the photos step restarts the flow.")

	boxed := w.styles.ErrorBox.Render(sb.String())
	return boxed + "\n\n" + w.styles.Help.Render("enter start over · ctrl+c quit")
}

func (w Wizard) footer(step workflow.Step) string {
	switch step {
	case workflow.StepAPIKey:
		return "enter submit · ctrl+c quit"
	case workflow.StepUpload:
		return "↑/↓ browse · enter pick file · n identify plant · x clear selection · ctrl+r restart · ctrl+c quit"
	case workflow.StepConfirm:
		return "enter analyze health · ctrl+r restart · ctrl+c quit"
	case workflow.StepDiagnose:
		return "↑/↓ scroll · enter continue · ctrl+r restart · ctrl+c quit"
	case workflow.StepGoal:
		return "enter get advice · ctrl+s save report · ctrl+r restart · ctrl+c quit"
	default:
		return "ctrl+c quit"
	}
}
