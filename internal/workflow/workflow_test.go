package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdant/internal/advisor"
)

func testImage() advisor.Image {
	return advisor.Image{Path: "leaf.jpg", Data: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"}
}

// runToStep drives a fresh machine forward to the wanted step, completing
// each asynchronous action with canned text.
func runToStep(t *testing.T, want Step) *Machine {
	t.Helper()

	m := New()
	m.CredentialReady()
	if m.Step() == want {
		return m
	}

	require.NoError(t, m.AddImage(testImage()))
	action, err := m.Next()
	require.NoError(t, err)
	require.Equal(t, ActionIdentify, action)
	m.Complete("Monstera")
	if m.Step() == want {
		return m
	}

	action, err = m.Next()
	require.NoError(t, err)
	require.Equal(t, ActionAnalyze, action)
	m.Complete("## Health Status\nfine\n")
	if m.Step() == want {
		return m
	}

	action, err = m.Next()
	require.NoError(t, err)
	require.Equal(t, ActionNone, action)
	require.Equal(t, want, m.Step())
	return m
}

func TestInitialStep(t *testing.T) {
	m := New()
	assert.Equal(t, StepAPIKey, m.Step())

	// Next on the key step is inert; only a credential advances it.
	action, err := m.Next()
	assert.NoError(t, err)
	assert.Equal(t, ActionNone, action)
	assert.Equal(t, StepAPIKey, m.Step())
}

func TestCredentialReady(t *testing.T) {
	m := New()
	m.CredentialReady()
	assert.Equal(t, StepUpload, m.Step())

	// Idempotent, and never moves any later step.
	m.CredentialReady()
	assert.Equal(t, StepUpload, m.Step())
}

func TestUploadRequiresImage(t *testing.T) {
	m := New()
	m.CredentialReady()

	action, err := m.Next()
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Equal(t, ActionNone, action)
	assert.Equal(t, StepUpload, m.Step())
	assert.ErrorIs(t, m.State().Err, ErrNoImages)
}

func TestUploadToConfirm(t *testing.T) {
	m := New()
	m.CredentialReady()
	require.NoError(t, m.AddImage(testImage()))

	action, err := m.Next()
	require.NoError(t, err)
	assert.Equal(t, ActionIdentify, action)
	assert.NotEmpty(t, m.State().Loading)
	assert.Equal(t, StepUpload, m.Step(), "step commits only on Complete")

	m.Complete("Boston Fern")
	assert.Equal(t, StepConfirm, m.Step())
	assert.Equal(t, "Boston Fern", m.State().PlantName)
	assert.Empty(t, m.State().Loading)
}

func TestImageLimit(t *testing.T) {
	m := New()
	m.CredentialReady()
	require.NoError(t, m.AddImage(testImage()))
	require.NoError(t, m.AddImage(testImage()))
	assert.ErrorIs(t, m.AddImage(testImage()), ErrTooManyImages)
	assert.Len(t, m.State().Images, 2)
}

func TestSetImagesReplacesWholesale(t *testing.T) {
	m := New()
	m.CredentialReady()
	require.NoError(t, m.AddImage(testImage()))

	other := advisor.Image{Path: "stem.png", MIMEType: "image/png"}
	m.SetImages([]advisor.Image{other})
	require.Len(t, m.State().Images, 1)
	assert.Equal(t, "stem.png", m.State().Images[0].Path)
}

func TestConfirmRequiresName(t *testing.T) {
	m := runToStep(t, StepConfirm)
	m.SetPlantName("   ")

	_, err := m.Next()
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Equal(t, StepConfirm, m.Step())
}

func TestConfirmToDiagnose(t *testing.T) {
	m := runToStep(t, StepConfirm)
	m.SetPlantName("Swiss Cheese Plant")

	action, err := m.Next()
	require.NoError(t, err)
	assert.Equal(t, ActionAnalyze, action)

	m.Complete("## Health Status\nthriving\n")
	assert.Equal(t, StepDiagnose, m.Step())
	assert.Contains(t, m.State().HealthReport, "thriving")
}

func TestDiagnoseToGoalIsSynchronous(t *testing.T) {
	m := runToStep(t, StepDiagnose)

	action, err := m.Next()
	require.NoError(t, err)
	assert.Equal(t, ActionNone, action)
	assert.Equal(t, StepGoal, m.Step())
	assert.Empty(t, m.State().Loading)
}

func TestGoalRequiresText(t *testing.T) {
	m := runToStep(t, StepGoal)

	_, err := m.Next()
	assert.ErrorIs(t, err, ErrEmptyGoal)
	assert.Equal(t, StepGoal, m.Step())
}

func TestGoalAdviceStaysOnGoal(t *testing.T) {
	m := runToStep(t, StepGoal)
	m.SetUserGoal("more flowers")

	action, err := m.Next()
	require.NoError(t, err)
	assert.Equal(t, ActionAdvise, action)

	m.Complete("## More Flowers\n* feed weekly\n")
	assert.Equal(t, StepGoal, m.Step())
	assert.Contains(t, m.State().GoalAdvice, "feed weekly")
}

func TestNextWhileLoading(t *testing.T) {
	m := New()
	m.CredentialReady()
	require.NoError(t, m.AddImage(testImage()))
	_, err := m.Next()
	require.NoError(t, err)

	_, err = m.Next()
	assert.ErrorIs(t, err, ErrBusy)
}

func TestFailStaysOnPreCallStep(t *testing.T) {
	m := New()
	m.CredentialReady()
	require.NoError(t, m.AddImage(testImage()))
	_, err := m.Next()
	require.NoError(t, err)

	cause := errors.New("backend unavailable")
	m.Fail(&advisor.ServiceError{Op: "identify", Err: cause})

	assert.Equal(t, StepUpload, m.Step())
	assert.Empty(t, m.State().Loading, "loading clears on settlement")
	assert.ErrorIs(t, m.State().Err, cause)

	// A later Complete must not apply a settled action.
	m.Complete("ghost result")
	assert.Equal(t, StepUpload, m.Step())
	assert.Empty(t, m.State().PlantName)
}

func TestLoadingAndErrorExclusive(t *testing.T) {
	m := New()
	m.CredentialReady()

	_, err := m.Next() // guard failure sets Err
	require.Error(t, err)
	st := m.State()
	assert.NotNil(t, st.Err)
	assert.Empty(t, st.Loading)

	require.NoError(t, m.AddImage(testImage()))
	_, err = m.Next() // entering loading clears Err
	require.NoError(t, err)
	st = m.State()
	assert.Nil(t, st.Err)
	assert.NotEmpty(t, st.Loading)
}

func TestStepNeverRegresses(t *testing.T) {
	m := runToStep(t, StepGoal)
	seen := m.Step()

	m.SetUserGoal("keep it alive")
	for i := 0; i < 3; i++ {
		action, err := m.Next()
		require.NoError(t, err)
		require.Equal(t, ActionAdvise, action)
		m.Complete("advice")
		assert.GreaterOrEqual(t, int(m.Step()), int(seen))
		seen = m.Step()
	}
}

func TestReset(t *testing.T) {
	m := runToStep(t, StepGoal)
	m.SetUserGoal("bigger leaves")

	m.Reset(true)
	st := m.State()
	assert.Equal(t, StepUpload, st.Step)
	assert.Empty(t, st.Images)
	assert.Empty(t, st.PlantName)
	assert.Empty(t, st.HealthReport)
	assert.Empty(t, st.UserGoal)
	assert.Empty(t, st.GoalAdvice)
	assert.Empty(t, st.Loading)
	assert.Nil(t, st.Err)
}

func TestResetWithoutCredential(t *testing.T) {
	m := runToStep(t, StepDiagnose)

	m.Reset(false)
	assert.Equal(t, StepAPIKey, m.Step())
}

func TestResetAbandonsInFlightCall(t *testing.T) {
	m := New()
	m.CredentialReady()
	require.NoError(t, m.AddImage(testImage()))
	_, err := m.Next()
	require.NoError(t, err)

	m.Reset(true)
	assert.Equal(t, StepUpload, m.Step())

	// The abandoned call settling late must not move the wizard.
	m.Complete("late result")
	assert.Equal(t, StepUpload, m.Step())
	assert.Empty(t, m.State().PlantName)
}

func TestFailAfterResetIgnored(t *testing.T) {
	m := New()
	m.CredentialReady()
	require.NoError(t, m.AddImage(testImage()))
	_, err := m.Next()
	require.NoError(t, err)

	m.Reset(true)

	// The abandoned call failing late must not surface on the fresh machine.
	m.Fail(&advisor.ServiceError{Op: "identify", Err: errors.New("late failure")})
	assert.Equal(t, StepUpload, m.Step())
	assert.Nil(t, m.State().Err)
	assert.Empty(t, m.State().Loading)
}

func TestFailWithoutPendingIgnored(t *testing.T) {
	m := New()
	m.CredentialReady()

	m.Fail(errors.New("stray failure"))
	assert.Nil(t, m.State().Err)
}

func TestSetErrorOutsideAction(t *testing.T) {
	m := New()

	cause := errors.New("key rejected")
	m.SetError(cause)
	assert.Equal(t, StepAPIKey, m.Step())
	assert.ErrorIs(t, m.State().Err, cause)

	// Editing input clears it, same as guard errors.
	m.SetPlantName("x")
	assert.Nil(t, m.State().Err)
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "api-key", StepAPIKey.String())
	assert.Equal(t, "upload", StepUpload.String())
	assert.Equal(t, "confirm", StepConfirm.String())
	assert.Equal(t, "diagnose", StepDiagnose.String())
	assert.Equal(t, "goal", StepGoal.String())
	assert.Equal(t, "unknown", Step(99).String())
}
