package service

import (
	"testing"

	"jelajah/internal/domain"
	"jelajah/internal/models"
	"jelajah/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type grantEnv struct {
	db        *gorm.DB
	svc       *GrantService
	notifRepo *repository.NotificationRepository
	admin     *models.User
	editor    *models.User
	applicant *models.User
}

func newGrantEnv(t *testing.T) *grantEnv {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	grantRepo := repository.NewGrantRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	notifSvc := NewNotificationService(notifRepo, userRepo, nil)
	return &grantEnv{
		db:        db,
		svc:       NewGrantService(grantRepo, userRepo, notifSvc, nil),
		notifRepo: notifRepo,
		admin:     createUser(t, db, domain.RoleAdmin),
		editor:    createUser(t, db, domain.RoleEditor),
		applicant: createUser(t, db, domain.RoleUser),
	}
}

func (e *grantEnv) submit(t *testing.T) *models.GrantApplication {
	t.Helper()
	app, err := e.svc.Submit(e.applicant.ID, SubmitInput{
		Title:           "Homestay signage",
		Summary:         "New signage for the homestay cluster",
		AmountRequested: 800_000,
	})
	require.NoError(t, err)
	return app
}

func TestGrantLifecycleToComplete(t *testing.T) {
	e := newGrantEnv(t)
	app := e.submit(t)
	assert.Equal(t, domain.GrantStatusPending, app.Status)
	assert.Regexp(t, `^GA-\d{6}-\d{4}$`, app.Code)

	app, err := e.svc.MakeConditionalOffer(e.admin.ID, app.ID, 500_000, "Reduced scope")
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusConditionalOffer, app.Status)
	require.NotNil(t, app.AmountApproved)
	assert.Equal(t, int64(500_000), *app.AmountApproved)

	app, err = e.svc.AcceptOffer(e.applicant.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusEarlyReportRequired, app.Status)

	app, err = e.svc.SubmitEarlyReport(e.applicant.ID, app.ID, "https://cdn.example/early.pdf", "early.pdf")
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusEarlyReportSubmitted, app.Status)

	app, err = e.svc.ApproveEarlyReport(e.admin.ID, app.ID, 300_000, "Looks good")
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusFinalReportRequired, app.Status)
	require.NotNil(t, app.InitialDisbursementAmount)
	assert.Equal(t, int64(300_000), *app.InitialDisbursementAmount)

	app, err = e.svc.SubmitFinalReport(e.applicant.ID, app.ID, "https://cdn.example/final.pdf", "final.pdf")
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusFinalReportSubmitted, app.Status)

	app, err = e.svc.Complete(e.admin.ID, app.ID, 200_000, "All spent and accounted for")
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusComplete, app.Status)
	require.NotNil(t, app.FinalDisbursementAmount)
	assert.Equal(t, int64(200_000), *app.FinalDisbursementAmount)

	// Reload with history: the stored status must match the last entry,
	// and every transition must have left a row.
	got, err := e.svc.Get(e.admin.ID, app.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 7)
	assert.Equal(t, got.Status, got.History[len(got.History)-1].Status)
	require.Len(t, got.Files, 2)
	assert.Equal(t, domain.ReportStageEarly, got.Files[0].Stage)
	assert.Equal(t, domain.ReportStageFinal, got.Files[1].Stage)
}

func TestGrantRejectPendingIsTerminal(t *testing.T) {
	e := newGrantEnv(t)
	app := e.submit(t)

	app, err := e.svc.RejectPending(e.editor.ID, app.ID, "Out of scope")
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusRejected, app.Status)

	_, err = e.svc.MakeConditionalOffer(e.admin.ID, app.ID, 100, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGrantDeclineOffer(t *testing.T) {
	e := newGrantEnv(t)
	app := e.submit(t)
	_, err := e.svc.MakeConditionalOffer(e.admin.ID, app.ID, 500_000, "")
	require.NoError(t, err)

	app, err = e.svc.DeclineOffer(e.applicant.ID, app.ID, "Amount too low")
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusRejected, app.Status)
}

func TestGrantReportRejectionCounters(t *testing.T) {
	e := newGrantEnv(t)
	app := e.submit(t)
	_, err := e.svc.MakeConditionalOffer(e.admin.ID, app.ID, 500_000, "")
	require.NoError(t, err)
	_, err = e.svc.AcceptOffer(e.applicant.ID, app.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = e.svc.SubmitEarlyReport(e.applicant.ID, app.ID, "https://cdn.example/early.pdf", "early.pdf")
		require.NoError(t, err)
		app, err = e.svc.RejectEarlyReport(e.admin.ID, app.ID, "Missing receipts")
		require.NoError(t, err)
		assert.Equal(t, domain.GrantStatusEarlyReportRequired, app.Status)
	}
	assert.Equal(t, 2, app.EarlyReportRejections)
	assert.Equal(t, 0, app.FinalReportRejections)

	// Rejecting the final report bounces back to FINAL_REPORT_REQUIRED
	// with its own counter.
	_, err = e.svc.SubmitEarlyReport(e.applicant.ID, app.ID, "https://cdn.example/early.pdf", "early.pdf")
	require.NoError(t, err)
	_, err = e.svc.ApproveEarlyReport(e.admin.ID, app.ID, 300_000, "")
	require.NoError(t, err)
	_, err = e.svc.SubmitFinalReport(e.applicant.ID, app.ID, "https://cdn.example/final.pdf", "final.pdf")
	require.NoError(t, err)
	app, err = e.svc.RejectFinalReport(e.admin.ID, app.ID, "Numbers do not add up")
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusFinalReportRequired, app.Status)
	assert.Equal(t, 1, app.FinalReportRejections)
	assert.Equal(t, 2, app.EarlyReportRejections)
}

func TestGrantGuardsRequireElevatedRole(t *testing.T) {
	e := newGrantEnv(t)
	app := e.submit(t)
	other := createUser(t, e.db, domain.RoleUser)

	_, err := e.svc.RejectPending(e.applicant.ID, app.ID, "")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = e.svc.MakeConditionalOffer(other.ID, app.ID, 100, "")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	// Role is re-read from the database, not trusted from the token:
	// demote the editor and their next decision fails.
	e.editor.Role = domain.RoleUser
	require.NoError(t, e.db.Save(e.editor).Error)
	_, err = e.svc.MakeConditionalOffer(e.editor.ID, app.ID, 100, "")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	// The application is untouched after all denied attempts.
	got, err := e.svc.Get(e.applicant.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusPending, got.Status)
	require.Len(t, got.History, 1)
}

func TestGrantApplicantOnlyActions(t *testing.T) {
	e := newGrantEnv(t)
	app := e.submit(t)
	other := createUser(t, e.db, domain.RoleUser)
	_, err := e.svc.MakeConditionalOffer(e.admin.ID, app.ID, 500_000, "")
	require.NoError(t, err)

	_, err = e.svc.AcceptOffer(other.ID, app.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	// Even an admin cannot accept on the applicant's behalf.
	_, err = e.svc.AcceptOffer(e.admin.ID, app.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = e.svc.AcceptOffer(e.applicant.ID, app.ID)
	require.NoError(t, err)

	_, err = e.svc.SubmitEarlyReport(other.ID, app.ID, "https://cdn.example/x.pdf", "x.pdf")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestGrantStatusGuardRejectsWrongState(t *testing.T) {
	e := newGrantEnv(t)
	app := e.submit(t)

	_, err := e.svc.AcceptOffer(e.applicant.ID, app.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.svc.SubmitEarlyReport(e.applicant.ID, app.ID, "https://cdn.example/x.pdf", "x.pdf")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.svc.ApproveEarlyReport(e.admin.ID, app.ID, 100, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.svc.Complete(e.admin.ID, app.ID, 100, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGrantReapplyLinksPriorApplication(t *testing.T) {
	e := newGrantEnv(t)
	app := e.submit(t)
	_, err := e.svc.RejectPending(e.admin.ID, app.ID, "Budget exhausted")
	require.NoError(t, err)

	again, err := e.svc.Reapply(e.applicant.ID, app.ID, SubmitInput{
		Title:           "Homestay signage, revised",
		AmountRequested: 600_000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.GrantStatusPending, again.Status)
	require.NotNil(t, again.ResubmittedFromID)
	assert.Equal(t, app.ID, *again.ResubmittedFromID)
	assert.Equal(t, 1, again.ResubmissionCount)
	assert.NotEqual(t, app.Code, again.Code)

	other := createUser(t, e.db, domain.RoleUser)
	_, err = e.svc.Reapply(other.ID, app.ID, SubmitInput{Title: "x", AmountRequested: 1})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestGrantGetVisibility(t *testing.T) {
	e := newGrantEnv(t)
	app := e.submit(t)
	other := createUser(t, e.db, domain.RoleUser)

	_, err := e.svc.Get(other.ID, app.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.svc.Get(e.editor.ID, app.ID)
	assert.NoError(t, err)

	_, err = e.svc.Get(e.applicant.ID, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGrantSubmitValidation(t *testing.T) {
	e := newGrantEnv(t)
	_, err := e.svc.Submit(e.applicant.ID, SubmitInput{Title: "", AmountRequested: 100})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.svc.Submit(e.applicant.ID, SubmitInput{Title: "x", AmountRequested: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGrantSubmitNotifiesGrantAdmins(t *testing.T) {
	e := newGrantEnv(t)
	app := e.submit(t)

	var rows []models.Notification
	require.NoError(t, e.db.Where("audience = ?", domain.AudienceGrantAdmins).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.NotifTypeGrantSubmission, rows[0].Type)
	require.NotNil(t, rows[0].ApplicationID)
	assert.Equal(t, app.ID, *rows[0].ApplicationID)
}
