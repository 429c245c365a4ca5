package service

import (
	"errors"
	"fmt"
	"time"

	"jelajah/internal/domain"
	"jelajah/internal/models"
	"jelajah/internal/repository"
	"jelajah/internal/ws"

	"go.uber.org/zap"
)

// GrantService owns the grant application status machine. Every status
// move goes through exactly one guarded method here; each method
// verifies the caller against the database (the JWT role in the UI is
// advisory only), checks the current status, and persists the new
// status together with its history entry in one transaction.
type GrantService struct {
	repo     *repository.GrantRepository
	userRepo *repository.UserRepository
	notif    *NotificationService
	feed     *ws.Changefeed
}

func NewGrantService(repo *repository.GrantRepository, userRepo *repository.UserRepository, notif *NotificationService, feed *ws.Changefeed) *GrantService {
	return &GrantService{repo: repo, userRepo: userRepo, notif: notif, feed: feed}
}

// SubmitInput carries the applicant-provided fields of a new request.
type SubmitInput struct {
	Title           string
	Summary         string
	AmountRequested int64
}

func (in SubmitInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if in.AmountRequested <= 0 {
		return fmt.Errorf("amount requested must be positive: %w", domain.ErrValidation)
	}
	return nil
}

func (s *GrantService) publish() {
	if s.feed != nil {
		s.feed.TableChanged("grant_applications")
	}
}

func (s *GrantService) caller(callerID uint) (*models.User, error) {
	u, err := s.userRepo.GetByID(callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("caller %d: %w", callerID, domain.ErrPermissionDenied)
		}
		return nil, err
	}
	return u, nil
}

func (s *GrantService) elevatedCaller(callerID uint) (*models.User, error) {
	u, err := s.caller(callerID)
	if err != nil {
		return nil, err
	}
	if !u.IsElevated() {
		return nil, fmt.Errorf("operation requires an elevated role: %w", domain.ErrPermissionDenied)
	}
	return u, nil
}

func (s *GrantService) load(appID uint) (*models.GrantApplication, error) {
	return s.repo.GetByID(appID)
}

func requireStatus(app *models.GrantApplication, want string) error {
	if app.Status != want {
		return fmt.Errorf("application %s is %s, expected %s: %w", app.Code, app.Status, want, domain.ErrValidation)
	}
	return nil
}

// transition applies the status change and its history entry
// atomically, then publishes the changefeed event.
func (s *GrantService) transition(app *models.GrantApplication, status, notes, actorName string, files ...*models.GrantReportFile) error {
	app.Status = status
	entry := &models.GrantStatusEntry{
		Status:    status,
		Notes:     notes,
		ActorName: actorName,
	}
	if err := s.repo.SaveTransition(app, entry, files...); err != nil {
		return err
	}
	s.publish()
	return nil
}

func (s *GrantService) notifyGrantAdmins(message string, appID uint, notifType string) {
	if s.notif == nil {
		return
	}
	if err := s.notif.NotifyGrantAdmins(message, &appID, notifType); err != nil {
		zap.S().Warnw("grant: notify admins failed", "application_id", appID, "error", err)
	}
}

func (s *GrantService) notifyApplicant(app *models.GrantApplication, message, notifType string) {
	if s.notif == nil {
		return
	}
	if err := s.notif.NotifyUser(app.ApplicantID, message, &app.ID, notifType); err != nil {
		zap.S().Warnw("grant: notify applicant failed", "application_id", app.ID, "error", err)
	}
}

// Submit creates a new application in PENDING. Any authenticated
// account may apply.
func (s *GrantService) Submit(callerID uint, in SubmitInput) (*models.GrantApplication, error) {
	applicant, err := s.caller(callerID)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	app := &models.GrantApplication{
		Code:            models.NewGrantCode(now),
		ApplicantID:     applicant.ID,
		Title:           in.Title,
		Summary:         in.Summary,
		AmountRequested: in.AmountRequested,
		Status:          domain.GrantStatusPending,
		SubmittedAt:     now,
	}
	entry := &models.GrantStatusEntry{
		Status:    domain.GrantStatusPending,
		Notes:     "Application submitted",
		ActorName: applicant.Name(),
	}
	if err := s.repo.CreateWithHistory(app, entry); err != nil {
		return nil, err
	}
	s.publish()
	s.notifyGrantAdmins(fmt.Sprintf("New grant application %s from %s", app.Code, applicant.Name()), app.ID, domain.NotifTypeGrantSubmission)
	return app, nil
}

// Reapply creates a new application linked to a prior one belonging to
// the same applicant, carrying an incremented resubmission counter.
func (s *GrantService) Reapply(callerID, priorID uint, in SubmitInput) (*models.GrantApplication, error) {
	applicant, err := s.caller(callerID)
	if err != nil {
		return nil, err
	}
	prior, err := s.load(priorID)
	if err != nil {
		return nil, err
	}
	if prior.ApplicantID != applicant.ID {
		return nil, fmt.Errorf("only the original applicant may reapply: %w", domain.ErrPermissionDenied)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	app := &models.GrantApplication{
		Code:              models.NewGrantCode(now),
		ApplicantID:       applicant.ID,
		Title:             in.Title,
		Summary:           in.Summary,
		AmountRequested:   in.AmountRequested,
		Status:            domain.GrantStatusPending,
		SubmittedAt:       now,
		ResubmittedFromID: &prior.ID,
		ResubmissionCount: prior.ResubmissionCount + 1,
	}
	entry := &models.GrantStatusEntry{
		Status:    domain.GrantStatusPending,
		Notes:     fmt.Sprintf("Resubmission of %s", prior.Code),
		ActorName: applicant.Name(),
	}
	if err := s.repo.CreateWithHistory(app, entry); err != nil {
		return nil, err
	}
	s.publish()
	s.notifyGrantAdmins(fmt.Sprintf("Resubmitted grant application %s (previously %s) from %s", app.Code, prior.Code, applicant.Name()), app.ID, domain.NotifTypeGrantResubmission)
	return app, nil
}

// RejectPending rejects a PENDING application. Terminal.
func (s *GrantService) RejectPending(callerID, appID uint, notes string) (*models.GrantApplication, error) {
	actor, err := s.elevatedCaller(callerID)
	if err != nil {
		return nil, err
	}
	app, err := s.load(appID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(app, domain.GrantStatusPending); err != nil {
		return nil, err
	}
	if err := s.transition(app, domain.GrantStatusRejected, notes, actor.Name()); err != nil {
		return nil, err
	}
	s.notifyApplicant(app, fmt.Sprintf("Your grant application %s was not successful", app.Code), domain.NotifTypeGrantDecision)
	return app, nil
}

// MakeConditionalOffer approves a PENDING application with an offered
// amount. The only transition allowed to set amount_approved.
func (s *GrantService) MakeConditionalOffer(callerID, appID uint, amountCents int64, notes string) (*models.GrantApplication, error) {
	actor, err := s.elevatedCaller(callerID)
	if err != nil {
		return nil, err
	}
	app, err := s.load(appID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(app, domain.GrantStatusPending); err != nil {
		return nil, err
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("offer amount must be positive: %w", domain.ErrValidation)
	}
	if app.AmountApproved != nil {
		return nil, fmt.Errorf("amount_approved already set for %s: %w", app.Code, domain.ErrValidation)
	}
	app.AmountApproved = &amountCents
	if err := s.transition(app, domain.GrantStatusConditionalOffer, notes, actor.Name()); err != nil {
		return nil, err
	}
	s.notifyApplicant(app, fmt.Sprintf("Your grant application %s received a conditional offer", app.Code), domain.NotifTypeGrantDecision)
	return app, nil
}

// AcceptOffer moves a CONDITIONAL_OFFER application to
// EARLY_REPORT_REQUIRED. Applicant only.
func (s *GrantService) AcceptOffer(callerID, appID uint) (*models.GrantApplication, error) {
	applicant, err := s.caller(callerID)
	if err != nil {
		return nil, err
	}
	app, err := s.load(appID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != applicant.ID {
		return nil, fmt.Errorf("only the applicant may accept an offer: %w", domain.ErrPermissionDenied)
	}
	if err := requireStatus(app, domain.GrantStatusConditionalOffer); err != nil {
		return nil, err
	}
	if err := s.transition(app, domain.GrantStatusEarlyReportRequired, "Offer accepted", applicant.Name()); err != nil {
		return nil, err
	}
	s.notifyGrantAdmins(fmt.Sprintf("%s accepted the conditional offer for %s", applicant.Name(), app.Code), app.ID, domain.NotifTypeGrantDecision)
	return app, nil
}

// DeclineOffer rejects the offer. Applicant only; terminal.
func (s *GrantService) DeclineOffer(callerID, appID uint, notes string) (*models.GrantApplication, error) {
	applicant, err := s.caller(callerID)
	if err != nil {
		return nil, err
	}
	app, err := s.load(appID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != applicant.ID {
		return nil, fmt.Errorf("only the applicant may decline an offer: %w", domain.ErrPermissionDenied)
	}
	if err := requireStatus(app, domain.GrantStatusConditionalOffer); err != nil {
		return nil, err
	}
	if notes == "" {
		notes = "Offer declined"
	}
	if err := s.transition(app, domain.GrantStatusRejected, notes, applicant.Name()); err != nil {
		return nil, err
	}
	s.notifyGrantAdmins(fmt.Sprintf("%s declined the conditional offer for %s", applicant.Name(), app.Code), app.ID, domain.NotifTypeGrantDecision)
	return app, nil
}

// SubmitEarlyReport attaches an early report file and moves the
// application to EARLY_REPORT_SUBMITTED. Applicant only.
func (s *GrantService) SubmitEarlyReport(callerID, appID uint, storagePath, filename string) (*models.GrantApplication, error) {
	return s.submitReport(callerID, appID, domain.ReportStageEarly, storagePath, filename)
}

// SubmitFinalReport attaches a final report file and moves the
// application to FINAL_REPORT_SUBMITTED. Applicant only.
func (s *GrantService) SubmitFinalReport(callerID, appID uint, storagePath, filename string) (*models.GrantApplication, error) {
	return s.submitReport(callerID, appID, domain.ReportStageFinal, storagePath, filename)
}

func (s *GrantService) submitReport(callerID, appID uint, stage, storagePath, filename string) (*models.GrantApplication, error) {
	applicant, err := s.caller(callerID)
	if err != nil {
		return nil, err
	}
	app, err := s.load(appID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != applicant.ID {
		return nil, fmt.Errorf("only the applicant may submit reports: %w", domain.ErrPermissionDenied)
	}
	if storagePath == "" || filename == "" {
		return nil, fmt.Errorf("report file is required: %w", domain.ErrValidation)
	}
	required, submitted := domain.GrantStatusEarlyReportRequired, domain.GrantStatusEarlyReportSubmitted
	label := "Early"
	if stage == domain.ReportStageFinal {
		required, submitted = domain.GrantStatusFinalReportRequired, domain.GrantStatusFinalReportSubmitted
		label = "Final"
	}
	if err := requireStatus(app, required); err != nil {
		return nil, err
	}
	file := &models.GrantReportFile{
		Stage:       stage,
		StoragePath: storagePath,
		Filename:    filename,
		SubmittedAt: time.Now(),
	}
	if err := s.transition(app, submitted, label+" report submitted: "+filename, applicant.Name(), file); err != nil {
		return nil, err
	}
	s.notifyGrantAdmins(fmt.Sprintf("%s report submitted for %s", label, app.Code), app.ID, domain.NotifTypeGrantReport)
	return app, nil
}

// ApproveEarlyReport accepts the early report and records the initial
// disbursement. The only transition allowed to set
// initial_disbursement_amount.
func (s *GrantService) ApproveEarlyReport(callerID, appID uint, disburseCents int64, notes string) (*models.GrantApplication, error) {
	actor, err := s.elevatedCaller(callerID)
	if err != nil {
		return nil, err
	}
	app, err := s.load(appID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(app, domain.GrantStatusEarlyReportSubmitted); err != nil {
		return nil, err
	}
	if disburseCents <= 0 {
		return nil, fmt.Errorf("disbursement amount must be positive: %w", domain.ErrValidation)
	}
	if app.InitialDisbursementAmount != nil {
		return nil, fmt.Errorf("initial disbursement already recorded for %s: %w", app.Code, domain.ErrValidation)
	}
	app.InitialDisbursementAmount = &disburseCents
	if err := s.transition(app, domain.GrantStatusFinalReportRequired, notes, actor.Name()); err != nil {
		return nil, err
	}
	s.notifyApplicant(app, fmt.Sprintf("Early report for %s approved; initial disbursement recorded", app.Code), domain.NotifTypeGrantReport)
	return app, nil
}

// RejectEarlyReport sends the application back to
// EARLY_REPORT_REQUIRED and increments the rejection counter.
func (s *GrantService) RejectEarlyReport(callerID, appID uint, notes string) (*models.GrantApplication, error) {
	return s.rejectReport(callerID, appID, domain.ReportStageEarly, notes)
}

// RejectFinalReport sends the application back to
// FINAL_REPORT_REQUIRED and increments the rejection counter.
func (s *GrantService) RejectFinalReport(callerID, appID uint, notes string) (*models.GrantApplication, error) {
	return s.rejectReport(callerID, appID, domain.ReportStageFinal, notes)
}

func (s *GrantService) rejectReport(callerID, appID uint, stage, notes string) (*models.GrantApplication, error) {
	actor, err := s.elevatedCaller(callerID)
	if err != nil {
		return nil, err
	}
	app, err := s.load(appID)
	if err != nil {
		return nil, err
	}
	submitted, required := domain.GrantStatusEarlyReportSubmitted, domain.GrantStatusEarlyReportRequired
	label := "Early"
	if stage == domain.ReportStageFinal {
		submitted, required = domain.GrantStatusFinalReportSubmitted, domain.GrantStatusFinalReportRequired
		label = "Final"
	}
	if err := requireStatus(app, submitted); err != nil {
		return nil, err
	}
	if stage == domain.ReportStageFinal {
		app.FinalReportRejections++
	} else {
		app.EarlyReportRejections++
	}
	if err := s.transition(app, required, notes, actor.Name()); err != nil {
		return nil, err
	}
	s.notifyApplicant(app, fmt.Sprintf("%s report for %s needs changes; please resubmit", label, app.Code), domain.NotifTypeGrantReport)
	return app, nil
}

// Complete closes a FINAL_REPORT_SUBMITTED application and records the
// final disbursement. The only transition allowed to set
// final_disbursement_amount. Terminal.
func (s *GrantService) Complete(callerID, appID uint, finalCents int64, notes string) (*models.GrantApplication, error) {
	actor, err := s.elevatedCaller(callerID)
	if err != nil {
		return nil, err
	}
	app, err := s.load(appID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(app, domain.GrantStatusFinalReportSubmitted); err != nil {
		return nil, err
	}
	if finalCents <= 0 {
		return nil, fmt.Errorf("final disbursement must be positive: %w", domain.ErrValidation)
	}
	if app.FinalDisbursementAmount != nil {
		return nil, fmt.Errorf("final disbursement already recorded for %s: %w", app.Code, domain.ErrValidation)
	}
	app.FinalDisbursementAmount = &finalCents
	if err := s.transition(app, domain.GrantStatusComplete, notes, actor.Name()); err != nil {
		return nil, err
	}
	s.notifyApplicant(app, fmt.Sprintf("Grant application %s is complete; final disbursement recorded", app.Code), domain.NotifTypeGrantDecision)
	return app, nil
}

// Get returns an application with history and files. Applicants see
// their own; elevated roles see all.
func (s *GrantService) Get(callerID, appID uint) (*models.GrantApplication, error) {
	caller, err := s.caller(callerID)
	if err != nil {
		return nil, err
	}
	app, err := s.load(appID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != caller.ID && !caller.IsElevated() {
		return nil, fmt.Errorf("application %d: %w", appID, domain.ErrNotFound)
	}
	return app, nil
}
