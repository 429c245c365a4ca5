package service

import (
	"fmt"
	"time"

	"jelajah/internal/domain"
	"jelajah/internal/models"
	"jelajah/internal/repository"
	"jelajah/internal/ws"
)

// NotificationService routes messages to the correct visibility class
// so callers never duplicate delivery logic. Audiences: a specific
// user, the admins role-group, the grant_admins role-group, or the
// single global banner.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	feed     *ws.Changefeed
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, feed *ws.Changefeed) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, feed: feed}
}

func (s *NotificationService) publish() {
	if s.feed != nil {
		s.feed.TableChanged("notifications")
	}
}

// NotifyGrantAdmins inserts one notification addressed to the
// grant_admins class, visible to the grant approver role only.
func (s *NotificationService) NotifyGrantAdmins(message string, applicationID *uint, notifType string) error {
	err := s.repo.Create(&models.Notification{
		Audience:      domain.AudienceGrantAdmins,
		Type:          notifType,
		Message:       message,
		ApplicationID: applicationID,
	})
	if err != nil {
		return err
	}
	s.publish()
	return nil
}

// NotifyUser inserts one notification addressed to a specific account.
func (s *NotificationService) NotifyUser(userID uint, message string, applicationID *uint, notifType string) error {
	err := s.repo.Create(&models.Notification{
		Audience:      domain.AudienceUser,
		UserID:        &userID,
		Type:          notifType,
		Message:       message,
		ApplicationID: applicationID,
	})
	if err != nil {
		return err
	}
	s.publish()
	return nil
}

// NotifyAdmins inserts one notification for the elevated role-group.
func (s *NotificationService) NotifyAdmins(message string, applicationID *uint, notifType string) error {
	err := s.repo.Create(&models.Notification{
		Audience:      domain.AudienceAdmins,
		Type:          notifType,
		Message:       message,
		ApplicationID: applicationID,
	})
	if err != nil {
		return err
	}
	s.publish()
	return nil
}

// BroadcastToAllUsers inserts one personally addressed notification per
// account. One row per user is deliberate: it keeps per-user read and
// clear state trivial at the cost of N rows per broadcast. Only
// elevated roles may broadcast; the check happens here, not in the UI.
func (s *NotificationService) BroadcastToAllUsers(callerID uint, message string) (int, error) {
	caller, err := s.userRepo.GetByID(callerID)
	if err != nil {
		return 0, err
	}
	if !caller.IsElevated() {
		return 0, fmt.Errorf("broadcast requires an elevated role: %w", domain.ErrPermissionDenied)
	}
	users, err := s.userRepo.ListAll()
	if err != nil {
		return 0, err
	}
	rows := make([]models.Notification, 0, len(users))
	for i := range users {
		uid := users[i].ID
		rows = append(rows, models.Notification{
			Audience: domain.AudienceUser,
			UserID:   &uid,
			Type:     domain.NotifTypeAnnouncement,
			Message:  message,
		})
	}
	if err := s.repo.CreateBatch(rows); err != nil {
		return 0, err
	}
	s.publish()
	return len(rows), nil
}

// SetBanner replaces the site-wide banner: delete any existing banner
// rows, then insert exactly one. The delete-then-insert pair is not
// transactional; two concurrent admins race and last write wins.
func (s *NotificationService) SetBanner(callerID uint, message string, expiresAt *time.Time) (*models.Notification, error) {
	caller, err := s.userRepo.GetByID(callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsElevated() {
		return nil, fmt.Errorf("banner management requires an elevated role: %w", domain.ErrPermissionDenied)
	}
	if message == "" {
		return nil, fmt.Errorf("banner message is required: %w", domain.ErrValidation)
	}
	if err := s.repo.DeleteBanners(); err != nil {
		return nil, err
	}
	banner := &models.Notification{
		Audience:  domain.AudienceGlobalBanner,
		Type:      domain.NotifTypeBanner,
		Message:   message,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(banner); err != nil {
		return nil, err
	}
	s.publish()
	return banner, nil
}

// VisibleTo computes the notification set for one account. Visibility
// is never stored; it is derived from audience, role, and the cleared
// set on every read.
func (s *NotificationService) VisibleTo(userID uint, role string, limit, offset int) ([]models.Notification, error) {
	candidates, err := s.repo.ListCandidatesFor(userID, role, limit, offset)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]models.Notification, 0, len(candidates))
	for _, n := range candidates {
		if n.VisibleTo(userID, role, now) {
			out = append(out, n)
		}
	}
	return out, nil
}

// MarkRead adds the user to the notification's read set.
func (s *NotificationService) MarkRead(userID uint, role string, notifID uint) error {
	n, err := s.repo.GetByID(notifID)
	if err != nil {
		return err
	}
	if !n.VisibleTo(userID, role, time.Now()) {
		return fmt.Errorf("notification %d: %w", notifID, domain.ErrNotFound)
	}
	if !n.MarkRead(userID) {
		return nil // already read
	}
	return s.repo.Save(n)
}

// Clear adds the user to the notification's cleared set, hiding it from
// their feed permanently.
func (s *NotificationService) Clear(userID uint, role string, notifID uint) error {
	n, err := s.repo.GetByID(notifID)
	if err != nil {
		return err
	}
	if !n.VisibleTo(userID, role, time.Now()) {
		return fmt.Errorf("notification %d: %w", notifID, domain.ErrNotFound)
	}
	if !n.Clear(userID) {
		return nil
	}
	if err := s.repo.Save(n); err != nil {
		return err
	}
	s.publish()
	return nil
}
