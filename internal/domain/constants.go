package domain

const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
	RolePlayer = "PLAYER"
	RoleUser   = "USER"
)

// IsElevated reports whether a role may perform moderation and
// configuration actions.
func IsElevated(role string) bool {
	return role == RoleAdmin || role == RoleEditor
}

// Grant application statuses.
const (
	GrantStatusPending              = "PENDING"
	GrantStatusRejected             = "REJECTED"
	GrantStatusConditionalOffer     = "CONDITIONAL_OFFER"
	GrantStatusEarlyReportRequired  = "EARLY_REPORT_REQUIRED"
	GrantStatusEarlyReportSubmitted = "EARLY_REPORT_SUBMITTED"
	GrantStatusFinalReportRequired  = "FINAL_REPORT_REQUIRED"
	GrantStatusFinalReportSubmitted = "FINAL_REPORT_SUBMITTED"
	GrantStatusComplete             = "COMPLETE"
)

// Notification audiences. AudienceUser rows carry a user id; the rest
// are broadcast classes resolved at read time.
const (
	AudienceUser         = "user"
	AudienceAdmins       = "admins"
	AudienceGrantAdmins  = "grant_admins"
	AudienceGlobalBanner = "global_banner"
)

const (
	NotifTypeGrantSubmission   = "GRANT_SUBMISSION"
	NotifTypeGrantResubmission = "GRANT_RESUBMISSION"
	NotifTypeGrantDecision     = "GRANT_DECISION"
	NotifTypeGrantReport       = "GRANT_REPORT"
	NotifTypeAnnouncement      = "ANNOUNCEMENT"
	NotifTypeBanner            = "BANNER"
)

// Report stages for grant report files.
const (
	ReportStageEarly = "EARLY"
	ReportStageFinal = "FINAL"
)

// Cluster categories used by the board's import sheets. Free-form
// values are still accepted on manual creation.
var ClusterCategories = []string{
	"ATTRACTION", "HOMESTAY", "FOOD", "CULTURE", "NATURE", "CRAFT",
}
