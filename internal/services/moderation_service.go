package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/database"
	"github.com/squadhub/squadhub-backend/internal/dto"
	"github.com/squadhub/squadhub-backend/internal/models"
	"github.com/squadhub/squadhub-backend/internal/validation"
)

var (
	ErrReportNotFound = apperr.NotFound("report not found")
	ErrEmptyContent   = apperr.Invalid("content is required")
)

const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportActioned  = "actioned"
	ReportDismissed = "dismissed"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"retard", "retarded",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

// ContentService sanitises and screens user-written text: discussion posts,
// creation comments, creations and marketplace listings.
type ContentService struct {
	policy              *bluemonday.Policy
	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	emailPattern        *regexp.Regexp
	phonePattern        *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
	allCapsPattern      *regexp.Regexp
}

func NewContentService() *ContentService {
	cs := &ContentService{policy: bluemonday.StrictPolicy()}

	cs.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		cs.bannedWordRegexps = append(cs.bannedWordRegexps, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}

	// RE2 has no backreferences, so runs are spelled out per character.
	runs := make([]string, 0, 29)
	for ch := 'a'; ch <= 'z'; ch++ {
		runs = append(runs, string(ch)+"{6,}")
	}
	runs = append(runs, `!{6,}`, `\?{6,}`, `\.{6,}`)

	cs.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	cs.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	cs.phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
	cs.repeatedCharPattern = regexp.MustCompile(`(?i)(` + strings.Join(runs, "|") + `)`)
	cs.allCapsPattern = regexp.MustCompile(`[A-Z]{5,}`)
	return cs
}

// Sanitize strips all markup. The result is HTML-escaped text.
func (cs *ContentService) Sanitize(text string) string {
	return strings.TrimSpace(cs.policy.Sanitize(text))
}

// Clean sanitises text and runs the content filter over it. Links are only
// accepted where allowLinks is set (creations, listings).
func (cs *ContentService) Clean(text string, allowLinks bool) (string, error) {
	cleaned := cs.Sanitize(text)
	if cleaned == "" {
		return "", ErrEmptyContent
	}
	if ok, reason := cs.FilterContent(cleaned, allowLinks); !ok {
		return "", apperr.Invalid(RejectionMessage(reason))
	}
	return cleaned, nil
}

// FilterContent reports whether text passes, and the rejection reason if not.
func (cs *ContentService) FilterContent(text string, allowLinks bool) (bool, string) {
	if text == "" {
		return true, ""
	}
	for _, re := range cs.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if !allowLinks {
		if cs.urlPattern.MatchString(text) {
			return false, "url_not_allowed"
		}
		if cs.emailPattern.MatchString(text) || cs.phonePattern.MatchString(text) {
			return false, "contact_info_not_allowed"
		}
	}
	if cs.repeatedCharPattern.MatchString(text) {
		return false, "spam_detected"
	}
	if len(cs.allCapsPattern.FindAllString(text, -1)) > 2 {
		return false, "excessive_caps"
	}
	return true, ""
}

func RejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language":   "Your message contains inappropriate language.",
		"url_not_allowed":          "Links are not allowed here.",
		"contact_info_not_allowed": "Contact information is not allowed.",
		"spam_detected":            "Your message appears to be spam.",
		"excessive_caps":           "Please avoid using excessive capital letters.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Your message does not meet our community guidelines."
}

// ReportService stores user reports for admin review.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) Create(reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	report := models.Report{
		ID:          uuid.New(),
		ReporterID:  reporterID,
		ContentType: req.ContentType,
		ContentID:   strings.ToLower(req.ContentID),
		Reason:      strings.TrimSpace(req.Reason),
		Status:      ReportPending,
	}
	if err := s.db.Omit("Reporter").Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

func (s *ReportService) List(status string, page, limit int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	if err := query.Order("created_at DESC").Scopes(database.Paginate(page, limit)).Find(&reports).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, total, nil
}

// Action records an admin's decision on a report.
func (s *ReportService) Action(reportID, reviewerID uuid.UUID, req *dto.ActionReportRequest) (*models.Report, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	result := s.db.Model(&models.Report{}).
		Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"status":      req.Status,
			"admin_note":  strings.TrimSpace(req.AdminNote),
			"reviewed_by": reviewerID,
			"reviewed_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrReportNotFound
	}

	var report models.Report
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload report: %w", err)
	}
	return &report, nil
}
