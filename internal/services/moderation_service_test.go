package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadhub/squadhub-backend/internal/apperr"
	"github.com/squadhub/squadhub-backend/internal/dto"
)

func TestFilterContent(t *testing.T) {
	cs := NewContentService()

	tests := []struct {
		name       string
		text       string
		allowLinks bool
		wantReason string
	}{
		{"clean", "Newton's second law is neat", false, ""},
		{"banned word", "this is a SCAM", false, "inappropriate_language"},
		{"banned inside word is fine", "scampi for lunch", false, ""},
		{"url", "see www.example.com/x", false, "url_not_allowed"},
		{"url allowed", "see https://example.com", true, ""},
		{"email", "write to me@example.com", false, "contact_info_not_allowed"},
		{"phone", "call 555-123-4567", false, "contact_info_not_allowed"},
		{"repeated chars", "heyyyyyy", false, "spam_detected"},
		{"caps", "WHERE ARE THE NOTES PLEASE", false, "excessive_caps"},
		{"two caps words", "HELLO THERE friend", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := cs.FilterContent(tt.text, tt.allowLinks)
			assert.Equal(t, tt.wantReason == "", ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestCleanSanitizes(t *testing.T) {
	cs := NewContentService()

	got, err := cs.Clean(`<img src=x onerror=alert(1)>hello <i>world</i>`, false)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	_, err = cs.Clean("<p></p>", false)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = cs.Clean("buy nudes", true)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	assert.Equal(t, "Your message contains inappropriate language.", apperr.Message(err))
}

func TestReportLifecycle(t *testing.T) {
	env := newTestEnv(t)
	reporter := env.fx.CreateUser("Reporter", nil, time.Now())

	_, err := env.reports.Create(reporter.ID, &dto.CreateReportRequest{ContentType: "video", ContentID: "nope", Reason: ""})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 3)

	target := uuid.New()
	report, err := env.reports.Create(reporter.ID, &dto.CreateReportRequest{
		ContentType: "discussion",
		ContentID:   target.String(),
		Reason:      "spam",
	})
	require.NoError(t, err)
	assert.Equal(t, ReportPending, report.Status)

	pending, total, err := env.reports.List(ReportPending, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, pending, 1)

	admin := env.fx.CreateAdmin("Admin")
	actioned, err := env.reports.Action(report.ID, admin.ID, &dto.ActionReportRequest{Status: ReportActioned, AdminNote: " removed "})
	require.NoError(t, err)
	assert.Equal(t, ReportActioned, actioned.Status)
	assert.Equal(t, "removed", actioned.AdminNote)
	require.NotNil(t, actioned.ReviewedBy)
	assert.Equal(t, admin.ID, *actioned.ReviewedBy)
	assert.NotNil(t, actioned.ReviewedAt)

	_, err = env.reports.Action(uuid.New(), admin.ID, &dto.ActionReportRequest{Status: ReportDismissed})
	assert.ErrorIs(t, err, ErrReportNotFound)
}
