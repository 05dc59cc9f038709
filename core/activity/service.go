package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"github.com/trezcool/hrms/core"
)

const maxDetailsLen = 2000

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) error
		FilterEntries(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Entry, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record stores an entry. Failures are logged, never returned.
func (svc *Service) Record(ctx context.Context, ne NewEntry) {
	details := ne.Details
	if len(details) > maxDetailsLen {
		details = details[:maxDetailsLen]
	}
	err := svc.repo.CreateEntry(ctx, Entry{
		ID:         uuid.NewString(),
		UserID:     core.StringPtr(ne.UserID),
		Username:   ne.Username,
		Action:     ne.Action,
		EntityType: ne.EntityType,
		EntityID:   ne.EntityID,
		Details:    details,
		IPAddress:  ne.IPAddress,
		UserAgent:  SummarizeUserAgent(ne.UserAgent),
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("activity: recording %s %s: %v", ne.Action, ne.EntityType, err), err)
	}
}

func (svc *Service) List(ctx context.Context, filter QueryFilter, opts core.ListOptions) ([]Entry, error) {
	filter.Clean()
	opts.Orderings = core.CleanOrderings(opts.Orderings, OrderingFields...)
	return svc.repo.FilterEntries(ctx, filter, opts)
}

// SummarizeUserAgent renders a user agent header as e.g. "Firefox 120.0 on Linux".
func SummarizeUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if ua.Bot() {
		return "Bot: " + name
	}

	var sb strings.Builder
	sb.WriteString(name)
	if version != "" {
		sb.WriteString(" " + version)
	}
	if os := ua.OS(); os != "" {
		sb.WriteString(" on " + os)
	}
	if ua.Mobile() {
		sb.WriteString(" (mobile)")
	}
	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return raw
	}
	return summary
}
