package content

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/jonathan/sng-admin/internal/audit"
	"github.com/jonathan/sng-admin/internal/schemas"
	"github.com/jonathan/sng-admin/internal/storage"
	"github.com/jonathan/sng-admin/internal/types"
)

// Settings reads and writes the singular site settings document.
type Settings struct {
	store     *storage.Store
	validator *schemas.Validator
	audit     *audit.Logger
	logger    *slog.Logger
	ref       storage.Ref
}

// NewSettings creates the settings service. A missing document reads as
// the built-in defaults.
func NewSettings(store *storage.Store, v *schemas.Validator, a *audit.Logger, logger *slog.Logger, ref storage.Ref) *Settings {
	if ref.Fallback == nil {
		defaults, err := json.Marshal(types.DefaultSiteSettings())
		if err == nil {
			ref.Fallback = defaults
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Settings{store: store, validator: v, audit: a, logger: logger, ref: ref}
}

// Get returns the normalized settings.
func (s *Settings) Get(ctx context.Context) (types.SiteSettings, error) {
	raw, err := s.store.ReadObject(ctx, s.ref)
	if err != nil {
		return types.SiteSettings{}, err
	}
	return s.normalize(ctx, raw), nil
}

// Put validates, normalizes and stores settings.
func (s *Settings) Put(ctx context.Context, actor string, settings types.SiteSettings) (types.SiteSettings, error) {
	if err := s.validator.Struct(settings); err != nil {
		return types.SiteSettings{}, err
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return types.SiteSettings{}, err
	}
	normalized := s.normalize(ctx, raw)

	if err := s.store.WriteObject(ctx, s.ref, normalized); err != nil {
		return types.SiteSettings{}, err
	}

	s.audit.Record(ctx, audit.Entry{Actor: actor, Action: "update", Resource: "settings", ID: "site-settings"})
	return normalized, nil
}

// normalize merges a possibly partial payload over the defaults, collapses
// whitespace and drops blank highlights. Anything that still fails
// validation yields the defaults.
func (s *Settings) normalize(ctx context.Context, raw json.RawMessage) types.SiteSettings {
	settings := types.DefaultSiteSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logger.WarnContext(ctx, "site settings payload is malformed, using defaults", "error", err)
		return types.DefaultSiteSettings()
	}

	careers := &settings.Careers
	careers.AttractionTitle = normalizeSpace(careers.AttractionTitle)
	careers.AttractionText = normalizeSpace(careers.AttractionText)
	highlights := make([]string, 0, len(careers.AttractionHighlights))
	for _, h := range careers.AttractionHighlights {
		if h = normalizeSpace(h); h != "" {
			highlights = append(highlights, h)
		}
	}
	careers.AttractionHighlights = highlights

	if err := s.validator.Struct(settings); err != nil {
		s.logger.WarnContext(ctx, "site settings are invalid, using defaults", "error", err)
		return types.DefaultSiteSettings()
	}
	return settings
}

// normalizeSpace collapses whitespace runs to one space and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
