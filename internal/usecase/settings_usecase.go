package usecase

import (
	"context"
	"strings"
	"time"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/apperror"
	"go-recruitment-workflow/pkg/imaging"
	"go-recruitment-workflow/pkg/logger"
	"go-recruitment-workflow/pkg/security"
)

const (
	logoMaxDimension = 512
	brandingFolder   = "branding"
)

type settingsUsecase struct {
	settings domain.SettingsRepository
	storage  domain.DocumentStorage
	scanner  domain.ContentScanner
	audit    *security.AuditLogger
	assetTTL time.Duration
}

func NewSettingsUsecase(
	settings domain.SettingsRepository,
	storage domain.DocumentStorage,
	scanner domain.ContentScanner,
	audit *security.AuditLogger,
	assetTTL time.Duration,
) domain.SettingsUsecase {
	return &settingsUsecase{settings: settings, storage: storage, scanner: scanner, audit: audit, assetTTL: assetTTL}
}

// isExternalURL separates admin-entered URLs from object paths we signed ourselves
func isExternalURL(v string) bool {
	return strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "http://")
}

// Public returns every known key. A stored logo object is re-signed on each
// read so the URL never outlives the signing limit of the store.
func (u *settingsUsecase) Public(ctx context.Context) (map[domain.SettingKey]string, error) {
	list, err := u.settings.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	out := make(map[domain.SettingKey]string, len(domain.KnownSettingKeys))
	for _, k := range domain.KnownSettingKeys {
		out[k] = ""
	}
	for _, s := range list {
		if !s.Key.Valid() {
			continue
		}
		out[s.Key] = s.Value
	}

	if logo := out[domain.SettingLogoURL]; logo != "" && !isExternalURL(logo) {
		signed, err := u.storage.AccessURL(ctx, logo, u.assetTTL)
		if err != nil {
			logger.Log.Warn("Failed to sign logo URL", "path", logo, "error", err)
			signed = ""
		}
		out[domain.SettingLogoURL] = signed
	}
	return out, nil
}

func (u *settingsUsecase) Update(ctx context.Context, actor domain.Actor, key domain.SettingKey, value, description string) (*domain.Setting, error) {
	if !domain.CapabilitiesOf(actor.Role).ManageSettings {
		return nil, apperror.Forbidden("Admin access required")
	}
	if !key.Valid() {
		return nil, apperror.BadRequest("Unknown setting: " + string(key))
	}
	value = strings.TrimSpace(value)
	if key == domain.SettingLogoURL && value != "" && !strings.HasPrefix(value, "https://") {
		return nil, apperror.BadRequest("Logo URL must start with https://")
	}

	previous, err := u.settings.Get(ctx, key)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	s := &domain.Setting{Key: key, Value: value, Description: strPtr(strings.TrimSpace(description))}
	if err := u.settings.Upsert(ctx, s); err != nil {
		return nil, apperror.Internal(err)
	}
	if key == domain.SettingLogoURL {
		u.dropStoredLogo(ctx, previous)
	}

	u.audit.LogAction(ctx, security.EventSettingsChanged, actor.ID, "", requestID(ctx), map[string]any{"key": string(key)})
	return s, nil
}

// UploadLogo stores a downscaled logo and points logo_url at it. The returned
// setting carries a signed URL rather than the object path.
func (u *settingsUsecase) UploadLogo(ctx context.Context, actor domain.Actor, upload domain.LogoUpload) (*domain.Setting, error) {
	if !domain.CapabilitiesOf(actor.Role).ManageSettings {
		return nil, apperror.Forbidden("Admin access required")
	}

	check := security.ImagePolicy.Validate(upload.FileName, upload.Data)
	if !check.Valid {
		return nil, apperror.BadRequest("Invalid image: " + check.Error)
	}
	if err := u.scanner.Scan(ctx, upload.FileName, upload.Data); err != nil {
		return nil, apperror.BadRequest("The file was rejected by the malware scan")
	}

	data, contentType := upload.Data, check.ContentType
	scaled, scaledType, ok, err := imaging.Downscale(upload.Data, logoMaxDimension)
	switch {
	case err != nil:
		logger.Log.Warn("Logo downscale failed, storing original", "error", err)
	case ok:
		data, contentType = scaled, scaledType
	}

	previous, err := u.settings.Get(ctx, domain.SettingLogoURL)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	path, err := u.storage.Store(ctx, brandingFolder, data, contentType)
	if err != nil {
		return nil, apperror.Dependency("Could not store the logo, please try again", err)
	}

	s := &domain.Setting{Key: domain.SettingLogoURL, Value: path}
	if err := u.settings.Upsert(ctx, s); err != nil {
		_ = u.storage.Delete(context.WithoutCancel(ctx), path)
		return nil, apperror.Internal(err)
	}
	u.dropStoredLogo(ctx, previous)

	u.audit.LogAction(ctx, security.EventSettingsChanged, actor.ID, "", requestID(ctx), map[string]any{
		"key":   string(domain.SettingLogoURL),
		"bytes": len(data),
	})

	signed, err := u.storage.AccessURL(ctx, path, u.assetTTL)
	if err != nil {
		return nil, apperror.Dependency("The logo was saved but its URL could not be issued", err)
	}
	s.Value = signed
	return s, nil
}

func (u *settingsUsecase) dropStoredLogo(ctx context.Context, previous *domain.Setting) {
	if previous == nil || previous.Value == "" || isExternalURL(previous.Value) {
		return
	}
	if err := u.storage.Delete(context.WithoutCancel(ctx), previous.Value); err != nil {
		logger.Log.Warn("Failed to delete previous logo", "path", previous.Value, "error", err)
	}
}
