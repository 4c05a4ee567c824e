package domain

import (
	"context"
	"slices"
	"time"
)

type SettingKey string

const (
	SettingLogoURL         SettingKey = "logo_url"
	SettingMetaTitle       SettingKey = "meta_title"
	SettingMetaDescription SettingKey = "meta_description"
)

var KnownSettingKeys = []SettingKey{SettingLogoURL, SettingMetaTitle, SettingMetaDescription}

func (k SettingKey) Valid() bool {
	return slices.Contains(KnownSettingKeys, k)
}

type Setting struct {
	Key         SettingKey `json:"key"`
	Value       string     `json:"value"`
	Description *string    `json:"description,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LogoUpload is an administrative branding image
type LogoUpload struct {
	FileName string
	MimeType string
	Data     []byte
}

type SettingsRepository interface {
	Get(ctx context.Context, key SettingKey) (*Setting, error)
	List(ctx context.Context) ([]Setting, error)
	Upsert(ctx context.Context, s *Setting) error
}

type SettingsUsecase interface {
	Public(ctx context.Context) (map[SettingKey]string, error)
	Update(ctx context.Context, actor Actor, key SettingKey, value, description string) (*Setting, error)
	UploadLogo(ctx context.Context, actor Actor, upload LogoUpload) (*Setting, error)
}
