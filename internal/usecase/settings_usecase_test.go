package usecase_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"testing"
	"time"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/internal/usecase"
	"go-recruitment-workflow/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const assetTTL = 365 * 24 * time.Hour

func newSettings() (domain.SettingsUsecase, *MockSettingsRepo, *MockStorage, *MockScanner) {
	repo, store, scanner := new(MockSettingsRepo), new(MockStorage), new(MockScanner)
	return usecase.NewSettingsUsecase(repo, store, scanner, testAudit(), assetTTL), repo, store, scanner
}

func smallPNG(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestPublicSettings(t *testing.T) {
	ctx := context.Background()
	uc, repo, store, _ := newSettings()
	repo.On("List", ctx).Return([]domain.Setting{
		{Key: domain.SettingLogoURL, Value: "branding/logo.png"},
		{Key: domain.SettingMetaTitle, Value: "Kariyer"},
		{Key: "smtp_password", Value: "hunter2"},
	}, nil)
	store.On("AccessURL", ctx, "branding/logo.png", assetTTL).Return("https://cdn.example.com/signed", nil)

	out, err := uc.Public(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/signed", out[domain.SettingLogoURL])
	assert.Equal(t, "Kariyer", out[domain.SettingMetaTitle])
	assert.Equal(t, "", out[domain.SettingMetaDescription])
	assert.NotContains(t, out, domain.SettingKey("smtp_password"))
}

func TestPublicSettingsKeepsExternalLogo(t *testing.T) {
	ctx := context.Background()
	uc, repo, store, _ := newSettings()
	repo.On("List", ctx).Return([]domain.Setting{{Key: domain.SettingLogoURL, Value: "https://example.com/logo.png"}}, nil)

	out, err := uc.Public(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/logo.png", out[domain.SettingLogoURL])
	store.AssertNotCalled(t, "AccessURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSetting(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: "a1", Role: domain.RoleAdmin}

	t.Run("admin only", func(t *testing.T) {
		uc, _, _, _ := newSettings()
		_, err := uc.Update(ctx, domain.Actor{ID: "k1", Role: domain.RoleConsultant}, domain.SettingMetaTitle, "x", "")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("unknown key", func(t *testing.T) {
		uc, _, _, _ := newSettings()
		_, err := uc.Update(ctx, admin, "theme", "dark", "")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("plain http logo", func(t *testing.T) {
		uc, _, _, _ := newSettings()
		_, err := uc.Update(ctx, admin, domain.SettingLogoURL, "http://example.com/l.png", "")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("replacing a stored logo removes the object", func(t *testing.T) {
		uc, repo, store, _ := newSettings()
		repo.On("Get", ctx, domain.SettingLogoURL).Return(&domain.Setting{Key: domain.SettingLogoURL, Value: "branding/old.png"}, nil)
		repo.On("Upsert", ctx, mock.Anything).Return(nil)
		store.On("Delete", mock.Anything, "branding/old.png").Return(nil)

		s, err := uc.Update(ctx, admin, domain.SettingLogoURL, " https://example.com/new.png ", "new brand")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/new.png", s.Value)
		require.NotNil(t, s.Description)
		assert.Equal(t, "new brand", *s.Description)
		store.AssertCalled(t, "Delete", mock.Anything, "branding/old.png")
	})
}

func TestUploadLogo(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: "a1", Role: domain.RoleAdmin}

	t.Run("stores and signs", func(t *testing.T) {
		uc, repo, store, scanner := newSettings()
		data := smallPNG(t)
		scanner.On("Scan", ctx, "logo.png", data).Return(nil)
		repo.On("Get", ctx, domain.SettingLogoURL).Return(nil, nil)
		store.On("Store", ctx, "branding", data, "image/png").Return("branding/abc.png", nil)
		repo.On("Upsert", ctx, mock.MatchedBy(func(s *domain.Setting) bool {
			return s.Key == domain.SettingLogoURL && s.Value == "branding/abc.png"
		})).Return(nil)
		store.On("AccessURL", ctx, "branding/abc.png", assetTTL).Return("https://cdn.example.com/abc", nil)

		s, err := uc.UploadLogo(ctx, admin, domain.LogoUpload{FileName: "logo.png", MimeType: "image/png", Data: data})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/abc", s.Value)
	})

	t.Run("documents are not logos", func(t *testing.T) {
		uc, _, store, _ := newSettings()
		_, err := uc.UploadLogo(ctx, admin, domain.LogoUpload{FileName: "cv.pdf", Data: []byte("%PDF-1.4 test")})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed save removes the new object", func(t *testing.T) {
		uc, repo, store, scanner := newSettings()
		data := smallPNG(t)
		scanner.On("Scan", ctx, "logo.png", data).Return(nil)
		repo.On("Get", ctx, domain.SettingLogoURL).Return(nil, nil)
		store.On("Store", ctx, "branding", data, "image/png").Return("branding/abc.png", nil)
		repo.On("Upsert", ctx, mock.Anything).Return(assert.AnError)
		store.On("Delete", mock.Anything, "branding/abc.png").Return(nil)

		_, err := uc.UploadLogo(ctx, admin, domain.LogoUpload{FileName: "logo.png", Data: data})
		assert.Equal(t, http.StatusInternalServerError, apperror.CodeOf(err))
		store.AssertCalled(t, "Delete", mock.Anything, "branding/abc.png")
	})
}
