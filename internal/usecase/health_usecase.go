package usecase

import (
	"context"
	"time"

	"go-recruitment-workflow/pkg/logger"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	// Check reports "ok" overall only when every probe passed
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks map[string]HealthCheck
}

// NewHealthUsecase takes named probes; nil probes are reported as "disabled"
func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true
	for name, check := range u.checks {
		if check == nil {
			status[name] = "disabled"
			continue
		}
		if err := check(ctx); err != nil {
			logger.Log.Warn("Health probe failed", "dependency", name, "error", err)
			status[name] = "error"
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}
