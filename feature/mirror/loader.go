package mirror

import (
	"zone-mirror/core/cloudflare"
	"zone-mirror/core/secrets"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the mirror feature.
func NewFeature(db *gorm.DB, logg *zap.Logger, apiCfg cloudflare.Config, cfPath string, cipher *secrets.Cipher) *Feature {
	svc := NewService(db, logg, apiCfg, cfPath, cipher)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Service exposes the underlying service, used by the serve command's
// scheduler.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "mirror"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
