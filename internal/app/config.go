package app

import (
	"strings"
	"time"

	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
	"github.com/yungbote/veriflow-backend/internal/platform/envutil"
	"github.com/yungbote/veriflow-backend/internal/services"
)

type Config struct {
	Port                string
	FirestoreProjectID  string
	StripeWebhookSecret string
	CheckSourceObjects  bool
	AllowOrigins        []string
	Nudge               services.NudgeConfig
	NudgeInterval       time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	projectID := envutil.String("FIRESTORE_PROJECT_ID", "")
	if projectID == "" {
		projectID = envutil.String("GOOGLE_CLOUD_PROJECT", "")
	}

	var origins []string
	for _, o := range strings.Split(envutil.String("CORS_ALLOW_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	cfg := Config{
		Port:                envutil.String("PORT", "8080"),
		FirestoreProjectID:  projectID,
		StripeWebhookSecret: envutil.String("STRIPE_WEBHOOK_SECRET", ""),
		CheckSourceObjects:  envutil.Bool("CONTRACT_SOURCE_BUCKET_CHECK", false),
		AllowOrigins:        origins,
		Nudge: services.NudgeConfig{
			ThresholdA:  time.Duration(envutil.Int("NUDGE_A_THRESHOLD_HOURS", 24)) * time.Hour,
			ThresholdB:  time.Duration(envutil.Int("NUDGE_B_THRESHOLD_HOURS", 72)) * time.Hour,
			Concurrency: envutil.Int("NUDGE_CONCURRENCY", 16),
		},
		NudgeInterval: time.Duration(envutil.Int("NUDGE_INTERVAL_MINUTES", 0)) * time.Minute,
	}

	if cfg.StripeWebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET not set; webhook signature verification will reject everything")
	}
	return cfg
}
