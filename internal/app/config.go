package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
	"github.com/yungbote/pension-pipeline/internal/utils"
)

type Config struct {
	Environment    string
	HTTPAddr       string
	AutoMigrate    bool
	AllowedOrigins []string

	Tables     repos.Tables
	Policy     pension.MalformedPeriodPolicy
	Thresholds pension.Thresholds
	Schedule   string
}

// fileConfig is the PIPELINE_CONFIG_FILE overlay. Keys absent from the file
// keep the values already loaded from the environment.
type fileConfig struct {
	Tables     repos.Tables       `yaml:"tables"`
	Policy     string             `yaml:"malformed_period_policy"`
	Schedule   string             `yaml:"schedule"`
	Thresholds pension.Thresholds `yaml:"thresholds"`
}

func LoadConfig(log *logger.Logger) (Config, error) {
	def := pension.DefaultThresholds()
	cfg := Config{
		Environment:    utils.GetEnv("APP_ENV", "development", log),
		HTTPAddr:       utils.GetEnv("HTTP_ADDR", ":8080", log),
		AutoMigrate:    utils.GetEnvAsBool("DB_AUTO_MIGRATE", true, log),
		AllowedOrigins: splitList(utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log)),
		Tables: repos.Tables{
			RawMembers:            utils.GetEnv("TABLE_RAW_MEMBERS", "", log),
			RawEmployers:          utils.GetEnv("TABLE_RAW_EMPLOYERS", "", log),
			RawContributions:      utils.GetEnv("TABLE_RAW_CONTRIBUTIONS", "", log),
			MembersClean:          utils.GetEnv("TABLE_MEMBERS_CLEAN", "", log),
			ContributionsEnriched: utils.GetEnv("TABLE_CONTRIBUTIONS_ENRICHED", "", log),
			MemberSummary:         utils.GetEnv("TABLE_MEMBER_SUMMARY", "", log),
		},
		Thresholds: pension.Thresholds{
			MinAge:            utils.GetEnvAsInt("QUALITY_MIN_AGE", def.MinAge, log),
			MaxAge:            utils.GetEnvAsInt("QUALITY_MAX_AGE", def.MaxAge, log),
			MinEmployerAmount: def.MinEmployerAmount,
			MaxEmployerAmount: utils.GetEnvAsFloat("QUALITY_MAX_EMPLOYER_AMOUNT", def.MaxEmployerAmount, log),
		},
		Schedule: strings.TrimSpace(utils.GetEnv("PIPELINE_SCHEDULE", "", log)),
	}
	policy := utils.GetEnv("MALFORMED_PERIOD_POLICY", string(pension.PolicyFail), log)

	if path := strings.TrimSpace(utils.GetEnv("PIPELINE_CONFIG_FILE", "", log)); path != "" {
		fc := fileConfig{
			Tables:     cfg.Tables,
			Policy:     policy,
			Schedule:   cfg.Schedule,
			Thresholds: cfg.Thresholds,
		}
		if err := readConfigFile(path, &fc); err != nil {
			return Config{}, err
		}
		cfg.Tables = fc.Tables
		cfg.Schedule = strings.TrimSpace(fc.Schedule)
		cfg.Thresholds = fc.Thresholds
		policy = fc.Policy
		log.Info("Loaded pipeline config file", "path", path)
	}

	p, ok := pension.ParseMalformedPeriodPolicy(strings.ToLower(strings.TrimSpace(policy)))
	if !ok {
		return Config{}, fmt.Errorf("invalid malformed period policy %q (want fail or null)", policy)
	}
	cfg.Policy = p

	if cfg.Thresholds.MinAge > cfg.Thresholds.MaxAge {
		return Config{}, fmt.Errorf("quality age band is empty: min %d > max %d", cfg.Thresholds.MinAge, cfg.Thresholds.MaxAge)
	}
	return cfg, nil
}

func readConfigFile(path string, into *fileConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
