package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
)

// CandidateRegistry holds the allowed candidate names per office. An empty
// slice means the office accepts any name on the ballot.
type CandidateRegistry struct {
	President           []string
	VicePresident       []string
	Secretary           []string
	YouthRepresentative []string
}

// Config carries every environment-sourced setting, resolved once at startup
// and handed to components explicitly.
type Config struct {
	Port           int
	MongoURI       string
	DatabaseName   string
	JWTSecret      string
	AdminTokenHash string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	AllowedOrigins []string
	Candidates     CandidateRegistry
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:           8080,
		MongoURI:       os.Getenv("MONGO_URI"),
		DatabaseName:   os.Getenv("DB_NAME"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       587,
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		MailFrom:       os.Getenv("MAIL_FROM"),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),
		Candidates: CandidateRegistry{
			President:           splitList(os.Getenv("CANDIDATES_PRESIDENT")),
			VicePresident:       splitList(os.Getenv("CANDIDATES_VICE_PRESIDENT")),
			Secretary:           splitList(os.Getenv("CANDIDATES_SECRETARY")),
			YouthRepresentative: splitList(os.Getenv("CANDIDATES_YOUTH_REPRESENTATIVE")),
		},
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}
	if smtpPortStr := os.Getenv("SMTP_PORT"); smtpPortStr != "" {
		smtpPort, err := strconv.Atoi(smtpPortStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", smtpPortStr, err)
		}
		cfg.SMTPPort = smtpPort
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI environment variable not set")
	}
	if cfg.DatabaseName == "" {
		cfg.DatabaseName = "club"
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUsername
	}

	return cfg, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
