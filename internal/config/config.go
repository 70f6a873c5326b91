package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Paris769/prestashop-reorder-interface/internal/reorder/model"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	Match       model.MatchOptions
	CadenceDays int // reference reorder cadence for single-purchase products
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	cadence, _ := strconv.Atoi(getenv("REORDER_CADENCE_DAYS", "180"))
	topk, _ := strconv.Atoi(getenv("MATCH_TOPK", "5"))

	match := model.MatchOptions{
		AcceptThreshold: getfloat("MATCH_ACCEPT", model.DefaultAcceptThreshold),
		ReviewThreshold: getfloat("MATCH_REVIEW", model.DefaultReviewThreshold),
		TopK:            topk,
		SimWeight:       getfloat("MATCH_SIM_WEIGHT", model.DefaultSimWeight),
		AffinityWeight:  getfloat("MATCH_AFFINITY_WEIGHT", model.DefaultAffinityWeight),
	}.WithDefaults()

	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         port,
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MaxUploadMB:  mb,
		LogFile:      getenv("LOG_FILE", "logs/reorder-interface.log"),
		Match:        match,
		CadenceDays:  cadence,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
