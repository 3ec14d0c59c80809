package config_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/caseguard/riskmatrix/pkg/cli/config"
	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestNewHandler_RedactsComments(t *testing.T) {
	var buf bytes.Buffer
	handler, err := config.NewHandler(&buf, "json", slog.LevelInfo)
	gt.NoError(t, err).Required()

	logger := slog.New(handler)
	logger.Info("tag loaded", "tag", model.Tag{IndicatorID: "injury_severe", Severity: 2, Comment: "child reported bruises"})

	gt.S(t, buf.String()).Contains("injury_severe")
	gt.S(t, buf.String()).NotContains("bruises")
}

func TestNewHandler_Console(t *testing.T) {
	var buf bytes.Buffer
	handler, err := config.NewHandler(&buf, "console", slog.LevelWarn)
	gt.NoError(t, err).Required()

	logger := slog.New(handler)
	logger.Info("hidden")
	logger.Warn("shown")

	gt.S(t, buf.String()).Contains("shown")
	gt.S(t, buf.String()).NotContains("hidden")
}

func TestNewHandler_InvalidFormat(t *testing.T) {
	_, err := config.NewHandler(&bytes.Buffer{}, "xml", slog.LevelInfo)
	gt.Error(t, err).Is(config.ErrInvalidConfig)
}
