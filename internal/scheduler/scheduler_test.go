package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meyvali/backoffice/internal/config"
	"github.com/meyvali/backoffice/internal/domain/models"
)

type stubPublisher struct {
	locations []*time.Location
	err       error
}

func (p *stubPublisher) PublishToday(_ context.Context, loc *time.Location) (models.DailyReport, error) {
	p.locations = append(p.locations, loc)
	return models.DailyReport{Date: "01.06.2024"}, p.err
}

func TestNewScheduler_Validates(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "30 23 * * *", Timezone: "Mars/Olympus"}, &stubPublisher{}, nil)
	assert.Error(t, err)

	_, err = NewScheduler(config.ReportingConfig{CronSchedule: "every night", Timezone: "UTC"}, &stubPublisher{}, nil)
	assert.Error(t, err)
}

func TestPublishDailyReport_UsesConfiguredLocation(t *testing.T) {
	publisher := &stubPublisher{err: errors.New("mirror down")}
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "30 23 * * *", Timezone: "Europe/Istanbul"}, publisher, nil)
	require.NoError(t, err)

	s.publishDailyReport()

	require.Len(t, publisher.locations, 1)
	assert.Equal(t, "Europe/Istanbul", publisher.locations[0].String())
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "30 23 * * *", Timezone: "UTC"}, &stubPublisher{}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}
