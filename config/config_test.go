package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RESERVATION_DURATION_MINUTES", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Reservation.DurationMinutes)
	assert.Equal(t, "RSV", cfg.Reservation.CodePrefix)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "reservations.events", cfg.Kafka.ReservationsTopic)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/tb")
	t.Setenv("RESERVATION_DURATION_MINUTES", "90")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/tb", cfg.Database.DSN())
	assert.Equal(t, 90, cfg.Reservation.DurationMinutes)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("RESERVATION_DURATION_MINUTES", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("RESERVATION_DURATION_MINUTES", "2000")
	_, err = Load()
	assert.Error(t, err)
}

func TestDSNFromParts(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", c.DSN())
}
