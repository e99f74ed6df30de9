package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tasifacuj/mission-control/internal/msp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  name: bench
http:
  addr: ":9090"
msp:
  firmware: BTFL
  calibration:
    acc_one_g: 2048
  subscriptions:
    - message: MSP_ATTITUDE
      rateHz: 10
    - message: status
      rateHz: 0
outbound:
  rateLimit: 50
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bench", cfg.App.Name)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout, "默认值")
	assert.Equal(t, 50, cfg.Outbound.RateLimit)
	assert.Equal(t, 400, cfg.Outbound.Burst)

	fw, err := cfg.FirmwareVariant()
	require.NoError(t, err)
	assert.Equal(t, msp.FirmwareBTFL, fw)

	assert.Equal(t, 2048.0, cfg.MSP.Calibration.AccOneG)
	assert.Equal(t, msp.DefaultCalibration().StandardGravity, cfg.MSP.Calibration.StandardGravity)
	require.Len(t, cfg.MSP.Subscriptions, 2)
	assert.Equal(t, 10.0, cfg.MSP.Subscriptions[0].RateHz)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "http:\n  addr: \":9090\"\n")
	t.Setenv("MSPT_HTTP_ADDR", ":7070")
	t.Setenv("MSPT_REDIS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadFromEnvPath(t *testing.T) {
	path := writeConfig(t, "app:\n  env: prod\n")
	t.Setenv("MSPT_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.App.Env)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"未知固件", "msp:\n  firmware: PX4\n"},
		{"未知消息", "msp:\n  subscriptions:\n    - message: MSP_NOPE\n"},
		{"不支持的消息", "msp:\n  subscriptions:\n    - message: MSP_BOXNAMES\n"},
		{"重复订阅", "msp:\n  subscriptions:\n    - message: MSP_RC\n    - message: 105\n"},
		{"负频率", "msp:\n  subscriptions:\n    - message: MSP_RC\n      rateHz: -1\n"},
		{"零标定", "msp:\n  calibration:\n    acc_one_g: 0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestDump(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
redis:
  password: hunter2
database:
  dsn: postgres://mspt:secret@db:5432/mspt?sslmode=disable
`))
	require.NoError(t, err)

	out, err := Dump(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hunter2")
	assert.NotContains(t, string(out), "secret")
	assert.Equal(t, "hunter2", cfg.Redis.Password, "不修改原配置")

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, cfg.HTTP.Addr, back.HTTP.Addr)
	assert.Equal(t, "postgres://mspt:***@db:5432/mspt?sslmode=disable", back.Database.DSN)
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "", MaskDSN(""))
	assert.Equal(t, "postgres://u@h/db", MaskDSN("postgres://u@h/db"))
	assert.Equal(t, "postgres://u:***@h/db", MaskDSN("postgres://u:p@h/db"))
	assert.Equal(t, "host=localhost", MaskDSN("host=localhost"))
}
