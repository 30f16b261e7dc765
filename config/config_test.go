package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("显式指定的配置文件不存在时应返回错误")
	}

	origWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("仅使用默认值时应成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际=%d", cfg.Server.Port)
	}
	if cfg.Timetable.OwnerKey != "default" {
		t.Errorf("期望默认 owner_key=default，实际=%s", cfg.Timetable.OwnerKey)
	}
	if cfg.Timetable.CountdownInterval != time.Second {
		t.Errorf("期望倒计时间隔 1s，实际=%s", cfg.Timetable.CountdownInterval)
	}
	if cfg.Redis.DocumentTTL != 10*time.Minute {
		t.Errorf("期望文档缓存 10m，实际=%s", cfg.Redis.DocumentTTL)
	}
	if cfg.Storage.Enabled() {
		t.Error("未配置对象存储时 Enabled 应为 false")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9090\ntimetable:\n  owner_key: alice\nstorage:\n  endpoint: s3.local:9000\n  bucket: backups\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FIA_SERVER_PORT", "9191")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("环境变量应覆盖配置文件，期望 9191，实际=%d", cfg.Server.Port)
	}
	if cfg.Timetable.OwnerKey != "alice" {
		t.Errorf("期望 owner_key=alice，实际=%s", cfg.Timetable.OwnerKey)
	}
	if !cfg.Storage.Enabled() {
		t.Error("端点与存储桶已配置时 Enabled 应为 true")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:    ServerConfig{Port: 8080},
		Timetable: TimetableConfig{OwnerKey: "default", CountdownInterval: time.Second},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("合法配置不应报错: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }},
		{"owner_key 为空", func(c *Config) { c.Timetable.OwnerKey = "  " }},
		{"倒计时间隔为0", func(c *Config) { c.Timetable.CountdownInterval = 0 }},
		{"时区无效", func(c *Config) { c.Timetable.Location = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}
