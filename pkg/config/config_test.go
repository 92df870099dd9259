package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := Default()

	if config.Grid.Rows != 10 || config.Grid.Cols != 10 {
		t.Errorf("默认网格应为 10x10, 实际为 %dx%d", config.Grid.Rows, config.Grid.Cols)
	}
	if config.Harvest.Count != 5 {
		t.Errorf("默认收获次数应为 5, 实际为 %d", config.Harvest.Count)
	}
	if config.Match.Confidence != 0.8 {
		t.Errorf("默认置信度应为 0.8, 实际为 %v", config.Match.Confidence)
	}
	if config.Match.InventoryConfidence >= config.Match.Confidence {
		t.Error("背包检测阈值应低于通用阈值")
	}
	if config.Shop.Interval != 180*time.Second {
		t.Errorf("默认购买间隔应为 180s, 实际为 %v", config.Shop.Interval)
	}
	if config.Shop.SearchAttempts != 7 {
		t.Errorf("默认搜索次数应为 7, 实际为 %d", config.Shop.SearchAttempts)
	}
	if fixed := config.Normalize(); len(fixed) != 0 {
		t.Errorf("默认配置不应被修正: %v", fixed)
	}
}

func TestConfigMode(t *testing.T) {
	tests := []struct {
		harvest, shop bool
		want          Mode
	}{
		{true, false, ModeHarvest},
		{false, true, ModeShop},
		{true, true, ModeHarvestShop},
		{false, false, ModeNone},
	}
	for _, tt := range tests {
		config := Default()
		config.Harvest.Enabled = tt.harvest
		config.Shop.Enabled = tt.shop
		if got := config.Mode(); got != tt.want {
			t.Errorf("Mode(harvest=%v, shop=%v) = %v, want %v", tt.harvest, tt.shop, got, tt.want)
		}
	}
}

func TestConfigNormalize(t *testing.T) {
	config := Default()
	config.Grid.Rows = 0
	config.Grid.Cols = 50
	config.Harvest.Count = -1
	config.Shop.SeedsPerTrip = 0
	config.Shop.SearchAttempts = 0
	config.Shop.Interval = 3 * time.Second
	config.Match.Confidence = 1.5
	config.Match.InventoryRegion = "left"
	config.Shop.Seeds = []string{" Carrot", "Carrot", "", "Burro's Tail"}

	fixed := config.Normalize()

	if config.Grid.Rows != 1 || config.Grid.Cols != 20 {
		t.Errorf("网格应夹到 [1,20], 实际为 %dx%d", config.Grid.Rows, config.Grid.Cols)
	}
	if config.Harvest.Count != 1 || config.Shop.SeedsPerTrip != 1 || config.Shop.SearchAttempts != 1 {
		t.Errorf("计数应至少为 1: %+v %+v", config.Harvest, config.Shop)
	}
	if config.Shop.Interval != 10*time.Second {
		t.Errorf("购买间隔应至少 10s, 实际为 %v", config.Shop.Interval)
	}
	if config.Match.Confidence != 0.8 {
		t.Errorf("非法置信度应恢复默认值, 实际为 %v", config.Match.Confidence)
	}
	if config.Match.InventoryRegion != RegionFull {
		t.Errorf("非法区域应恢复为 full, 实际为 %q", config.Match.InventoryRegion)
	}
	if want := []string{"Carrot", "Burro's Tail"}; !slices.Equal(config.Shop.Seeds, want) {
		t.Errorf("种子列表 = %v, want %v", config.Shop.Seeds, want)
	}
	if !slices.Contains(fixed, "shop.interval") || !slices.Contains(fixed, "grid.cols") {
		t.Errorf("修正字段列表缺失: %v", fixed)
	}
}

func TestManagerSaveAndLoad(t *testing.T) {
	// 使用临时目录
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	// 检查初始状态
	if manager.Exists() {
		t.Error("初始时配置文件不应存在")
	}

	config := Default()
	config.Grid.Rows = 6
	config.Grid.MoveDelay = 120 * time.Millisecond
	config.Shop.Enabled = true
	config.Shop.Seeds = []string{"Carrot", "Starweaver"}
	config.Game.Window = "Magic Garden"

	if err := manager.Save(config); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	if !manager.Exists() {
		t.Error("保存后配置文件应存在")
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if loaded.Grid.Rows != 6 {
		t.Errorf("Rows 不匹配: 期望 6, 实际 %d", loaded.Grid.Rows)
	}
	if loaded.Grid.MoveDelay != 120*time.Millisecond {
		t.Errorf("MoveDelay 不匹配: 期望 120ms, 实际 %v", loaded.Grid.MoveDelay)
	}
	if !slices.Equal(loaded.Shop.Seeds, config.Shop.Seeds) {
		t.Errorf("Seeds 不匹配: 期望 %v, 实际 %v", config.Shop.Seeds, loaded.Shop.Seeds)
	}
	if loaded.Mode() != ModeHarvestShop {
		t.Errorf("Mode 不匹配: 实际 %v", loaded.Mode())
	}
}

func TestManagerLoadPartialFile(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	// 只写部分字段，其余应保持默认值
	data := []byte("grid:\n  rows: 4\nshop:\n  interval: 60s\n")
	if err := os.WriteFile(manager.GetConfigFile(), data, 0600); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	config, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if config.Grid.Rows != 4 || config.Grid.Cols != 10 {
		t.Errorf("网格应为 4x10, 实际为 %dx%d", config.Grid.Rows, config.Grid.Cols)
	}
	if config.Shop.Interval != time.Minute {
		t.Errorf("Interval 应为 1m, 实际为 %v", config.Shop.Interval)
	}
	if config.Harvest.Count != 5 {
		t.Errorf("未配置字段应保持默认值, Count = %d", config.Harvest.Count)
	}
}

func TestManagerClear(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if err := manager.Save(Default()); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	if !manager.Exists() {
		t.Fatal("保存后配置文件应存在")
	}

	// 清除配置
	if err := manager.Clear(); err != nil {
		t.Fatalf("清除配置失败: %v", err)
	}

	if manager.Exists() {
		t.Error("清除后配置文件不应存在")
	}

	// 清除不存在的文件不应报错
	if err := manager.Clear(); err != nil {
		t.Errorf("清除不存在的配置不应报错: %v", err)
	}
}

func TestManagerLoadNonExistent(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	// 加载不存在的配置应返回默认值
	config, err := manager.Load()
	if err != nil {
		t.Fatalf("加载不存在的配置不应报错: %v", err)
	}
	if config.Grid.Rows != Default().Grid.Rows {
		t.Errorf("应返回默认 Rows")
	}
}

func TestManagerLoadCorruptedFile(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	// 创建一个损坏的配置文件
	configFile := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("grid: [not, a, map"), 0600); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	// 加载损坏的配置应返回默认值和错误
	config, err := manager.Load()
	if err == nil {
		t.Error("加载损坏的配置应返回错误")
	}

	// 但仍应返回默认配置
	if config == nil {
		t.Error("即使出错也应返回默认配置")
	}
}

func TestManagerPaths(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if manager.GetConfigDir() != tempDir {
		t.Errorf("GetConfigDir 应为 %s", tempDir)
	}

	expectedFile := filepath.Join(tempDir, "config.yaml")
	if manager.GetConfigFile() != expectedFile {
		t.Errorf("GetConfigFile 应为 %s", expectedFile)
	}

	custom := filepath.Join(tempDir, "sub", "garden.yaml")
	fm := NewManagerWithFile(custom)
	if fm.GetConfigFile() != custom || fm.GetConfigDir() != filepath.Dir(custom) {
		t.Errorf("NewManagerWithFile 路径不符: %s %s", fm.GetConfigDir(), fm.GetConfigFile())
	}
}

func TestDefaultManager(t *testing.T) {
	manager := GetDefaultManager()
	if manager == nil {
		t.Fatal("GetDefaultManager 返回 nil")
	}

	// 检查默认路径是否在用户目录下
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("无法获取用户目录: %v", err)
	}
	expectedDir := filepath.Join(homeDir, ".gardenworker")

	if manager.GetConfigDir() != expectedDir {
		t.Errorf("默认配置目录应为 %s, 实际为 %s", expectedDir, manager.GetConfigDir())
	}
}
