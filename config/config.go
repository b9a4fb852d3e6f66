package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"docwave/internal/appdirs"
	"docwave/log"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

type App struct {
	Proxy       string   `toml:"proxy"`
	Workers     int      `toml:"workers"`
	ParsedProxy *url.URL `toml:"-"`
}

type Video struct {
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	Fps         int     `toml:"fps"`
	Bitrate     string  `toml:"bitrate"`
	GpuEncoder  string  `toml:"gpu_encoder"`
	NvencPreset string  `toml:"nvenc_preset"`
	Crf         int     `toml:"crf"`
	MusicVolume float64 `toml:"music_volume"`
}

type Llm struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

type Tts struct {
	BaseUrl string  `toml:"base_url"`
	ApiKey  string  `toml:"api_key"`
	Model   string  `toml:"model"`
	Voice   string  `toml:"voice"`
	Speed   float64 `toml:"speed"`
}

type ImageGen struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Size    string `toml:"size"`
}

type Config struct {
	App      App      `toml:"app"`
	Video    Video    `toml:"video"`
	Llm      Llm      `toml:"llm"`
	Tts      Tts      `toml:"tts"`
	ImageGen ImageGen `toml:"image_gen"`
}

var Conf Config

var resolveConfigPath = ResolveConfigPath

var appDirsResolver = appdirs.Resolve

func ResolveConfigPath() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		App: App{
			Workers: 0,
		},
		Video: Video{
			Width:       1920,
			Height:      1080,
			Fps:         30,
			Bitrate:     "12M",
			GpuEncoder:  "h264_nvenc",
			NvencPreset: "p5",
			Crf:         18,
			MusicVolume: 0.12,
		},
		Llm: Llm{
			BaseUrl: "https://api.openai.com/v1",
			Model:   "gpt-4o",
		},
		Tts: Tts{
			Model: "tts-1",
			Voice: "alloy",
			Speed: 0.95,
		},
		ImageGen: ImageGen{
			Model: "dall-e-3",
			Size:  "1792x1024",
		},
	}
}

// LoadOrCreateConfig reads the TOML config, or writes the default one
// when the file does not exist yet. The returned bool reports whether a
// new file was created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err = os.Stat(configPath); err != nil {
		if !os.IsNotExist(err) {
			return false, err
		}
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, err
		}
		return true, nil
	}

	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("failed to decode config file %s: %w", configPath, err)
	}
	return false, nil
}

func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// CheckConfig validates the loaded configuration and fills derived
// fields. Must run after LoadOrCreateConfig.
func CheckConfig() error {
	if strings.TrimSpace(Conf.Llm.ApiKey) == "" {
		return fmt.Errorf("llm.api_key is not set")
	}
	if Conf.Tts.ApiKey == "" {
		Conf.Tts.ApiKey = Conf.Llm.ApiKey
	}
	if Conf.Tts.BaseUrl == "" {
		Conf.Tts.BaseUrl = Conf.Llm.BaseUrl
	}
	if Conf.ImageGen.ApiKey == "" {
		Conf.ImageGen.ApiKey = Conf.Llm.ApiKey
	}
	if Conf.ImageGen.BaseUrl == "" {
		Conf.ImageGen.BaseUrl = Conf.Llm.BaseUrl
	}

	if Conf.Video.Width <= 0 || Conf.Video.Height <= 0 {
		return fmt.Errorf("video resolution %dx%d is invalid", Conf.Video.Width, Conf.Video.Height)
	}
	if Conf.Video.Fps <= 0 {
		return fmt.Errorf("video.fps must be positive, got %d", Conf.Video.Fps)
	}
	if Conf.Video.MusicVolume < 0 || Conf.Video.MusicVolume > 1 {
		return fmt.Errorf("video.music_volume must be within [0,1], got %v", Conf.Video.MusicVolume)
	}

	if Conf.App.Proxy != "" {
		parsed, err := url.Parse(Conf.App.Proxy)
		if err != nil {
			return fmt.Errorf("app.proxy is not a valid URL: %w", err)
		}
		Conf.App.ParsedProxy = parsed
	}

	if Conf.App.Workers <= 0 {
		Conf.App.Workers = maxInt(2, runtime.NumCPU()-2)
		log.GetLogger().Info("render worker count resolved automatically", zap.Int("workers", Conf.App.Workers))
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
