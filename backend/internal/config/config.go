package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid возвращается, когда конфигурация не проходит проверку
var ErrInvalid = errors.New("invalid config")

// Config объединяет все настраиваемые параметры сцены
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LoggerConfig    `yaml:"log"`
	Scene     SceneConfig     `yaml:"scene"`
	Player    PlayerConfig    `yaml:"player"`
	Targeting TargetingConfig `yaml:"targeting"`
}

// ServerConfig содержит настройки HTTP/WebSocket сервера
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	StaticDir         string        `yaml:"static_dir"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
	PingInterval      time.Duration `yaml:"ping_interval"`
}

// LoggerConfig описывает настройки логирования
type LoggerConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // json или console
	Development bool   `yaml:"development"`
}

// SceneConfig содержит настройки физического мира и игрового цикла
type SceneConfig struct {
	Gravity       float64 `yaml:"gravity"`
	FixedTimeStep float64 `yaml:"fixed_time_step"`
	MaxSubSteps   int     `yaml:"max_sub_steps"`
	TargetTPS     int     `yaml:"target_tps"`
}

// PlayerConfig содержит настройки игрока
type PlayerConfig struct {
	Spawn       [3]float64     `yaml:"spawn"`
	HalfExtents [3]float64     `yaml:"half_extents"`
	Mass        float64        `yaml:"mass"`
	Restitution float64        `yaml:"restitution"`
	Movement    MovementConfig `yaml:"movement"`
	Jumping     JumpingConfig  `yaml:"jumping"`
	Bumper      BumperConfig   `yaml:"bumper"`
	Camera      CameraConfig   `yaml:"camera"`
}

// MovementConfig настройки перемещения
type MovementConfig struct {
	MovementSpeed float64 `yaml:"movement_speed"`
	RotationSpeed float64 `yaml:"rotation_speed"`
	// ArrivalRadius - половина ширины игрока
	ArrivalRadius float64 `yaml:"arrival_radius"`
	// ArrivalForceStep - шаг квантования торможения у цели
	ArrivalForceStep float64 `yaml:"arrival_force_step"`
	DampingFactor    float64 `yaml:"damping_factor"`
	DampingEpsilon   float64 `yaml:"damping_epsilon"`
	// MinMovement - смещение за тик, ниже которого игрок считается стоящим
	MinMovement float64 `yaml:"min_movement"`
	// IdleTargetTimeout - сколько цель живет, пока игрок не двигается
	IdleTargetTimeout time.Duration `yaml:"idle_target_timeout"`
}

// JumpingConfig настройки прыжка
type JumpingConfig struct {
	JumpForce             float64       `yaml:"jump_force"`
	Cooldown              time.Duration `yaml:"cooldown"`
	FallVelocityTolerance float64       `yaml:"fall_velocity_tolerance"`
	AllowJumpClimbing     bool          `yaml:"allow_jump_climbing"`
}

// BumperConfig настройки лучей для перешагивания уступов
type BumperConfig struct {
	StepHeight  float64       `yaml:"step_height"`
	ProbeCount  int           `yaml:"probe_count"`
	ProbeRadius float64       `yaml:"probe_radius"`
	RearmWindow time.Duration `yaml:"rearm_window"`
	ShowProbes  bool          `yaml:"show_probes"`
}

// CameraConfig настройки орбитальной камеры
type CameraConfig struct {
	Distance                    float64 `yaml:"distance"`
	MinDistance                 float64 `yaml:"min_distance"`
	MaxDistance                 float64 `yaml:"max_distance"`
	MinPolarAngle               float64 `yaml:"min_polar_angle"`
	MaxPolarAngle               float64 `yaml:"max_polar_angle"`
	FloatPolarAngle             bool    `yaml:"float_polar_angle"`
	FloatAzimuthAngle           bool    `yaml:"float_azimuth_angle"`
	FloatEasing                 float64 `yaml:"float_easing"`
	PolarAngle                  float64 `yaml:"polar_angle"`
	AzimuthAngle                float64 `yaml:"azimuth_angle"`
	ArrowKeyRotationSensitivity float64 `yaml:"arrow_key_rotation_sensitivity"`
	ArrowKeyPolarSpeed          float64 `yaml:"arrow_key_polar_speed"`
	MouseRotationSensitivity    float64 `yaml:"mouse_rotation_sensitivity"`
	WheelScale                  float64 `yaml:"wheel_scale"`
	TargetHeightOffset          float64 `yaml:"target_height_offset"`
	FieldOfView                 float64 `yaml:"field_of_view"` // градусы
	Aspect                      float64 `yaml:"aspect"`
	Near                        float64 `yaml:"near"`
	Far                         float64 `yaml:"far"`
}

// TargetingConfig настройки выбора цели мышью
type TargetingConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			StaticDir:         "./static",
			BroadcastInterval: 50 * time.Millisecond,
			PingInterval:      2 * time.Second,
		},
		Log: LoggerConfig{
			Level:  "info",
			Format: "console",
		},
		Scene: SceneConfig{
			Gravity:       -50,
			FixedTimeStep: 1.0 / 60.0,
			MaxSubSteps:   10,
			TargetTPS:     60,
		},
		Player: PlayerConfig{
			Spawn:       [3]float64{0, 6, 0},
			HalfExtents: [3]float64{1, 3, 1},
			Mass:        1,
			Restitution: 1,
			Movement: MovementConfig{
				MovementSpeed:     12,
				RotationSpeed:     0.15,
				ArrivalRadius:     0.5,
				ArrivalForceStep:  4,
				DampingFactor:     0.1,
				DampingEpsilon:    0.01,
				MinMovement:       0.01,
				IdleTargetTimeout: time.Second,
			},
			Jumping: JumpingConfig{
				JumpForce:             20,
				Cooldown:              750 * time.Millisecond,
				FallVelocityTolerance: 0.1,
				AllowJumpClimbing:     true,
			},
			Bumper: BumperConfig{
				StepHeight:  0.4,
				ProbeCount:  12,
				ProbeRadius: 2,
				RearmWindow: 50 * time.Millisecond,
				ShowProbes:  true,
			},
			Camera: CameraConfig{
				Distance:                    20,
				MinDistance:                 10,
				MaxDistance:                 20,
				MinPolarAngle:               0.2,
				MaxPolarAngle:               1,
				FloatEasing:                 0.1,
				PolarAngle:                  1,
				AzimuthAngle:                0,
				ArrowKeyRotationSensitivity: 0.02,
				ArrowKeyPolarSpeed:          0.01,
				MouseRotationSensitivity:    0.003,
				WheelScale:                  0.05,
				TargetHeightOffset:          1.5,
				FieldOfView:                 75,
				Aspect:                      16.0 / 9.0,
				Near:                        0.1,
				Far:                         10000,
			},
		},
		Targeting: TargetingConfig{
			PollInterval: 50 * time.Millisecond,
		},
	}
}

// Load читает YAML файл поверх значений по умолчанию
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность параметров
func (c *Config) Validate() error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.Scene.FixedTimeStep > 0, "scene.fixed_time_step must be positive")
	check(c.Scene.MaxSubSteps > 0, "scene.max_sub_steps must be positive")
	check(c.Scene.TargetTPS > 0, "scene.target_tps must be positive")

	check(c.Player.Mass > 0, "player.mass must be positive")
	for i, h := range c.Player.HalfExtents {
		check(h > 0, fmt.Sprintf("player.half_extents[%d] must be positive", i))
	}

	m := c.Player.Movement
	check(m.MovementSpeed > 0, "player.movement.movement_speed must be positive")
	check(m.RotationSpeed > 0 && m.RotationSpeed <= 1, "player.movement.rotation_speed must be in (0,1]")
	check(m.ArrivalRadius > 0, "player.movement.arrival_radius must be positive")
	check(m.ArrivalForceStep > 0, "player.movement.arrival_force_step must be positive")
	check(m.DampingFactor >= 0 && m.DampingFactor < 1, "player.movement.damping_factor must be in [0,1)")

	j := c.Player.Jumping
	check(j.JumpForce > 0, "player.jumping.jump_force must be positive")
	check(j.Cooldown >= 0, "player.jumping.cooldown must not be negative")
	check(j.FallVelocityTolerance > 0, "player.jumping.fall_velocity_tolerance must be positive")

	b := c.Player.Bumper
	check(b.ProbeCount >= 2, "player.bumper.probe_count must be at least 2")
	check(b.ProbeRadius > 0, "player.bumper.probe_radius must be positive")
	check(b.StepHeight > 0, "player.bumper.step_height must be positive")

	cam := c.Player.Camera
	check(cam.MinDistance > 0 && cam.MinDistance <= cam.MaxDistance, "player.camera distance bounds are inverted")
	check(cam.MinPolarAngle > 0 && cam.MinPolarAngle < cam.MaxPolarAngle, "player.camera polar bounds are inverted")
	check(cam.FloatEasing > 0 && cam.FloatEasing <= 1, "player.camera.float_easing must be in (0,1]")
	check(cam.Near > 0 && cam.Near < cam.Far, "player.camera near/far are inverted")

	check(c.Targeting.PollInterval > 0, "targeting.poll_interval must be positive")

	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, problems)
	}
	return nil
}
