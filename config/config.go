// Package config loads mould generation settings from defaults, an optional
// YAML file and MOULD_ prefixed environment variables, in increasing order of
// precedence. Nested keys map to variables by replacing dots with
// underscores: params.wall_thickness is MOULD_PARAMS_WALL_THICKNESS.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soypat/mould/constraint"
	"github.com/soypat/mould/engine"
	"github.com/soypat/mould/matter"
	"github.com/soypat/mould/mesh"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MOULD"

type Config struct {
	Params     Params     `mapstructure:"params"`
	Ring       Ring       `mapstructure:"ring"`
	Mesh       Mesh       `mapstructure:"mesh"`
	Constraint Constraint `mapstructure:"constraint"`
	Log        Log        `mapstructure:"log"`
}

type Params struct {
	ShrinkageRate float64 `mapstructure:"shrinkage_rate"`
	// ClayBody names a preset whose shrinkage overrides ShrinkageRate.
	ClayBody           string  `mapstructure:"clay_body"`
	WallThickness      float64 `mapstructure:"wall_thickness"`
	SlipWell           string  `mapstructure:"slip_well"`
	CavityGap          float64 `mapstructure:"cavity_gap"`
	SplitCount         int     `mapstructure:"split_count"`
	AssemblyClearance  float64 `mapstructure:"assembly_clearance"`
	OuterWallThickness float64 `mapstructure:"outer_wall_thickness"`
}

// Ring dimensions are tuned against printed parts.
type Ring struct {
	Thickness        float64 `mapstructure:"thickness"`
	RidgeRadius      float64 `mapstructure:"ridge_radius"`
	PourHoleDiameter float64 `mapstructure:"pour_hole_diameter"`
}

type Mesh struct {
	Quality            string  `mapstructure:"quality"`
	StandardDeflection float64 `mapstructure:"standard_deflection"`
	HighDeflection     float64 `mapstructure:"high_deflection"`
	CurveSegments      int     `mapstructure:"curve_segments"`
}

type Constraint struct {
	FootZoneHeight        float64 `mapstructure:"foot_zone_height"`
	UndercutTolerance     float64 `mapstructure:"undercut_tolerance"`
	AxisEpsilon           float64 `mapstructure:"axis_epsilon"`
	CurveSamples          int     `mapstructure:"curve_samples"`
	SelfIntersectionLimit int     `mapstructure:"self_intersection_limit"`
}

type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	p, t, c := engine.DefaultParams(), engine.DefaultTuning(), constraint.DefaultOptions()
	v.SetDefault("params.shrinkage_rate", p.ShrinkageRate)
	v.SetDefault("params.clay_body", "")
	v.SetDefault("params.wall_thickness", p.WallThickness)
	v.SetDefault("params.slip_well", p.SlipWell.String())
	v.SetDefault("params.cavity_gap", p.CavityGap)
	v.SetDefault("params.split_count", p.SplitCount)
	v.SetDefault("params.assembly_clearance", p.AssemblyClearance)
	v.SetDefault("params.outer_wall_thickness", p.OuterWallThickness)

	v.SetDefault("ring.thickness", t.RingThickness)
	v.SetDefault("ring.ridge_radius", t.RidgeRadius)
	v.SetDefault("ring.pour_hole_diameter", t.PourHoleDiameter)

	v.SetDefault("mesh.quality", mesh.Standard.String())
	v.SetDefault("mesh.standard_deflection", t.StandardDeflection)
	v.SetDefault("mesh.high_deflection", t.HighDeflection)
	v.SetDefault("mesh.curve_segments", t.CurveSegments)

	v.SetDefault("constraint.foot_zone_height", c.FootZoneHeight)
	v.SetDefault("constraint.undercut_tolerance", c.UndercutTolerance)
	v.SetDefault("constraint.axis_epsilon", c.AxisEpsilon)
	v.SetDefault("constraint.curve_samples", c.CurveSamples)
	v.SetDefault("constraint.self_intersection_limit", c.SelfIntersectionLimit)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := New()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// ReadFile merges the YAML file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

// FromViper decodes and checks the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if _, err := engine.ParseSlipWell(c.Params.SlipWell); err != nil {
		errs = append(errs, fmt.Errorf("params.slip_well: %w", err))
	}
	if c.Params.ClayBody != "" {
		if _, err := matter.Lookup(c.Params.ClayBody); err != nil {
			errs = append(errs, fmt.Errorf("params.clay_body: %w", err))
		}
	}
	if n := c.Params.SplitCount; n != 2 && n != 4 {
		errs = append(errs, fmt.Errorf("params.split_count: must be 2 or 4, got %d", n))
	}
	if _, err := mesh.ParseQuality(c.Mesh.Quality); err != nil {
		errs = append(errs, fmt.Errorf("mesh.quality: %w", err))
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// EngineParams returns the mould parameters. A clay body overrides the
// shrinkage rate.
func (c *Config) EngineParams() (engine.Params, error) {
	well, err := engine.ParseSlipWell(c.Params.SlipWell)
	if err != nil {
		return engine.Params{}, err
	}
	p := engine.Params{
		ShrinkageRate:      c.Params.ShrinkageRate,
		WallThickness:      c.Params.WallThickness,
		SlipWell:           well,
		CavityGap:          c.Params.CavityGap,
		SplitCount:         c.Params.SplitCount,
		AssemblyClearance:  c.Params.AssemblyClearance,
		OuterWallThickness: c.Params.OuterWallThickness,
	}
	if c.Params.ClayBody != "" {
		body, err := matter.Lookup(c.Params.ClayBody)
		if err != nil {
			return engine.Params{}, err
		}
		p.ShrinkageRate = body.Shrinkage()
	}
	return p, nil
}

func (c *Config) Tuning() engine.Tuning {
	return engine.Tuning{
		RingThickness:      c.Ring.Thickness,
		RidgeRadius:        c.Ring.RidgeRadius,
		PourHoleDiameter:   c.Ring.PourHoleDiameter,
		StandardDeflection: c.Mesh.StandardDeflection,
		HighDeflection:     c.Mesh.HighDeflection,
		CurveSegments:      c.Mesh.CurveSegments,
	}
}

func (c *Config) Quality() (mesh.Quality, error) {
	return mesh.ParseQuality(c.Mesh.Quality)
}

func (c *Config) ConstraintOptions() constraint.Options {
	return constraint.Options{
		FootZoneHeight:        c.Constraint.FootZoneHeight,
		UndercutTolerance:     c.Constraint.UndercutTolerance,
		AxisEpsilon:           c.Constraint.AxisEpsilon,
		CurveSamples:          c.Constraint.CurveSamples,
		SelfIntersectionLimit: c.Constraint.SelfIntersectionLimit,
	}
}

// EngineOptions returns the engine options carried by c.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{engine.WithTuning(c.Tuning()), engine.WithConstraints(c.ConstraintOptions())}
}

// Logger builds the zap logger described by the log settings. verbose forces
// the debug level.
func (c *Config) Logger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zc.Level = level
	return zc.Build()
}
