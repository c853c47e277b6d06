package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// CalcConfig holds inputs for the calc command.
type CalcConfig struct {
	Token0       float64
	Token1       float64
	InitialPrice float64
	CurrentPrice float64
	APY          float64
	HasAPY       bool
}

// CurveConfig holds inputs for the curve command.
type CurveConfig struct {
	Min    float64
	Max    float64
	Points int
	PNG    string
}

// BreakevenConfig holds inputs for the breakeven command.
type BreakevenConfig struct {
	IL      float64
	APY     float64
	Days    float64
	HasDays bool
}

// LoadCalc reads calc inputs from flags, YIELDSCOPE_* env and the config file.
func LoadCalc(cfgFile string, flags *pflag.FlagSet) (CalcConfig, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return CalcConfig{}, err
	}
	return CalcConfig{
		Token0:       v.GetFloat64("token0"),
		Token1:       v.GetFloat64("token1"),
		InitialPrice: v.GetFloat64("initial-price"),
		CurrentPrice: v.GetFloat64("current-price"),
		APY:          v.GetFloat64("apy"),
		HasAPY:       v.IsSet("apy"),
	}, nil
}

// LoadCurve reads curve inputs. Bounds are checked by ilmath.GenerateCurve.
func LoadCurve(cfgFile string, flags *pflag.FlagSet) (CurveConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"min":    0.1,
		"max":    5.0,
		"points": 20,
	})
	if err != nil {
		return CurveConfig{}, err
	}
	return CurveConfig{
		Min:    v.GetFloat64("min"),
		Max:    v.GetFloat64("max"),
		Points: v.GetInt("points"),
		PNG:    v.GetString("png"),
	}, nil
}

// LoadBreakeven reads breakeven inputs. Days must be positive when given.
func LoadBreakeven(cfgFile string, flags *pflag.FlagSet) (BreakevenConfig, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return BreakevenConfig{}, err
	}
	cfg := BreakevenConfig{
		IL:      v.GetFloat64("il"),
		APY:     v.GetFloat64("apy"),
		Days:    v.GetFloat64("days"),
		HasDays: v.IsSet("days"),
	}
	if cfg.HasDays && cfg.Days <= 0 {
		return BreakevenConfig{}, fmt.Errorf("days must be positive, got %v", cfg.Days)
	}
	return cfg, nil
}
