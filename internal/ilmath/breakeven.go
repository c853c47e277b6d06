package ilmath

import (
	"encoding/json"
	"math"
	"strconv"
)

const daysPerYear = 365

// Days is a breakeven horizon. +Inf means the loss is never recouped.
type Days float64

// Never is the sentinel returned when fees can not offset the loss.
var Never = Days(math.Inf(1))

// IsNever reports whether d is the "never" sentinel.
func (d Days) IsNever() bool {
	return math.IsInf(float64(d), 1)
}

// MarshalJSON encodes finite values as numbers and the sentinel as "never".
func (d Days) MarshalJSON() ([]byte, error) {
	if d.IsNever() || math.IsNaN(float64(d)) {
		return []byte(`"never"`), nil
	}
	return []byte(strconv.FormatFloat(float64(d), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number or the string "never".
func (d *Days) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "never" {
			*d = Never
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*d = Days(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Days(v)
	return nil
}

// DaysToBreakeven estimates how many days of fee yield at apyPercent are needed
// to recoup ilPercent. The estimate is linear: daily yield is apy/365 with no
// compounding. A non-positive APY returns Never.
func DaysToBreakeven(ilPercent, apyPercent float64) Days {
	if !(apyPercent > 0) {
		return Never
	}
	ilDecimal := math.Abs(ilPercent) / 100
	dailyReturn := apyPercent / 100 / daysPerYear
	return Days(ilDecimal / dailyReturn)
}

// BreakevenAPY is the APY in percent needed to recoup ilPercent within days,
// under the same linear model as DaysToBreakeven. Non-positive days yield 0.
func BreakevenAPY(ilPercent, days float64) float64 {
	if !(days > 0) {
		return 0
	}
	ilDecimal := math.Abs(ilPercent) / 100
	return ilDecimal / days * daysPerYear * 100
}
