package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"yieldScope/internal/chart"
	"yieldScope/internal/ilmath"
	"yieldScope/internal/model"
)

const (
	maxBodyBytes = 1 << 20

	defaultCurveMin    = 0.1
	defaultCurveMax    = 5.0
	defaultCurvePoints = 50
	maxCurvePoints     = 1000
)

func (s *Server) handleCalculateIL(w http.ResponseWriter, r *http.Request) {
	var req model.ILCalculatorRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, &fieldError{Field: "body", Message: "must be a JSON object"}, "")
		return
	}

	fields := []struct {
		name  string
		value *float64
	}{
		{"token0Amount", req.Token0Amount},
		{"token1Amount", req.Token1Amount},
		{"initialPrice", req.InitialPrice},
		{"currentPrice", req.CurrentPrice},
	}
	for _, f := range fields {
		if f.value == nil {
			s.writeError(w, r, &fieldError{Field: f.name, Message: "required"}, "")
			return
		}
		if *f.value <= 0 {
			s.writeError(w, r, &fieldError{Field: f.name, Message: "must be positive"}, "")
			return
		}
	}

	result, err := ilmath.Valuate(
		ilmath.PoolPosition{
			Token0Amount: *req.Token0Amount,
			Token1Amount: *req.Token1Amount,
			InitialPrice: *req.InitialPrice,
		},
		ilmath.PriceScenario{CurrentPrice: *req.CurrentPrice},
	)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	s.writeData(w, r, model.ILCalculatorResult{
		ImpermanentLoss: round(result.ImpermanentLossPercent, 4),
		LPValue:         round(result.PoolValue, 2),
		HoldValue:       round(result.HoldValue, 2),
		Token0InLP:      round(result.Token0InPool, 6),
		Token1InLP:      round(result.Token1InPool, 6),
		BreakEvenFees:   round(result.BreakEvenFeesPercent, 4),
	})
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minRatio, err := floatQuery(q, "min", defaultCurveMin)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	maxRatio, err := floatQuery(q, "max", defaultCurveMax)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	points := defaultCurvePoints
	if v := q.Get("points"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxCurvePoints {
			s.writeError(w, r, &fieldError{Field: "points", Message: "must be an integer between 1 and " + strconv.Itoa(maxCurvePoints)}, "")
			return
		}
		points = n
	}

	seq, err := ilmath.GenerateCurve(minRatio, maxRatio, points)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	switch format := q.Get("format"); format {
	case "png":
		img, err := chart.RenderCurve(slices.Collect(seq), chart.Options{})
		if err != nil {
			s.writeError(w, r, err, "")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img)
	case "", "json":
		out := make([]model.CurvePointResult, 0, points)
		for p := range seq {
			out = append(out, model.CurvePointResult{
				PriceChange: round(p.PriceChangePercent, 2),
				IL:          round(p.ImpermanentLossPercent, 4),
			})
		}
		s.writeData(w, r, out)
	default:
		s.writeError(w, r, &fieldError{Field: "format", Message: "must be json or png"}, "")
	}
}

func (s *Server) handleBreakeven(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	il, err := requiredFloatQuery(q, "il")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	apy, err := requiredFloatQuery(q, "apy")
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	days := ilmath.DaysToBreakeven(il, apy)
	if !days.IsNever() {
		days = ilmath.Days(round(float64(days), 2))
	}
	result := model.BreakevenResult{DaysToBreakeven: days}

	if q.Has("days") {
		target, err := requiredFloatQuery(q, "days")
		if err != nil {
			s.writeError(w, r, err, "")
			return
		}
		if target <= 0 {
			s.writeError(w, r, &fieldError{Field: "days", Message: "must be positive"}, "")
			return
		}
		required := round(ilmath.BreakevenAPY(il, target), 4)
		result.RequiredAPY = &required
	}
	s.writeData(w, r, result)
}

func floatQuery(q url.Values, key string, def float64) (float64, error) {
	if q.Get(key) == "" {
		return def, nil
	}
	return requiredFloatQuery(q, key)
}

func requiredFloatQuery(q url.Values, key string) (float64, error) {
	v := q.Get(key)
	if v == "" {
		return 0, &fieldError{Field: key, Message: "required"}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &fieldError{Field: key, Message: "must be a finite number"}
	}
	return f, nil
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
