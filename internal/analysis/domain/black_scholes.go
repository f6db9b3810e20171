package domain

import (
	"fmt"
	"math"
)

// BlackScholesInput Black-Scholes 模型输入
type BlackScholesInput struct {
	S float64 // 标的资产价格
	K float64 // 执行价格
	T float64 // 到期时间 (年)
	R float64 // 无风险利率
	V float64 // 波动率
}

// BlackScholesResult Black-Scholes 模型输出
//
// 单位约定：
//   - Vega  每 1 个波动率点（原始 vega × 0.01）
//   - Theta 每自然日（年化 theta ÷ 365）
//   - Rho   每 1% 利率变动（原始 rho × 0.01）
//   - Gamma 原始值，看涨看跌相同
type BlackScholesResult struct {
	Price float64 `json:"optionPrice"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

const (
	vegaScale  = 0.01
	rhoScale   = 0.01
	daysInYear = 365.0

	// exp(709.78) 已溢出 float64
	maxRateTime = 700.0
)

// ErrDeltaSaturated 输入过于极端，N(d1) 舍入为 0，Greeks 退化
var ErrDeltaSaturated = fmt.Errorf("%w: inputs too extreme, delta saturates at its bound", ErrInvalidPricingInput)

// Validate 校验输入；非正或非有限值直接拒绝，不做截断
func (in BlackScholesInput) Validate() error {
	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"spot price", in.S, true},
		{"strike price", in.K, true},
		{"time to expiry", in.T, true},
		{"volatility", in.V, true},
		{"risk-free rate", in.R, false},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidPricingInput, c.name)
		}
		if c.positive && c.value <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidPricingInput, c.name)
		}
	}
	if math.Abs(in.R*in.T) > maxRateTime {
		return fmt.Errorf("%w: risk-free rate times expiry must be within ±%g", ErrInvalidPricingInput, maxRateTime)
	}
	return nil
}

// CalculateBlackScholes 计算 Black-Scholes 价格和 Greeks
func CalculateBlackScholes(optionType OptionType, input BlackScholesInput) (*BlackScholesResult, error) {
	if optionType != OptionTypeCall && optionType != OptionTypePut {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOptionType, optionType)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	sqrtT := math.Sqrt(input.T)
	volSqrtT := input.V * sqrtT
	d1 := (math.Log(input.S/input.K) + (input.R+0.5*input.V*input.V)*input.T) / volSqrtT
	d2 := d1 - volSqrtT
	discount := math.Exp(-input.R * input.T)
	pdf := normPdf(d1)

	gamma := pdf / (input.S * volSqrtT)
	vega := input.S * pdf * sqrtT
	decay := -input.S * pdf * input.V / (2 * sqrtT)

	var price, delta, theta, rho float64
	if optionType == OptionTypeCall {
		price = input.S*normCdf(d1) - input.K*discount*normCdf(d2)
		delta = normCdf(d1)
		theta = decay - input.R*input.K*discount*normCdf(d2)
		rho = input.K * input.T * discount * normCdf(d2)
	} else {
		price = input.K*discount*normCdf(-d2) - input.S*normCdf(-d1)
		delta = -normCdf(-d1)
		theta = decay + input.R*input.K*discount*normCdf(-d2)
		rho = -input.K * input.T * discount * normCdf(-d2)
	}
	// 看涨 delta ∈ (0,1]，看跌 delta ∈ [-1,0)
	if (optionType == OptionTypeCall && !(delta > 0)) || (optionType == OptionTypePut && !(delta < 0)) {
		return nil, ErrDeltaSaturated
	}

	result := &BlackScholesResult{
		Price: price,
		Delta: delta,
		Gamma: gamma,
		Vega:  vega * vegaScale,
		Theta: theta / daysInYear,
		Rho:   rho * rhoScale,
	}
	if !result.finite() {
		return nil, ErrNonFiniteResult
	}
	return result, nil
}

func (r *BlackScholesResult) finite() bool {
	for _, v := range []float64{r.Price, r.Delta, r.Gamma, r.Vega, r.Theta, r.Rho} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// BoundaryPrice 深度虚值/实值时的极限价格：max(±(S - K·e^(-rT)), 0)
func BoundaryPrice(optionType OptionType, in BlackScholesInput) float64 {
	forward := in.S - in.K*math.Exp(-in.R*in.T)
	if optionType == OptionTypeCall {
		return math.Max(forward, 0)
	}
	return math.Max(-forward, 0)
}

// IntrinsicValue 到期内在价值
func IntrinsicValue(optionType OptionType, spot, strike float64) float64 {
	if optionType == OptionTypeCall {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

// normCdf 标准正态分布累积分布函数
// erfc 形式在左尾不会因 1+erf 相消丢失精度
func normCdf(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// normPdf 标准正态分布概率密度函数
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
