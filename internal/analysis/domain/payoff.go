package domain

import (
	"fmt"
	"math"
	"strings"
)

// MaxSweepPoints 单次分析允许的最大采样点数
const MaxSweepPoints = 10001

// StrategyType 策略类型；call / put 使用数量符号表示方向，long_/short_ 显式给出方向
type StrategyType string

const (
	StrategyCall      StrategyType = "call"
	StrategyPut       StrategyType = "put"
	StrategyLongCall  StrategyType = "long_call"
	StrategyShortCall StrategyType = "short_call"
	StrategyLongPut   StrategyType = "long_put"
	StrategyShortPut  StrategyType = "short_put"
)

// PriceRange 标的价格扫描区间
type PriceRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// PayoffRequest 单腿盈亏分析请求
type PayoffRequest struct {
	StrategyType   string     `json:"strategyType"`
	StrikePrice    float64    `json:"strikePrice"`
	Premium        float64    `json:"premium"`
	Quantity       int        `json:"quantity"`
	SpotPriceRange PriceRange `json:"spotPriceRange"`
}

// Leg 一条期权腿；Quantity 带方向，负数为卖出
type Leg struct {
	OptionType OptionType `json:"optionType"`
	Strike     float64    `json:"strike"`
	Premium    float64    `json:"premium"`
	Quantity   int        `json:"quantity"`
}

// PayoffPoint 到期盈亏曲线上的一个点
type PayoffPoint struct {
	Spot   float64 `json:"spot"`
	Payoff float64 `json:"payoff"`
}

// PayoffResult 盈亏分析结果
// MaxProfit / MaxLoss 是扫描区间内的极值；对应 Unbounded 为 true 时真实极值无界
type PayoffResult struct {
	PayoffData         []PayoffPoint `json:"payoffData"`
	MaxProfit          float64       `json:"maxProfit"`
	MaxLoss            float64       `json:"maxLoss"`
	MaxProfitUnbounded bool          `json:"maxProfitUnbounded"`
	MaxLossUnbounded   bool          `json:"maxLossUnbounded"`
	BreakEvenPoints    []float64     `json:"breakEvenPoints"`
}

// ToLeg 将策略描述转换为期权腿
func (r PayoffRequest) ToLeg() (Leg, error) {
	if r.Quantity == 0 {
		return Leg{}, fmt.Errorf("%w: quantity must not be zero", ErrInvalidPayoffInput)
	}

	leg := Leg{Strike: r.StrikePrice, Premium: r.Premium, Quantity: r.Quantity}
	qty := r.Quantity
	if qty < 0 {
		qty = -qty
	}

	switch StrategyType(strings.ToLower(strings.TrimSpace(r.StrategyType))) {
	case StrategyCall:
		leg.OptionType = OptionTypeCall
	case StrategyPut:
		leg.OptionType = OptionTypePut
	case StrategyLongCall:
		leg.OptionType, leg.Quantity = OptionTypeCall, qty
	case StrategyShortCall:
		leg.OptionType, leg.Quantity = OptionTypeCall, -qty
	case StrategyLongPut:
		leg.OptionType, leg.Quantity = OptionTypePut, qty
	case StrategyShortPut:
		leg.OptionType, leg.Quantity = OptionTypePut, -qty
	default:
		return Leg{}, fmt.Errorf("%w: unsupported strategy type %q", ErrInvalidPayoffInput, r.StrategyType)
	}
	return leg, nil
}

// Validate 校验单腿参数
func (l Leg) Validate() error {
	if l.OptionType != OptionTypeCall && l.OptionType != OptionTypePut {
		return fmt.Errorf("%w: %q", ErrInvalidOptionType, l.OptionType)
	}
	if !isFinite(l.Strike) || l.Strike <= 0 {
		return fmt.Errorf("%w: strike price must be positive", ErrInvalidPayoffInput)
	}
	if !isFinite(l.Premium) || l.Premium < 0 {
		return fmt.Errorf("%w: premium must not be negative", ErrInvalidPayoffInput)
	}
	if l.Quantity == 0 {
		return fmt.Errorf("%w: quantity must not be zero", ErrInvalidPayoffInput)
	}
	return nil
}

// PayoffAt 到期时在给定标的价格下的盈亏
func (l Leg) PayoffAt(spot float64) float64 {
	return (IntrinsicValue(l.OptionType, spot, l.Strike) - l.Premium) * float64(l.Quantity)
}

// Points 生成扫描点：min + i·step，最后一点不足 max 时补上 max
func (r PriceRange) Points() ([]float64, error) {
	if !isFinite(r.Min) || !isFinite(r.Max) || !isFinite(r.Step) {
		return nil, fmt.Errorf("%w: price range must be finite", ErrInvalidPayoffInput)
	}
	if r.Min < 0 {
		return nil, fmt.Errorf("%w: price range min must not be negative", ErrInvalidPayoffInput)
	}
	if r.Min >= r.Max {
		return nil, fmt.Errorf("%w: price range min must be less than max", ErrInvalidPayoffInput)
	}
	if r.Step <= 0 {
		return nil, fmt.Errorf("%w: price range step must be positive", ErrInvalidPayoffInput)
	}

	steps := math.Floor((r.Max - r.Min) / r.Step)
	if steps+1 > MaxSweepPoints {
		return nil, fmt.Errorf("%w: price range yields more than %d points", ErrInvalidPayoffInput, MaxSweepPoints)
	}

	n := int(steps)
	points := make([]float64, 0, n+2)
	for i := 0; i <= n; i++ {
		p := r.Min + float64(i)*r.Step
		if p > r.Max {
			p = r.Max
		}
		points = append(points, p)
	}
	// 浮点误差在 step 的 1e-9 以内视为已覆盖 max
	if last := points[len(points)-1]; r.Max-last > r.Step*1e-9 {
		if len(points)+1 > MaxSweepPoints {
			return nil, fmt.Errorf("%w: price range yields more than %d points", ErrInvalidPayoffInput, MaxSweepPoints)
		}
		points = append(points, r.Max)
	} else {
		points[len(points)-1] = r.Max
	}
	return points, nil
}

// CalculatePayoff 单腿到期盈亏分析
func CalculatePayoff(req PayoffRequest) (*PayoffResult, error) {
	leg, err := req.ToLeg()
	if err != nil {
		return nil, err
	}
	return CalculateLegsPayoff([]Leg{leg}, req.SpotPriceRange)
}

// CalculateLegsPayoff 多腿组合盈亏，逐点求和
func CalculateLegsPayoff(legs []Leg, sweep PriceRange) (*PayoffResult, error) {
	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: at least one leg is required", ErrInvalidPayoffInput)
	}
	netCalls := 0
	// 期权类型大小写不敏感，与单腿入口一致
	normalized := make([]Leg, len(legs))
	for i, leg := range legs {
		typ, err := ParseOptionType(string(leg.OptionType))
		if err != nil {
			return nil, err
		}
		leg.OptionType = typ
		if err := leg.Validate(); err != nil {
			return nil, err
		}
		if leg.OptionType == OptionTypeCall {
			netCalls += leg.Quantity
		}
		normalized[i] = leg
	}
	legs = normalized

	spots, err := sweep.Points()
	if err != nil {
		return nil, err
	}

	data := make([]PayoffPoint, len(spots))
	maxProfit, maxLoss := math.Inf(-1), math.Inf(1)
	for i, s := range spots {
		total := 0.0
		for _, leg := range legs {
			total += leg.PayoffAt(s)
		}
		data[i] = PayoffPoint{Spot: s, Payoff: total}
		maxProfit = math.Max(maxProfit, total)
		maxLoss = math.Min(maxLoss, total)
	}

	return &PayoffResult{
		PayoffData:         data,
		MaxProfit:          maxProfit,
		MaxLoss:            maxLoss,
		MaxProfitUnbounded: netCalls > 0,
		MaxLossUnbounded:   netCalls < 0,
		BreakEvenPoints:    breakEvens(data),
	}, nil
}

// breakEvens 扫描相邻采样点：恰为 0 的点只报告零值区间的第一个，异号之间线性插值
func breakEvens(data []PayoffPoint) []float64 {
	points := make([]float64, 0, 2)
	for i, p := range data {
		if p.Payoff == 0 {
			if i == 0 || data[i-1].Payoff != 0 {
				points = append(points, p.Spot)
			}
			continue
		}
		if i == 0 {
			continue
		}
		prev := data[i-1]
		if prev.Payoff != 0 && (prev.Payoff < 0) != (p.Payoff < 0) {
			t := prev.Payoff / (prev.Payoff - p.Payoff)
			points = append(points, prev.Spot+t*(p.Spot-prev.Spot))
		}
	}
	return points
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
