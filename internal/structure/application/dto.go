package application

import (
	"time"

	"github.com/shopspring/decimal"
	analysis "github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	"github.com/wyfcoding/optionsdesk/internal/structure/domain"
)

// LegInput 单腿输入；手续费缺省为 2，开仓日缺省为当前时间
type LegInput struct {
	OptionType        string           `json:"optionType"`
	Strike            decimal.Decimal  `json:"strike"`
	ExpiryDate        time.Time        `json:"expiryDate"`
	OpeningDate       *time.Time       `json:"openingDate"`
	Quantity          int              `json:"quantity"`
	TradePrice        decimal.Decimal  `json:"tradePrice"`
	ImpliedVolatility *decimal.Decimal `json:"impliedVolatility"`
	OpeningCommission *decimal.Decimal `json:"openingCommission"`
	ClosingCommission *decimal.Decimal `json:"closingCommission"`
	ClosingPrice      *decimal.Decimal `json:"closingPrice"`
	ClosingDate       *time.Time       `json:"closingDate"`
}

// CreateStructureCommand 创建结构
type CreateStructureCommand struct {
	Tag        string           `json:"tag"`
	Multiplier *decimal.Decimal `json:"multiplier"`
	Legs       []LegInput       `json:"legs"`
}

// UpdateStructureCommand 部分更新；Legs 非 nil 时整体替换
type UpdateStructureCommand struct {
	Tag        *string          `json:"tag"`
	Multiplier *decimal.Decimal `json:"multiplier"`
	Legs       []LegInput       `json:"legs"`
}

// CloseStructureCommand 按当前标的价格平仓
type CloseStructureCommand struct {
	Spot         float64 `json:"spot"`
	RiskFreeRate float64 `json:"riskFreeRate"`
}

// ShareStructureCommand 分享给管理员
type ShareStructureCommand struct {
	AdminEmail string `json:"adminEmail" validate:"required,email,max=255"`
}

// StructureView 结构及其已实现盈亏
type StructureView struct {
	*domain.Structure
	RealizedPnL decimal.Decimal `json:"realizedPnl"`
}

func newView(s *domain.Structure) *StructureView {
	return &StructureView{Structure: s, RealizedPnL: s.RealizedPnL()}
}

func toLegs(inputs []LegInput, now time.Time) ([]*domain.Leg, error) {
	legs := make([]*domain.Leg, 0, len(inputs))
	for _, in := range inputs {
		optionType, err := analysis.ParseOptionType(in.OptionType)
		if err != nil {
			return nil, err
		}
		leg := &domain.Leg{
			OptionType:        optionType,
			Strike:            in.Strike,
			ExpiryDate:        in.ExpiryDate,
			OpeningDate:       now,
			Quantity:          in.Quantity,
			TradePrice:        in.TradePrice,
			ImpliedVolatility: decimal.Zero,
			OpeningCommission: domain.DefaultCommission,
			ClosingCommission: domain.DefaultCommission,
			ClosingDate:       in.ClosingDate,
		}
		if in.OpeningDate != nil {
			leg.OpeningDate = *in.OpeningDate
		}
		if in.ImpliedVolatility != nil {
			leg.ImpliedVolatility = *in.ImpliedVolatility
		}
		if in.OpeningCommission != nil {
			leg.OpeningCommission = *in.OpeningCommission
		}
		if in.ClosingCommission != nil {
			leg.ClosingCommission = *in.ClosingCommission
		}
		if in.ClosingPrice != nil {
			leg.ClosingPrice = decimal.NewNullDecimal(*in.ClosingPrice)
			if leg.ClosingDate == nil {
				closedAt := now
				leg.ClosingDate = &closedAt
			}
		} else {
			leg.ClosingDate = nil
		}
		legs = append(legs, leg)
	}
	return legs, nil
}
