// Package domain 期权结构（多腿组合）及其平仓、盈亏计算
package domain

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	analysis "github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"gorm.io/gorm"
)

// Status 结构状态
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// DefaultMultiplier DAX 指数期权每点价值
var DefaultMultiplier = decimal.NewFromInt(5)

// DefaultCommission 未指定时的单腿手续费
var DefaultCommission = decimal.NewFromInt(2)

// closingPricePlaces 理论平仓价保留的小数位
const closingPricePlaces = 4

var (
	ErrStructureNotFound  = apperr.NotFound("structure")
	ErrStructureForbidden = apperr.Forbidden("structure")
	ErrAlreadyClosed      = apperr.New(apperr.KindInvalidArgument, "structure is already closed")
	ErrNotClosed          = apperr.New(apperr.KindInvalidArgument, "structure is not closed")
	ErrNoOpenLegs         = apperr.New(apperr.KindInvalidArgument, "structure has no open legs")
)

// Structure 期权结构聚合根
type Structure struct {
	gorm.Model
	UserID      uint            `gorm:"column:user_id;index;not null" json:"userId"`
	Tag         string          `gorm:"column:tag;type:varchar(100);not null" json:"tag"`
	Multiplier  decimal.Decimal `gorm:"column:multiplier;type:decimal(20,4);not null;default:5" json:"multiplier"`
	Status      Status          `gorm:"column:status;type:varchar(10);not null;default:'active'" json:"status"`
	ClosingDate *time.Time      `gorm:"column:closing_date" json:"closingDate"`
	Legs        []*Leg          `gorm:"foreignKey:StructureID" json:"legs"`
}

func (Structure) TableName() string { return "option_structures" }

// Leg 结构中的单腿；ClosingPrice 为空表示仍未平仓
type Leg struct {
	gorm.Model
	StructureID       uint                `gorm:"column:structure_id;index;not null" json:"structureId"`
	OptionType        analysis.OptionType `gorm:"column:option_type;type:varchar(4);not null" json:"optionType"`
	Strike            decimal.Decimal     `gorm:"column:strike;type:decimal(20,4);not null" json:"strike"`
	ExpiryDate        time.Time           `gorm:"column:expiry_date;not null" json:"expiryDate"`
	OpeningDate       time.Time           `gorm:"column:opening_date;not null" json:"openingDate"`
	Quantity          int                 `gorm:"column:quantity;not null" json:"quantity"`
	TradePrice        decimal.Decimal     `gorm:"column:trade_price;type:decimal(20,4);not null" json:"tradePrice"`
	ClosingPrice      decimal.NullDecimal `gorm:"column:closing_price;type:decimal(20,4)" json:"closingPrice"`
	ClosingDate       *time.Time          `gorm:"column:closing_date" json:"closingDate"`
	ImpliedVolatility decimal.Decimal     `gorm:"column:implied_volatility;type:decimal(10,4);not null;default:0" json:"impliedVolatility"`
	OpeningCommission decimal.Decimal     `gorm:"column:opening_commission;type:decimal(20,4);not null;default:0" json:"openingCommission"`
	ClosingCommission decimal.Decimal     `gorm:"column:closing_commission;type:decimal(20,4);not null;default:0" json:"closingCommission"`
	// ClosedByStructure 由结构整体平仓写入的收盘价，重新打开时清除
	ClosedByStructure bool `gorm:"column:closed_by_structure;not null;default:false" json:"-"`
}

func (Leg) TableName() string { return "option_legs" }

// IsOpen 未平仓
func (l *Leg) IsOpen() bool { return !l.ClosingPrice.Valid }

// RealizedPnL 已平仓腿的盈亏：(平仓价 − 成交价)·数量·乘数 − 开平仓手续费；未平仓腿为 0
func (l *Leg) RealizedPnL(multiplier decimal.Decimal) decimal.Decimal {
	if l.IsOpen() {
		return decimal.Zero
	}
	gross := l.ClosingPrice.Decimal.Sub(l.TradePrice).Mul(decimal.NewFromInt(int64(l.Quantity))).Mul(multiplier)
	return gross.Sub(l.OpeningCommission).Sub(l.ClosingCommission)
}

// Validate 校验单腿
func (l *Leg) Validate() error {
	if _, err := analysis.ParseOptionType(string(l.OptionType)); err != nil {
		return err
	}
	if !l.Strike.IsPositive() {
		return apperr.Invalid("leg strike must be positive")
	}
	if l.Quantity == 0 {
		return apperr.Invalid("leg quantity must not be zero")
	}
	if l.TradePrice.IsNegative() {
		return apperr.Invalid("leg tradePrice must not be negative")
	}
	if l.ExpiryDate.IsZero() {
		return apperr.Invalid("leg expiryDate is required")
	}
	if l.ImpliedVolatility.IsNegative() {
		return apperr.Invalid("leg impliedVolatility must not be negative")
	}
	if l.OpeningCommission.IsNegative() || l.ClosingCommission.IsNegative() {
		return apperr.Invalid("leg commissions must not be negative")
	}
	if l.ClosingPrice.Valid && l.ClosingPrice.Decimal.IsNegative() {
		return apperr.Invalid("leg closingPrice must not be negative")
	}
	return nil
}

// Validate 校验结构及全部腿
func (s *Structure) Validate() error {
	if n := utf8.RuneCountInString(strings.TrimSpace(s.Tag)); n < 1 || n > 100 {
		return apperr.Invalid("tag must be 1..100 characters")
	}
	if !s.Multiplier.IsPositive() {
		return apperr.Invalid("multiplier must be positive")
	}
	if len(s.Legs) == 0 {
		return apperr.Invalid("structure needs at least one leg")
	}
	for _, leg := range s.Legs {
		if err := leg.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RealizedPnL 只汇总已平仓腿
func (s *Structure) RealizedPnL() decimal.Decimal {
	total := decimal.Zero
	for _, leg := range s.Legs {
		total = total.Add(leg.RealizedPnL(s.Multiplier))
	}
	return total
}

// OpenLegs 未平仓腿
func (s *Structure) OpenLegs() []*Leg {
	out := make([]*Leg, 0, len(s.Legs))
	for _, leg := range s.Legs {
		if leg.IsOpen() {
			out = append(out, leg)
		}
	}
	return out
}

// Close 以 Black-Scholes 理论价平掉全部未平仓腿，已到期的腿按内在价值
// impliedVolatility 以百分比存储
func (s *Structure) Close(spot, riskFreeRate float64, now time.Time) error {
	if s.Status == StatusClosed {
		return ErrAlreadyClosed
	}

	prices := make(map[*Leg]decimal.Decimal)
	for _, leg := range s.OpenLegs() {
		price, err := theoreticalPrice(leg, spot, riskFreeRate, now)
		if err != nil {
			return err
		}
		prices[leg] = price
	}

	for leg, price := range prices {
		closedAt := now
		leg.ClosingPrice = decimal.NewNullDecimal(price)
		leg.ClosingDate = &closedAt
		leg.ClosedByStructure = true
	}
	s.Status = StatusClosed
	s.ClosingDate = &now
	return nil
}

// Reopen 恢复为 active，并清除结构平仓时写入的收盘价
func (s *Structure) Reopen() error {
	if s.Status != StatusClosed {
		return ErrNotClosed
	}
	for _, leg := range s.Legs {
		if !leg.ClosedByStructure {
			continue
		}
		leg.ClosingPrice = decimal.NullDecimal{}
		leg.ClosingDate = nil
		leg.ClosedByStructure = false
	}
	s.Status = StatusActive
	s.ClosingDate = nil
	return nil
}

// Payoff 未平仓腿的到期盈亏，权利金取成交价，单位为指数点
func (s *Structure) Payoff(sweep analysis.PriceRange) (*analysis.PayoffResult, error) {
	open := s.OpenLegs()
	if len(open) == 0 {
		return nil, ErrNoOpenLegs
	}
	legs := make([]analysis.Leg, 0, len(open))
	for _, leg := range open {
		legs = append(legs, analysis.Leg{
			OptionType: leg.OptionType,
			Strike:     leg.Strike.InexactFloat64(),
			Premium:    leg.TradePrice.InexactFloat64(),
			Quantity:   leg.Quantity,
		})
	}
	return analysis.CalculateLegsPayoff(legs, sweep)
}

// YearsToExpiry 按自然日折算的剩余年限
func YearsToExpiry(expiry, now time.Time) float64 {
	return expiry.Sub(now).Hours() / 24 / 365
}

func theoreticalPrice(leg *Leg, spot, riskFreeRate float64, now time.Time) (decimal.Decimal, error) {
	strike := leg.Strike.InexactFloat64()
	t := YearsToExpiry(leg.ExpiryDate, now)
	if t <= 0 {
		if !(spot > 0) {
			return decimal.Zero, analysis.ErrInvalidPricingInput
		}
		return decimal.NewFromFloat(analysis.IntrinsicValue(leg.OptionType, spot, strike)).Round(closingPricePlaces), nil
	}

	in := analysis.BlackScholesInput{
		S: spot,
		K: strike,
		T: t,
		R: riskFreeRate,
		V: leg.ImpliedVolatility.InexactFloat64() / 100,
	}
	res, err := analysis.CalculateBlackScholes(leg.OptionType, in)
	if errors.Is(err, analysis.ErrDeltaSaturated) {
		// 极端虚值/实值腿按极限价格平仓
		return decimal.NewFromFloat(analysis.BoundaryPrice(leg.OptionType, in)).Round(closingPricePlaces), nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(res.Price).Round(closingPricePlaces), nil
}

// Repository 结构仓储；Get 预加载腿，未找到时返回 nil, nil
type Repository interface {
	Create(ctx context.Context, s *Structure) error
	Get(ctx context.Context, id uint) (*Structure, error)
	ListByUser(ctx context.Context, userID uint) ([]*Structure, error)
	// Save 保存结构与现有腿
	Save(ctx context.Context, s *Structure) error
	// ReplaceLegs 删除旧腿后写入 s.Legs
	ReplaceLegs(ctx context.Context, s *Structure) error
	Delete(ctx context.Context, id uint) error
	// SaveShare 同一结构对同一邮箱只保留一条，重复分享刷新时间
	SaveShare(ctx context.Context, share *Share) error
	ListShares(ctx context.Context, structureID uint) ([]*Share, error)
}
