package mongo

import (
	"fmt"
	"time"

	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/keys"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

// ==================== Creator models ====================

type creatorModel struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	Bio              string    `bson:"bio"`
	IsActive         bool      `bson:"is_active"`
	KeysSupply       int64     `bson:"keys_supply"`
	TotalVolume      string    `bson:"total_volume"`
	RegisteredAt     time.Time `bson:"registered_at"`
	KeysSoldDirectly int64     `bson:"keys_sold_directly"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func toCreatorModel(c *creator.Creator) *creatorModel {
	return &creatorModel{
		ID:               c.ID.String(),
		Name:             c.Name,
		Bio:              c.Bio,
		IsActive:         c.IsActive,
		KeysSupply:       int64(c.KeysSupply),
		TotalVolume:      c.TotalVolume.String(),
		RegisteredAt:     c.RegisteredAt.UTC(),
		KeysSoldDirectly: int64(c.KeysSoldDirectly),
		CreatedAt:        c.CreatedAt.UTC(),
		UpdatedAt:        c.UpdatedAt.UTC(),
	}
}

func (m *creatorModel) toDomain() (*creator.Creator, error) {
	creatorID, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("mongo: creator %q: %w", m.ID, err)
	}
	volume, err := types.ParseAmount(m.TotalVolume)
	if err != nil {
		return nil, fmt.Errorf("mongo: creator %q: %w", m.ID, err)
	}

	return &creator.Creator{
		Entity:           types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:               creatorID,
		Name:             m.Name,
		Bio:              m.Bio,
		IsActive:         m.IsActive,
		KeysSupply:       uint64(m.KeysSupply),
		TotalVolume:      volume,
		RegisteredAt:     m.RegisteredAt,
		KeysSoldDirectly: uint64(m.KeysSoldDirectly),
	}, nil
}

// ==================== Holding models ====================

type holdingModel struct {
	// _id is "<holder>/<creator>" so upserts target one document.
	ID        string    `bson:"_id"`
	Holder    string    `bson:"holder"`
	Creator   string    `bson:"creator"`
	Balance   int64     `bson:"balance"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func holdingDocID(holder, creatorID id.AccountID) string {
	return holder.String() + "/" + creatorID.String()
}

func (m *holdingModel) toDomain() (*keys.Holding, error) {
	holder, err := id.Parse(m.Holder)
	if err != nil {
		return nil, fmt.Errorf("mongo: holding %q: %w", m.ID, err)
	}
	creatorID, err := id.Parse(m.Creator)
	if err != nil {
		return nil, fmt.Errorf("mongo: holding %q: %w", m.ID, err)
	}

	return &keys.Holding{
		Entity:  types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Holder:  holder,
		Creator: creatorID,
		Balance: uint64(m.Balance),
	}, nil
}

// ==================== Trade models ====================

type tradeModel struct {
	ID          string    `bson:"_id"`
	Creator     string    `bson:"creator"`
	Trader      string    `bson:"trader"`
	Side        string    `bson:"side"`
	Amount      int64     `bson:"amount"`
	Price       string    `bson:"price"`
	PlatformFee string    `bson:"platform_fee"`
	CreatorFee  string    `bson:"creator_fee"`
	ExecutedAt  time.Time `bson:"executed_at"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toTradeModel(t *trade.Trade) *tradeModel {
	return &tradeModel{
		ID:          t.ID.String(),
		Creator:     t.Creator.String(),
		Trader:      t.Trader.String(),
		Side:        string(t.Side),
		Amount:      int64(t.Amount),
		Price:       t.Price.String(),
		PlatformFee: t.PlatformFee.String(),
		CreatorFee:  t.CreatorFee.String(),
		ExecutedAt:  t.ExecutedAt.UTC(),
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (m *tradeModel) toDomain() (*trade.Trade, error) {
	tradeID, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("mongo: trade %q: %w", m.ID, err)
	}
	creatorID, err := id.Parse(m.Creator)
	if err != nil {
		return nil, fmt.Errorf("mongo: trade %q: %w", m.ID, err)
	}
	trader, err := id.Parse(m.Trader)
	if err != nil {
		return nil, fmt.Errorf("mongo: trade %q: %w", m.ID, err)
	}
	price, err := types.ParseAmount(m.Price)
	if err != nil {
		return nil, fmt.Errorf("mongo: trade %q: %w", m.ID, err)
	}
	platformFee, err := types.ParseAmount(m.PlatformFee)
	if err != nil {
		return nil, fmt.Errorf("mongo: trade %q: %w", m.ID, err)
	}
	creatorFee, err := types.ParseAmount(m.CreatorFee)
	if err != nil {
		return nil, fmt.Errorf("mongo: trade %q: %w", m.ID, err)
	}

	return &trade.Trade{
		Entity:      types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:          tradeID,
		Creator:     creatorID,
		Trader:      trader,
		Side:        trade.Side(m.Side),
		Amount:      uint64(m.Amount),
		Price:       price,
		PlatformFee: platformFee,
		CreatorFee:  creatorFee,
		ExecutedAt:  m.ExecutedAt,
	}, nil
}

// ==================== Globals model ====================

// globalsModel is a single document (fixed _id) holding the admin-mutable
// parameters and the fee pool accumulator.
type globalsModel struct {
	ID              string `bson:"_id"`
	RegistrationFee string `bson:"registration_fee"`
	MaxCreatorKeys  int64  `bson:"max_creator_keys"`
	FeePool         string `bson:"fee_pool"`
}

const globalsDocID = "globals"

// ==================== Exemption model ====================

type exemptionModel struct {
	ID        string    `bson:"_id"` // account id
	CreatedAt time.Time `bson:"created_at"`
}
