// Package mongo provides a MongoDB-backed Keymarket store.
//
// ApplyTrade uses a multi-document transaction, so the deployment must be a
// replica set (or sharded cluster); standalone servers do not support
// transactions.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	keymarket "github.com/fanbase-labs/keymarket"
	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/keys"
	ledgerstore "github.com/fanbase-labs/keymarket/store"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

// Collection name constants.
const (
	colCreators   = "keymarket_creators"
	colHoldings   = "keymarket_holdings"
	colTrades     = "keymarket_trades"
	colGlobals    = "keymarket_globals"
	colExemptions = "keymarket_tax_exemptions"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store on a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New wraps an existing client and database name.
func New(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
	}
}

// Migrate creates indexes and seeds default parameters if absent.
func (s *Store) Migrate(ctx context.Context) error {
	holdingIdx := mongo.IndexModel{Keys: bson.D{{Key: "holder", Value: 1}}}
	if _, err := s.db.Collection(colHoldings).Indexes().CreateOne(ctx, holdingIdx); err != nil {
		return fmt.Errorf("%w: holdings index: %v", keymarket.ErrMigrationFailed, err)
	}

	tradeIdx := mongo.IndexModel{Keys: bson.D{{Key: "creator", Value: 1}, {Key: "executed_at", Value: 1}}}
	if _, err := s.db.Collection(colTrades).Indexes().CreateOne(ctx, tradeIdx); err != nil {
		return fmt.Errorf("%w: trades index: %v", keymarket.ErrMigrationFailed, err)
	}

	defaults := ledgerstore.DefaultParams()
	seed := bson.M{"$setOnInsert": bson.M{
		"registration_fee": defaults.RegistrationFee.String(),
		"max_creator_keys": int64(defaults.MaxCreatorKeys),
		"fee_pool":         "0",
	}}
	_, err := s.db.Collection(colGlobals).UpdateOne(ctx,
		bson.M{"_id": globalsDocID}, seed, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: seed globals: %v", keymarket.ErrMigrationFailed, err)
	}

	return nil
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// ──────────────────────────────────────────────────
// Creator registry
// ──────────────────────────────────────────────────

func (s *Store) CreateCreator(ctx context.Context, c *creator.Creator) error {
	_, err := s.db.Collection(colCreators).InsertOne(ctx, toCreatorModel(c))
	if mongo.IsDuplicateKeyError(err) {
		return keymarket.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("mongo: create creator: %w", err)
	}

	return nil
}

func (s *Store) GetCreator(ctx context.Context, creatorID id.AccountID) (*creator.Creator, error) {
	var m creatorModel
	err := s.db.Collection(colCreators).
		FindOne(ctx, bson.M{"_id": creatorID.String()}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, keymarket.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: get creator: %w", err)
	}

	return m.toDomain()
}

func (s *Store) ListCreators(ctx context.Context, opts creator.ListOpts) ([]*creator.Creator, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "registered_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(opts.Offset))
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := s.db.Collection(colCreators).Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list creators: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]*creator.Creator, 0)
	for cursor.Next(ctx) {
		var m creatorModel
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("mongo: list creators: %w", err)
		}
		c, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, cursor.Err()
}

func (s *Store) UpdateCreator(ctx context.Context, c *creator.Creator) error {
	m := toCreatorModel(c)
	m.UpdatedAt = types.NewEntity().UpdatedAt

	res, err := s.db.Collection(colCreators).
		ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("mongo: update creator: %w", err)
	}
	if res.MatchedCount == 0 {
		return keymarket.ErrNotFound
	}

	return nil
}

// ──────────────────────────────────────────────────
// Key holdings
// ──────────────────────────────────────────────────

func (s *Store) GetHolding(ctx context.Context, holder, creatorID id.AccountID) (*keys.Holding, error) {
	var m holdingModel
	err := s.db.Collection(colHoldings).
		FindOne(ctx, bson.M{"_id": holdingDocID(holder, creatorID)}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Implicit zero balance
		return &keys.Holding{Entity: types.NewEntity(), Holder: holder, Creator: creatorID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: get holding: %w", err)
	}

	return m.toDomain()
}

func (s *Store) ListHoldings(ctx context.Context, holder id.AccountID) ([]*keys.Holding, error) {
	filter := bson.M{"holder": holder.String(), "balance": bson.M{"$gt": 0}}
	cursor, err := s.db.Collection(colHoldings).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "creator", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: list holdings: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]*keys.Holding, 0)
	for cursor.Next(ctx) {
		var m holdingModel
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("mongo: list holdings: %w", err)
		}
		h, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}

	return out, cursor.Err()
}

// ──────────────────────────────────────────────────
// Trades
// ──────────────────────────────────────────────────

func (s *Store) ApplyTrade(ctx context.Context, app ledgerstore.TradeApplication) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", keymarket.ErrTransactionFailed, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		if err := s.UpdateCreator(ctx, app.Creator); err != nil {
			return nil, err
		}

		docID := holdingDocID(app.Trade.Trader, app.Trade.Creator)
		var current holdingModel
		err := s.db.Collection(colHoldings).FindOne(ctx, bson.M{"_id": docID}).Decode(&current)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: read holding: %v", keymarket.ErrTransactionFailed, err)
		}

		newBalance := current.Balance + app.HoldingDelta
		if newBalance < 0 {
			return nil, fmt.Errorf("%w: holding balance would go negative", keymarket.ErrInsufficientKeys)
		}

		now := types.NewEntity()
		update := bson.M{
			"$set": bson.M{"balance": newBalance, "updated_at": now.UpdatedAt},
			"$setOnInsert": bson.M{
				"holder":     app.Trade.Trader.String(),
				"creator":    app.Trade.Creator.String(),
				"created_at": now.CreatedAt,
			},
		}
		_, err = s.db.Collection(colHoldings).UpdateOne(ctx,
			bson.M{"_id": docID}, update, options.UpdateOne().SetUpsert(true))
		if err != nil {
			return nil, fmt.Errorf("%w: write holding: %v", keymarket.ErrTransactionFailed, err)
		}

		if _, err := s.db.Collection(colTrades).InsertOne(ctx, toTradeModel(app.Trade)); err != nil {
			return nil, fmt.Errorf("%w: write trade: %v", keymarket.ErrTransactionFailed, err)
		}

		if app.FeePoolAdd.IsPositive() {
			if err := s.adjustFeePool(ctx, app.FeePoolAdd, false); err != nil {
				return nil, err
			}
		}

		return nil, nil
	})

	return err
}

func (s *Store) ListTrades(ctx context.Context, creatorID id.AccountID, opts trade.ListOpts) ([]*trade.Trade, error) {
	filter := bson.M{"creator": creatorID.String()}
	if opts.Side != "" {
		filter["side"] = string(opts.Side)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "executed_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(opts.Offset))
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cursor, err := s.db.Collection(colTrades).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list trades: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]*trade.Trade, 0)
	for cursor.Next(ctx) {
		var m tradeModel
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("mongo: list trades: %w", err)
		}
		tr, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}

	return out, cursor.Err()
}

// ──────────────────────────────────────────────────
// Parameters and fee pool
// ──────────────────────────────────────────────────

func (s *Store) GetParams(ctx context.Context) (ledgerstore.Params, error) {
	m, err := s.globals(ctx)
	if err != nil {
		return ledgerstore.Params{}, err
	}

	fee, err := types.ParseAmount(m.RegistrationFee)
	if err != nil {
		return ledgerstore.Params{}, fmt.Errorf("mongo: params: %w", err)
	}

	return ledgerstore.Params{
		RegistrationFee: fee,
		MaxCreatorKeys:  uint64(m.MaxCreatorKeys),
	}, nil
}

func (s *Store) SetParams(ctx context.Context, p ledgerstore.Params) error {
	update := bson.M{"$set": bson.M{
		"registration_fee": p.RegistrationFee.String(),
		"max_creator_keys": int64(p.MaxCreatorKeys),
	}}
	_, err := s.db.Collection(colGlobals).UpdateOne(ctx, bson.M{"_id": globalsDocID}, update)
	if err != nil {
		return fmt.Errorf("mongo: set params: %w", err)
	}

	return nil
}

func (s *Store) FeePool(ctx context.Context) (types.Amount, error) {
	m, err := s.globals(ctx)
	if err != nil {
		return types.Zero(), err
	}

	pool, err := types.ParseAmount(m.FeePool)
	if err != nil {
		return types.Zero(), fmt.Errorf("mongo: fee pool: %w", err)
	}

	return pool, nil
}

func (s *Store) CreditFeePool(ctx context.Context, amount types.Amount) error {
	return s.adjustFeePool(ctx, amount, false)
}

func (s *Store) DebitFeePool(ctx context.Context, amount types.Amount) error {
	return s.adjustFeePool(ctx, amount, true)
}

func (s *Store) DrainFeePool(ctx context.Context) (types.Amount, error) {
	var m globalsModel
	err := s.db.Collection(colGlobals).FindOneAndUpdate(ctx,
		bson.M{"_id": globalsDocID},
		bson.M{"$set": bson.M{"fee_pool": "0"}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&m)
	if err != nil {
		return types.Zero(), fmt.Errorf("%w: drain pool: %v", keymarket.ErrTransactionFailed, err)
	}

	pool, err := types.ParseAmount(m.FeePool)
	if err != nil {
		return types.Zero(), fmt.Errorf("mongo: drain pool: %w", err)
	}

	return pool, nil
}

func (s *Store) adjustFeePool(ctx context.Context, amount types.Amount, debit bool) error {
	m, err := s.globals(ctx)
	if err != nil {
		return err
	}

	pool, err := types.ParseAmount(m.FeePool)
	if err != nil {
		return fmt.Errorf("mongo: fee pool: %w", err)
	}

	if debit {
		if pool.Less(amount) {
			return keymarket.ErrInsufficientFunds
		}
		pool = pool.Sub(amount)
	} else {
		pool = pool.Add(amount)
	}

	_, err = s.db.Collection(colGlobals).UpdateOne(ctx,
		bson.M{"_id": globalsDocID},
		bson.M{"$set": bson.M{"fee_pool": pool.String()}})
	if err != nil {
		return fmt.Errorf("%w: write pool: %v", keymarket.ErrTransactionFailed, err)
	}

	return nil
}

func (s *Store) globals(ctx context.Context) (*globalsModel, error) {
	var m globalsModel
	err := s.db.Collection(colGlobals).FindOne(ctx, bson.M{"_id": globalsDocID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, keymarket.ErrStoreNotReady
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: globals: %w", err)
	}

	return &m, nil
}

// ──────────────────────────────────────────────────
// Tax exemptions
// ──────────────────────────────────────────────────

func (s *Store) SetTaxExempt(ctx context.Context, account id.AccountID, exempt bool) error {
	col := s.db.Collection(colExemptions)

	if exempt {
		doc := exemptionModel{ID: account.String(), CreatedAt: types.NewEntity().CreatedAt}
		_, err := col.InsertOne(ctx, doc)
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("mongo: set tax exempt: %w", err)
		}
		return nil
	}

	if _, err := col.DeleteOne(ctx, bson.M{"_id": account.String()}); err != nil {
		return fmt.Errorf("mongo: set tax exempt: %w", err)
	}

	return nil
}

func (s *Store) IsTaxExempt(ctx context.Context, account id.AccountID) (bool, error) {
	count, err := s.db.Collection(colExemptions).
		CountDocuments(ctx, bson.M{"_id": account.String()})
	if err != nil {
		return false, fmt.Errorf("mongo: is tax exempt: %w", err)
	}

	return count > 0, nil
}
