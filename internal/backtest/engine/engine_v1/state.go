package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/rxtech-lab/plantrade/internal/logger"
	"github.com/rxtech-lab/plantrade/internal/types"
	"go.uber.org/zap"
)

// BacktestState is the trade ledger for one simulation run. Orders and their
// fills are recorded in an in-memory DuckDB database; position aggregates and
// statistics are derived from the trades table.
type BacktestState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewBacktestState(logger *logger.Logger) *BacktestState {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))
		return nil
	}

	return &BacktestState{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Initialize creates the tables for tracking orders and trades.
func (b *BacktestState) Initialize() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			symbol TEXT,
			side TEXT,
			position_type TEXT,
			quantity DOUBLE,
			price DOUBLE,
			timestamp TIMESTAMP,
			reason TEXT,
			message TEXT,
			strategy_name TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create orders table: %w", err)
	}

	_, err = b.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			order_id TEXT,
			symbol TEXT,
			side TEXT,
			position_type TEXT,
			quantity DOUBLE,
			price DOUBLE,
			timestamp TIMESTAMP,
			reason TEXT,
			message TEXT,
			strategy_name TEXT,
			executed_at TIMESTAMP,
			executed_qty DOUBLE,
			executed_price DOUBLE,
			commission DOUBLE,
			pnl DOUBLE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create trades table: %w", err)
	}

	return nil
}

// UpdateResult contains the results of processing an order.
type UpdateResult struct {
	Order         types.Order
	Trade         types.Trade
	IsNewPosition bool
}

// Update fills orders and records the resulting trades. Every order fills in
// full at its price. Exit orders carry realized PnL computed against the
// position's average entry price, net of the exit commission.
func (b *BacktestState) Update(orders []types.Order) ([]UpdateResult, error) {
	results := make([]UpdateResult, 0, len(orders))

	for _, order := range orders {
		orderID := uuid.New().String()

		tx, err := b.db.Begin()
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}

		insertQuery := b.sq.
			Insert("orders").
			Columns(
				"order_id", "symbol", "side", "position_type", "quantity", "price",
				"timestamp", "reason", "message", "strategy_name",
			).
			Values(
				orderID, order.Symbol, order.Side, order.PositionType, order.Quantity,
				order.Price, order.Timestamp, order.Reason.Reason, order.Reason.Message,
				order.StrategyName,
			).
			RunWith(tx)

		_, err = insertQuery.Exec()
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to insert order: %w", err)
		}

		currentPosition, err := b.GetPosition(order.Symbol)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to get position: %w", err)
		}

		pnl := calculatePnL(order, currentPosition)

		trade := types.Trade{
			Order: types.Order{
				OrderID:      orderID,
				Symbol:       order.Symbol,
				Side:         order.Side,
				Quantity:     order.Quantity,
				Price:        order.Price,
				Timestamp:    order.Timestamp,
				Reason:       order.Reason,
				StrategyName: order.StrategyName,
				Fee:          order.Fee,
				PositionType: order.PositionType,
			},
			ExecutedAt:    order.Timestamp,
			ExecutedQty:   order.Quantity,
			ExecutedPrice: order.Price,
			Fee:           order.Fee,
			PnL:           pnl,
		}

		insertTradeQuery := b.sq.
			Insert("trades").
			Columns(
				"order_id", "symbol", "side", "position_type", "quantity", "price",
				"timestamp", "reason", "message", "strategy_name",
				"executed_at", "executed_qty", "executed_price", "commission", "pnl",
			).
			Values(
				orderID, trade.Order.Symbol, trade.Order.Side, trade.Order.PositionType,
				trade.Order.Quantity, trade.Order.Price, trade.Order.Timestamp,
				trade.Order.Reason.Reason, trade.Order.Reason.Message, order.StrategyName,
				trade.ExecutedAt, trade.ExecutedQty, trade.ExecutedPrice,
				trade.Fee, trade.PnL,
			).
			RunWith(tx)

		_, err = insertTradeQuery.Exec()
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to insert trade: %w", err)
		}

		isNewPosition := currentPosition.OpenQuantity == 0 && isEntry(order)

		err = tx.Commit()
		if err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}

		order.OrderID = orderID
		results = append(results, UpdateResult{
			Order:         order,
			Trade:         trade,
			IsNewPosition: isNewPosition,
		})
	}

	return results, nil
}

// isEntry reports whether the order opens or adds to a position. A BUY opens a
// long; a SELL opens a short.
func isEntry(order types.Order) bool {
	if order.PositionType == types.DirectionShort {
		return order.Side == types.PurchaseTypeSell
	}

	return order.Side == types.PurchaseTypeBuy
}

// calculatePnL computes the realized PnL an exit order adds to the ledger.
// Entry orders carry zero.
func calculatePnL(order types.Order, position types.Position) float64 {
	if isEntry(order) || position.OpenQuantity == 0 {
		return 0
	}

	avgEntry := decimal.NewFromFloat(position.GetAverageEntryPrice())
	qty := decimal.NewFromFloat(order.Quantity)
	entryAmount := qty.Mul(avgEntry)
	exitAmount := qty.Mul(decimal.NewFromFloat(order.Price))

	var gross decimal.Decimal
	if order.PositionType == types.DirectionShort {
		gross = entryAmount.Sub(exitAmount)
	} else {
		gross = exitAmount.Sub(entryAmount)
	}

	pnl, _ := gross.Sub(decimal.NewFromFloat(order.Fee)).Float64()

	return pnl
}

// GetPosition derives the current position aggregate for a symbol from the
// trades table. The aggregate covers only the open cycle: trades of earlier
// round trips, closed when the running position quantity returned to zero, do
// not bleed into the average entry price. An empty ledger yields a zero
// position.
func (b *BacktestState) GetPosition(symbol string) (types.Position, error) {
	query := `
		WITH seq AS (
			SELECT
				position_type, side, executed_qty, executed_price, commission,
				executed_at, strategy_name,
				((position_type = 'short') = (side = 'SELL')) as is_entry,
				row_number() OVER (ORDER BY executed_at, rowid) as seq_no,
				SUM(CASE WHEN (position_type = 'short') = (side = 'SELL')
					THEN executed_qty ELSE -executed_qty END)
					OVER (ORDER BY executed_at, rowid) as running_qty
			FROM trades
			WHERE symbol = ?
		),
		boundary AS (
			SELECT COALESCE(MAX(seq_no), 0) as last_flat_seq
			FROM seq
			WHERE ABS(running_qty) < 1e-9
		),
		cycle AS (
			SELECT s.* FROM seq s, boundary b WHERE s.seq_no > b.last_flat_seq
		)
		SELECT
			? as symbol,
			COALESCE(MAX(position_type), 'long') as position_type,
			COALESCE(SUM(CASE WHEN is_entry THEN executed_qty ELSE 0 END), 0)
				- COALESCE(SUM(CASE WHEN NOT is_entry THEN executed_qty ELSE 0 END), 0) as open_quantity,
			COALESCE(SUM(CASE WHEN is_entry THEN executed_qty ELSE 0 END), 0) as total_in_quantity,
			COALESCE(SUM(CASE WHEN NOT is_entry THEN executed_qty ELSE 0 END), 0) as total_out_quantity,
			COALESCE(SUM(CASE WHEN is_entry THEN executed_qty * executed_price ELSE 0 END), 0) as total_in_amount,
			COALESCE(SUM(CASE WHEN NOT is_entry THEN executed_qty * executed_price ELSE 0 END), 0) as total_out_amount,
			COALESCE(SUM(commission), 0) as total_fees,
			COALESCE(MIN(executed_at), CURRENT_TIMESTAMP) as open_timestamp,
			COALESCE(MAX(strategy_name), '') as strategy_name
		FROM cycle
	`

	args := []interface{}{symbol, symbol}

	var position types.Position
	err := b.db.QueryRow(query, args...).Scan(
		&position.Symbol,
		&position.Direction,
		&position.OpenQuantity,
		&position.TotalInQuantity,
		&position.TotalOutQuantity,
		&position.TotalInAmount,
		&position.TotalOutAmount,
		&position.TotalFees,
		&position.OpenTimestamp,
		&position.StrategyName,
	)

	if err == sql.ErrNoRows {
		return types.Position{
			Symbol:        symbol,
			Direction:     types.DirectionLong,
			OpenTimestamp: time.Time{},
		}, nil
	}

	if err != nil {
		return types.Position{}, fmt.Errorf("failed to query position: %w", err)
	}

	return position, nil
}

// GetAllTrades returns all trades from the ledger in execution order.
func (b *BacktestState) GetAllTrades() ([]types.Trade, error) {
	selectQuery := b.sq.
		Select(
			"order_id", "symbol", "side", "position_type", "quantity", "price",
			"timestamp", "reason", "message", "strategy_name",
			"executed_at", "executed_qty", "executed_price", "commission", "pnl",
		).
		From("trades").
		OrderBy("executed_at ASC").
		RunWith(b.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		var trade types.Trade
		err := rows.Scan(
			&trade.Order.OrderID,
			&trade.Order.Symbol,
			&trade.Order.Side,
			&trade.Order.PositionType,
			&trade.Order.Quantity,
			&trade.Order.Price,
			&trade.Order.Timestamp,
			&trade.Order.Reason.Reason,
			&trade.Order.Reason.Message,
			&trade.Order.StrategyName,
			&trade.ExecutedAt,
			&trade.ExecutedQty,
			&trade.ExecutedPrice,
			&trade.Fee,
			&trade.PnL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// GetOrderById returns an order by its id.
func (b *BacktestState) GetOrderById(orderID string) (optional.Option[types.Order], error) {
	query := b.sq.
		Select(
			"order_id", "symbol", "side", "position_type", "quantity", "price",
			"timestamp", "reason", "message", "strategy_name",
		).
		From("orders").
		Where(squirrel.Eq{"order_id": orderID}).
		RunWith(b.db)

	var order types.Order
	err := query.QueryRow().Scan(
		&order.OrderID,
		&order.Symbol,
		&order.Side,
		&order.PositionType,
		&order.Quantity,
		&order.Price,
		&order.Timestamp,
		&order.Reason.Reason,
		&order.Reason.Message,
		&order.StrategyName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return optional.None[types.Order](), nil
		}
		return optional.None[types.Order](), fmt.Errorf("failed to get order by id: %w", err)
	}

	return optional.Some(order), nil
}

// GetStats summarizes the trades of one run for a symbol.
func (b *BacktestState) GetStats(symbol string) (types.TradeStats, error) {
	query := `
		WITH closed AS (
			SELECT pnl FROM trades
			WHERE symbol = ? AND ((position_type = 'short') = (side = 'BUY'))
		)
		SELECT
			COUNT(*) as number_of_trades,
			COALESCE(SUM(CASE WHEN pnl > 0 THEN 1 ELSE 0 END), 0) as winning_trades,
			COALESCE(SUM(CASE WHEN pnl < 0 THEN 1 ELSE 0 END), 0) as losing_trades,
			CASE WHEN COUNT(*) > 0 THEN CAST(SUM(CASE WHEN pnl > 0 THEN 1 ELSE 0 END) AS DOUBLE) / COUNT(*) ELSE 0 END as win_rate,
			COALESCE(SUM(pnl), 0) as realized_pnl,
			COALESCE(MIN(CASE WHEN pnl < 0 THEN pnl ELSE 0 END), 0) as max_loss,
			COALESCE(MAX(CASE WHEN pnl > 0 THEN pnl ELSE 0 END), 0) as max_profit
		FROM closed
	`

	var stats types.TradeStats
	var maxLoss float64
	err := b.db.QueryRow(query, symbol).Scan(
		&stats.NumberOfTrades,
		&stats.NumberOfWinningTrades,
		&stats.NumberOfLosingTrades,
		&stats.WinRate,
		&stats.RealizedPnL,
		&maxLoss,
		&stats.MaximumProfit,
	)
	if err != nil {
		return types.TradeStats{}, fmt.Errorf("failed to calculate trade stats: %w", err)
	}

	if maxLoss < 0 {
		stats.MaximumLoss = -maxLoss
	}

	totalFees, err := b.calculateTotalFees(symbol)
	if err != nil {
		return types.TradeStats{}, err
	}
	stats.TotalFees = totalFees

	return stats, nil
}

// calculateTotalFees sums commissions paid for a symbol.
func (b *BacktestState) calculateTotalFees(symbol string) (float64, error) {
	query := b.sq.
		Select("COALESCE(SUM(commission), 0)").
		From("trades").
		Where(squirrel.Eq{"symbol": symbol}).
		RunWith(b.db)

	var totalFees float64
	err := query.QueryRow().Scan(&totalFees)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate total fees: %w", err)
	}

	return totalFees, nil
}

// Write exports the ledger to Parquet files in the given directory.
func (b *BacktestState) Write(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tradesPath := filepath.Join(path, "trades.parquet")
	_, err := b.db.Exec(fmt.Sprintf(`COPY trades TO '%s' (FORMAT PARQUET)`, tradesPath))
	if err != nil {
		return fmt.Errorf("failed to export trades to Parquet: %w", err)
	}

	ordersPath := filepath.Join(path, "orders.parquet")
	_, err = b.db.Exec(fmt.Sprintf(`COPY orders TO '%s' (FORMAT PARQUET)`, ordersPath))
	if err != nil {
		return fmt.Errorf("failed to export orders to Parquet: %w", err)
	}

	b.logger.Info("Exported ledger to Parquet files",
		zap.String("trades", tradesPath),
		zap.String("orders", ordersPath),
	)

	return nil
}

// Cleanup drops and recreates the ledger tables.
func (b *BacktestState) Cleanup() error {
	_, err := b.db.Exec(`
		DROP TABLE IF EXISTS trades;
		DROP TABLE IF EXISTS orders;
	`)
	if err != nil {
		return fmt.Errorf("failed to cleanup tables: %w", err)
	}

	return b.Initialize()
}

// Close releases the underlying database.
func (b *BacktestState) Close() error {
	return b.db.Close()
}
