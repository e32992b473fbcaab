package restapi

import (
	"context"

	"github.com/0xtitan6/binancefutures/internal/wire"
	"github.com/0xtitan6/binancefutures/pkg/types"
)

// Ping issues GET /fapi/v1/ping — an unauthenticated connectivity check,
// and the request the pipeline's own keep-alive timer uses.
func Ping(ctx context.Context, p *Pipeline, cb func(*types.PingResponse, error)) {
	dispatch[types.PingResponse](ctx, p, wire.GET, "/fapi/v1/ping", wire.NewArgList(), wire.Public, cb)
}

// Time issues GET /fapi/v1/time.
func Time(ctx context.Context, p *Pipeline, cb func(*types.ServerTime, error)) {
	dispatch[types.ServerTime](ctx, p, wire.GET, "/fapi/v1/time", wire.NewArgList(), wire.Public, cb)
}

// GetExchangeInfo issues GET /fapi/v1/exchangeInfo, the source of each
// symbol's price/quantity precision and filters.
func GetExchangeInfo(ctx context.Context, p *Pipeline, cb func(*types.ExchangeInfo, error)) {
	dispatch[types.ExchangeInfo](ctx, p, wire.GET, "/fapi/v1/exchangeInfo", wire.NewArgList(), wire.Public, cb)
}

// Depth issues GET /fapi/v1/depth — the REST snapshot the L2 order book
// synchronizer fetches after subscribing to the diff-depth stream.
func Depth(ctx context.Context, p *Pipeline, symbol string, limit int, cb func(*types.DepthSnapshot, error)) {
	args := wire.NewArgList().Set("symbol", wire.ArgString(symbol))
	if limit > 0 {
		args.Set("limit", wire.ArgInt64(int64(limit)))
	}
	dispatch[types.DepthSnapshot](ctx, p, wire.GET, "/fapi/v1/depth", args, wire.Public, cb)
}

// PremiumIndex issues GET /fapi/v1/premiumIndex.
func PremiumIndex(ctx context.Context, p *Pipeline, symbol string, cb func(*types.PremiumIndex, error)) {
	args := wire.NewArgList()
	if symbol != "" {
		args.Set("symbol", wire.ArgString(symbol))
	}
	dispatch[types.PremiumIndex](ctx, p, wire.GET, "/fapi/v1/premiumIndex", args, wire.Public, cb)
}

// TickerPrice issues GET /fapi/v1/ticker/price.
func TickerPrice(ctx context.Context, p *Pipeline, symbol string, cb func(*types.TickerPrice, error)) {
	args := wire.NewArgList()
	if symbol != "" {
		args.Set("symbol", wire.ArgString(symbol))
	}
	dispatch[types.TickerPrice](ctx, p, wire.GET, "/fapi/v1/ticker/price", args, wire.Public, cb)
}

// OrderRequest carries a new order's parameters. Zero values for optional
// numeric fields (Price, StopPrice) are omitted from the wire request.
type OrderRequest struct {
	Symbol        string
	Side          types.Side
	PositionSide  types.PositionSide
	Type          types.OrderType
	TimeInForce   types.TimeInForce
	Quantity      float64
	Price         float64
	StopPrice     float64
	ReduceOnly    bool
	ClientOrderID string
}

// PlaceOrder issues POST /fapi/v1/order (TRADE).
func PlaceOrder(ctx context.Context, p *Pipeline, o OrderRequest, cb func(*types.OrderAck, error)) {
	args := wire.NewArgList().
		Set("symbol", wire.ArgString(o.Symbol)).
		Set("side", wire.ArgString(string(o.Side))).
		Set("type", wire.ArgString(string(o.Type))).
		Set("quantity", wire.ArgFloat64(o.Quantity))
	if o.PositionSide != "" {
		args.Set("positionSide", wire.ArgString(string(o.PositionSide)))
	}
	if o.TimeInForce != "" {
		args.Set("timeInForce", wire.ArgString(string(o.TimeInForce)))
	}
	if o.Price != 0 {
		args.Set("price", wire.ArgFloat64(o.Price))
	}
	if o.StopPrice != 0 {
		args.Set("stopPrice", wire.ArgFloat64(o.StopPrice))
	}
	if o.ReduceOnly {
		args.Set("reduceOnly", wire.ArgBool(true))
	}
	if o.ClientOrderID != "" {
		args.Set("newClientOrderId", wire.ArgString(o.ClientOrderID))
	}
	dispatch[types.OrderAck](ctx, p, wire.POST, "/fapi/v1/order", args, wire.Trade, cb)
}

// CancelOrder issues DELETE /fapi/v1/order (TRADE). Exactly one of
// orderID or origClientOrderID should be non-zero/non-empty.
func CancelOrder(ctx context.Context, p *Pipeline, symbol string, orderID int64, origClientOrderID string, cb func(*types.OrderAck, error)) {
	args := wire.NewArgList().Set("symbol", wire.ArgString(symbol))
	if orderID != 0 {
		args.Set("orderId", wire.ArgInt64(orderID))
	}
	if origClientOrderID != "" {
		args.Set("origClientOrderId", wire.ArgString(origClientOrderID))
	}
	dispatch[types.OrderAck](ctx, p, wire.DELETE, "/fapi/v1/order", args, wire.Trade, cb)
}

// CancelAllOpenOrders issues DELETE /fapi/v1/allOpenOrders (TRADE).
func CancelAllOpenOrders(ctx context.Context, p *Pipeline, symbol string, cb func(*types.CancelAllAck, error)) {
	args := wire.NewArgList().Set("symbol", wire.ArgString(symbol))
	dispatch[types.CancelAllAck](ctx, p, wire.DELETE, "/fapi/v1/allOpenOrders", args, wire.Trade, cb)
}

// OpenOrder issues GET /fapi/v1/openOrder (USER_DATA) for a single order.
func OpenOrder(ctx context.Context, p *Pipeline, symbol string, orderID int64, cb func(*types.OrderAck, error)) {
	args := wire.NewArgList().Set("symbol", wire.ArgString(symbol)).Set("orderId", wire.ArgInt64(orderID))
	dispatch[types.OrderAck](ctx, p, wire.GET, "/fapi/v1/openOrder", args, wire.UserData, cb)
}

// AllOrders issues GET /fapi/v1/allOrders (USER_DATA).
func AllOrders(ctx context.Context, p *Pipeline, symbol string, limit int, cb func(*types.OrderList, error)) {
	args := wire.NewArgList().Set("symbol", wire.ArgString(symbol))
	if limit > 0 {
		args.Set("limit", wire.ArgInt64(int64(limit)))
	}
	dispatch[types.OrderList](ctx, p, wire.GET, "/fapi/v1/allOrders", args, wire.UserData, cb)
}

// PositionRisk issues GET /fapi/v2/positionRisk (USER_DATA), returning
// current position size, entry price, and liquidation price per symbol.
func PositionRisk(ctx context.Context, p *Pipeline, symbol string, cb func(*types.PositionRiskList, error)) {
	args := wire.NewArgList()
	if symbol != "" {
		args.Set("symbol", wire.ArgString(symbol))
	}
	dispatch[types.PositionRiskList](ctx, p, wire.GET, "/fapi/v2/positionRisk", args, wire.UserData, cb)
}

// AccountBalance issues GET /fapi/v2/balance (USER_DATA), returning the
// futures wallet balance per asset.
func AccountBalance(ctx context.Context, p *Pipeline, cb func(*types.AccountBalanceList, error)) {
	dispatch[types.AccountBalanceList](ctx, p, wire.GET, "/fapi/v2/balance", wire.NewArgList(), wire.UserData, cb)
}

// StartUserDataStream issues POST /fapi/v1/listenKey (USER_STREAM),
// minting a fresh listen key for binding a user-data WebSocket.
func StartUserDataStream(ctx context.Context, p *Pipeline, cb func(*types.ListenKeyResponse, error)) {
	dispatch[types.ListenKeyResponse](ctx, p, wire.POST, "/fapi/v1/listenKey", wire.NewArgList(), wire.UserStream, cb)
}

// KeepAliveUserDataStream issues PUT /fapi/v1/listenKey (USER_DATA, signed),
// extending the current listen key's validity by 60 minutes. Unlike the
// POST that mints the key, the renewal must carry a signature or Binance
// rejects it with -1022.
func KeepAliveUserDataStream(ctx context.Context, p *Pipeline, cb func(*types.ListenKeyResponse, error)) {
	dispatch[types.ListenKeyResponse](ctx, p, wire.PUT, "/fapi/v1/listenKey", wire.NewArgList(), wire.UserData, cb)
}
