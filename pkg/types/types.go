// Package types defines the wire-level records shared by the REST and
// WebSocket layers — REST response bodies and WS event payloads. It has no
// dependencies on internal packages other than internal/wire's decoder
// facade, so it can be imported by any layer without creating a cycle.
package types

import "github.com/0xtitan6/binancefutures/internal/wire"

// ————————————————————————————————————————————————————————————————————————
// Core enums
// ————————————————————————————————————————————————————————————————————————

// Side is an order side: BUY or SELL.
type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// OrderType enumerates the order lifecycles the futures API accepts.
type OrderType string

const (
	OrderTypeLimit      OrderType = "LIMIT"
	OrderTypeMarket     OrderType = "MARKET"
	OrderTypeStop       OrderType = "STOP"
	OrderTypeTakeProfit OrderType = "TAKE_PROFIT"
)

// TimeInForce is the order's time-in-force policy.
type TimeInForce string

const (
	GTC TimeInForce = "GTC"
	IOC TimeInForce = "IOC"
	FOK TimeInForce = "FOK"
	GTX TimeInForce = "GTX"
)

// PositionSide distinguishes hedge-mode positions; BOTH is used in
// one-way mode.
type PositionSide string

const (
	PositionBoth  PositionSide = "BOTH"
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
)

// ————————————————————————————————————————————————————————————————————————
// Simple REST responses
// ————————————————————————————————————————————————————————————————————————

// PingResponse is the empty body returned by GET /fapi/v1/ping.
type PingResponse struct{}

// AssignFrom is a no-op: the ping endpoint's success is entirely carried by
// the HTTP status and empty JSON object.
func (r *PingResponse) AssignFrom(buf []byte) error { return nil }

// ServerTime is the response of GET /fapi/v1/time.
type ServerTime struct {
	ServerTimeMillis int64
}

func (r *ServerTime) AssignFrom(buf []byte) error {
	wire.D.AssignInt64(buf, "serverTime", &r.ServerTimeMillis)
	return nil
}

// SymbolFilter is one entry of a symbol's PRICE_FILTER/LOT_SIZE/etc. filter
// list in exchangeInfo.
type SymbolFilter struct {
	FilterType string
	TickSize   float64
	StepSize   float64
	MinQty     float64
	MaxQty     float64
}

// SymbolInfo describes a single trading pair's precision and filters, as
// carried in ExchangeInfo.Symbols.
type SymbolInfo struct {
	Symbol            string
	Status            string
	PricePrecision    int
	QuantityPrecision int
	Filters           []SymbolFilter
}

// ExchangeInfo is the response of GET /fapi/v1/exchangeInfo — the precision
// and filter reference the market-data engine consults to build
// PriceKeys and round outbound quantities.
type ExchangeInfo struct {
	Symbols []SymbolInfo
}

func (r *ExchangeInfo) AssignFrom(buf []byte) error {
	return wire.D.EachArrayElement(buf, "symbols", func(_ int, sym []byte) {
		var s SymbolInfo
		wire.D.AssignString(sym, "symbol", &s.Symbol)
		wire.D.AssignString(sym, "status", &s.Status)
		var pp, qp int64
		wire.D.AssignInt64(sym, "pricePrecision", &pp)
		wire.D.AssignInt64(sym, "quantityPrecision", &qp)
		s.PricePrecision, s.QuantityPrecision = int(pp), int(qp)

		_ = wire.D.EachArrayElement(sym, "filters", func(_ int, f []byte) {
			var filt SymbolFilter
			wire.D.AssignString(f, "filterType", &filt.FilterType)
			wire.D.AssignFloat(f, "tickSize", &filt.TickSize)
			wire.D.AssignFloat(f, "stepSize", &filt.StepSize)
			wire.D.AssignFloat(f, "minQty", &filt.MinQty)
			wire.D.AssignFloat(f, "maxQty", &filt.MaxQty)
			s.Filters = append(s.Filters, filt)
		})
		r.Symbols = append(r.Symbols, s)
	})
}

// DepthLevel is a single (price, quantity) pair in a depth snapshot or
// update.
type DepthLevel struct {
	Price float64
	Qty   float64
}

func parseLevels(d wire.Decoder, buf []byte, key string) []DepthLevel {
	var levels []DepthLevel
	_ = d.EachArrayElement(buf, key, func(_ int, row []byte) {
		price, _ := d.ArrayElementFloat(row, 0)
		qty, _ := d.ArrayElementFloat(row, 1)
		levels = append(levels, DepthLevel{Price: price, Qty: qty})
	})
	return levels
}

// DepthSnapshot is the response of GET /fapi/v1/depth — the REST-fetched
// starting point for L2 order book synchronization.
type DepthSnapshot struct {
	LastUpdateID int64
	MessageTime  int64
	TransactTime int64
	Bids         []DepthLevel
	Asks         []DepthLevel
}

func (r *DepthSnapshot) AssignFrom(buf []byte) error {
	wire.D.AssignInt64(buf, "lastUpdateId", &r.LastUpdateID)
	wire.D.AssignInt64(buf, "E", &r.MessageTime)
	wire.D.AssignInt64(buf, "T", &r.TransactTime)
	r.Bids = parseLevels(wire.D, buf, "bids")
	r.Asks = parseLevels(wire.D, buf, "asks")
	return nil
}

// PremiumIndex is the response of GET /fapi/v1/premiumIndex.
type PremiumIndex struct {
	Symbol          string
	MarkPrice       float64
	IndexPrice      float64
	LastFundingRate float64
	NextFundingTime int64
	Time            int64
}

func (r *PremiumIndex) AssignFrom(buf []byte) error {
	wire.D.AssignString(buf, "symbol", &r.Symbol)
	wire.D.AssignFloat(buf, "markPrice", &r.MarkPrice)
	wire.D.AssignFloat(buf, "indexPrice", &r.IndexPrice)
	wire.D.AssignFloat(buf, "lastFundingRate", &r.LastFundingRate)
	wire.D.AssignInt64(buf, "nextFundingTime", &r.NextFundingTime)
	wire.D.AssignInt64(buf, "time", &r.Time)
	return nil
}

// TickerPrice is the response of GET /fapi/v1/ticker/price.
type TickerPrice struct {
	Symbol string
	Price  float64
	Time   int64
}

func (r *TickerPrice) AssignFrom(buf []byte) error {
	wire.D.AssignString(buf, "symbol", &r.Symbol)
	wire.D.AssignFloat(buf, "price", &r.Price)
	wire.D.AssignInt64(buf, "time", &r.Time)
	return nil
}

// OrderAck is the response of POST/GET/DELETE on /fapi/v1/order.
type OrderAck struct {
	OrderID       int64
	Symbol        string
	Status        string
	ClientOrderID string
	Price         float64
	AvgPrice      float64
	OrigQty       float64
	ExecutedQty   float64
	CumQuote      float64
	TimeInForce   TimeInForce
	Type          OrderType
	Side          Side
	PositionSide  PositionSide
	UpdateTime    int64
}

func (r *OrderAck) AssignFrom(buf []byte) error {
	wire.D.AssignInt64(buf, "orderId", &r.OrderID)
	wire.D.AssignString(buf, "symbol", &r.Symbol)
	wire.D.AssignString(buf, "status", &r.Status)
	wire.D.AssignString(buf, "clientOrderId", &r.ClientOrderID)
	wire.D.AssignFloat(buf, "price", &r.Price)
	wire.D.AssignFloat(buf, "avgPrice", &r.AvgPrice)
	wire.D.AssignFloat(buf, "origQty", &r.OrigQty)
	wire.D.AssignFloat(buf, "executedQty", &r.ExecutedQty)
	wire.D.AssignFloat(buf, "cumQuote", &r.CumQuote)
	wire.D.AssignInt64(buf, "updateTime", &r.UpdateTime)
	var tif, typ, side, posSide string
	wire.D.AssignString(buf, "timeInForce", &tif)
	wire.D.AssignString(buf, "type", &typ)
	wire.D.AssignString(buf, "side", &side)
	wire.D.AssignString(buf, "positionSide", &posSide)
	r.TimeInForce, r.Type, r.Side, r.PositionSide = TimeInForce(tif), OrderType(typ), Side(side), PositionSide(posSide)
	return nil
}

// OrderList is the response of GET /fapi/v1/openOrders and GET
// /fapi/v1/allOrders, both of which return a top-level JSON array.
type OrderList struct {
	Orders []OrderAck
}

func (r *OrderList) AssignFrom(buf []byte) error {
	return wire.D.EachTopLevelArrayElement(buf, func(_ int, el []byte) {
		var o OrderAck
		_ = o.AssignFrom(el)
		r.Orders = append(r.Orders, o)
	})
}

// CancelAllAck is the response of DELETE /fapi/v1/allOpenOrders.
type CancelAllAck struct {
	Code int64
	Msg  string
}

func (r *CancelAllAck) AssignFrom(buf []byte) error {
	wire.D.AssignInt64(buf, "code", &r.Code)
	wire.D.AssignString(buf, "msg", &r.Msg)
	return nil
}

// PositionRisk is one entry of the response of GET /fapi/v2/positionRisk.
type PositionRisk struct {
	Symbol           string
	PositionAmt      float64
	EntryPrice       float64
	MarkPrice        float64
	UnRealizedProfit float64
	LiquidationPrice float64
	Leverage         int
	PositionSide     PositionSide
}

// PositionRiskList wraps the top-level array GET /fapi/v2/positionRisk
// returns.
type PositionRiskList struct {
	Positions []PositionRisk
}

func (r *PositionRiskList) AssignFrom(buf []byte) error {
	return wire.D.EachTopLevelArrayElement(buf, func(_ int, el []byte) {
		var p PositionRisk
		wire.D.AssignString(el, "symbol", &p.Symbol)
		wire.D.AssignFloat(el, "positionAmt", &p.PositionAmt)
		wire.D.AssignFloat(el, "entryPrice", &p.EntryPrice)
		wire.D.AssignFloat(el, "markPrice", &p.MarkPrice)
		wire.D.AssignFloat(el, "unRealizedProfit", &p.UnRealizedProfit)
		wire.D.AssignFloat(el, "liquidationPrice", &p.LiquidationPrice)
		var lev int64
		wire.D.AssignInt64(el, "leverage", &lev)
		p.Leverage = int(lev)
		var posSide string
		wire.D.AssignString(el, "positionSide", &posSide)
		p.PositionSide = PositionSide(posSide)
		r.Positions = append(r.Positions, p)
	})
}

// AccountBalance is one entry of the response of GET /fapi/v2/balance.
type AccountBalance struct {
	Asset            string
	Balance          float64
	AvailableBalance float64
}

// AccountBalanceList wraps the top-level array GET /fapi/v2/balance
// returns.
type AccountBalanceList struct {
	Balances []AccountBalance
}

func (r *AccountBalanceList) AssignFrom(buf []byte) error {
	return wire.D.EachTopLevelArrayElement(buf, func(_ int, el []byte) {
		var b AccountBalance
		wire.D.AssignString(el, "asset", &b.Asset)
		wire.D.AssignFloat(el, "balance", &b.Balance)
		wire.D.AssignFloat(el, "availableBalance", &b.AvailableBalance)
		r.Balances = append(r.Balances, b)
	})
}

// ListenKeyResponse is the response of POST and PUT /fapi/v1/listenKey.
type ListenKeyResponse struct {
	ListenKey string
}

func (r *ListenKeyResponse) AssignFrom(buf []byte) error {
	wire.D.AssignString(buf, "listenKey", &r.ListenKey)
	return nil
}

// ————————————————————————————————————————————————————————————————————————
// WebSocket payloads
// ————————————————————————————————————————————————————————————————————————
// These decode the "data" object of a combined-stream envelope, or a raw
// single-stream frame — both shapes place the event fields at the same
// level once the envelope's "stream"/"data" wrapper has been stripped.

// DepthUpdate is a diff. depth event (@depth) frame.
type DepthUpdate struct {
	EventTime    int64
	TransactTime int64
	Symbol       string
	FirstUpdateID int64
	FinalUpdateID int64
	PrevFinalUpdateID int64 // "pu" — previous event's final update ID
	Bids         []DepthLevel
	Asks         []DepthLevel
}

func (r *DepthUpdate) AssignFrom(buf []byte) error {
	wire.D.AssignInt64(buf, "E", &r.EventTime)
	wire.D.AssignInt64(buf, "T", &r.TransactTime)
	wire.D.AssignString(buf, "s", &r.Symbol)
	wire.D.AssignInt64(buf, "U", &r.FirstUpdateID)
	wire.D.AssignInt64(buf, "u", &r.FinalUpdateID)
	wire.D.AssignInt64(buf, "pu", &r.PrevFinalUpdateID)
	r.Bids = parseLevels(wire.D, buf, "b")
	r.Asks = parseLevels(wire.D, buf, "a")
	return nil
}

// BookTickerUpdate is a bookTicker event frame: best bid/ask only.
type BookTickerUpdate struct {
	UpdateID int64
	Symbol   string
	BidPrice float64
	BidQty   float64
	AskPrice float64
	AskQty   float64
}

func (r *BookTickerUpdate) AssignFrom(buf []byte) error {
	wire.D.AssignInt64(buf, "u", &r.UpdateID)
	wire.D.AssignString(buf, "s", &r.Symbol)
	wire.D.AssignFloat(buf, "b", &r.BidPrice)
	wire.D.AssignFloat(buf, "B", &r.BidQty)
	wire.D.AssignFloat(buf, "a", &r.AskPrice)
	wire.D.AssignFloat(buf, "A", &r.AskQty)
	return nil
}

// MarkPriceUpdate is a markPrice event frame.
type MarkPriceUpdate struct {
	EventTime       int64
	Symbol          string
	MarkPrice       float64
	IndexPrice      float64
	FundingRate     float64
	NextFundingTime int64
}

func (r *MarkPriceUpdate) AssignFrom(buf []byte) error {
	wire.D.AssignInt64(buf, "E", &r.EventTime)
	wire.D.AssignString(buf, "s", &r.Symbol)
	wire.D.AssignFloat(buf, "p", &r.MarkPrice)
	wire.D.AssignFloat(buf, "i", &r.IndexPrice)
	wire.D.AssignFloat(buf, "r", &r.FundingRate)
	wire.D.AssignInt64(buf, "T", &r.NextFundingTime)
	return nil
}

// AggTradeUpdate is an aggTrade event frame.
type AggTradeUpdate struct {
	EventTime int64
	Symbol    string
	TradeID   int64
	Price     float64
	Qty       float64
	BuyerMaker bool
}

func (r *AggTradeUpdate) AssignFrom(buf []byte) error {
	wire.D.AssignInt64(buf, "E", &r.EventTime)
	wire.D.AssignString(buf, "s", &r.Symbol)
	wire.D.AssignInt64(buf, "a", &r.TradeID)
	wire.D.AssignFloat(buf, "p", &r.Price)
	wire.D.AssignFloat(buf, "q", &r.Qty)
	wire.D.AssignBool(buf, "m", &r.BuyerMaker)
	return nil
}

// ForceOrderUpdate is a forceOrder (liquidation) event frame. The payload
// lives nested under "o" in the raw event.
type ForceOrderUpdate struct {
	Symbol      string
	Side        Side
	OrigQty     float64
	Price       float64
	AvgPrice    float64
	Status      string
	TradeTime   int64
}

func (r *ForceOrderUpdate) AssignFrom(buf []byte) error {
	order, found, err := jsonRawGet(buf, "o")
	if err != nil || !found {
		order = buf
	}
	var side string
	wire.D.AssignString(order, "S", &side)
	r.Side = Side(side)
	wire.D.AssignString(order, "s", &r.Symbol)
	wire.D.AssignFloat(order, "q", &r.OrigQty)
	wire.D.AssignFloat(order, "p", &r.Price)
	wire.D.AssignFloat(order, "ap", &r.AvgPrice)
	wire.D.AssignString(order, "X", &r.Status)
	wire.D.AssignInt64(order, "T", &r.TradeTime)
	return nil
}

// UserOrderUpdate is an ORDER_TRADE_UPDATE event's nested "o" object from
// the user data stream. The "ap" field is disambiguated per the report's
// execution type and status: AveragePrice when the execution type is TRADE
// or the status is FILLED or PARTIALLY_FILLED, ActivationPrice for every
// other report (such as a new conditional STOP/TAKE_PROFIT order's trigger
// level) — see the decision recorded for this field in DESIGN.md.
type UserOrderUpdate struct {
	Symbol          string
	ClientOrderID   string
	Side            Side
	OrderType       OrderType
	TimeInForce     TimeInForce
	OrigQty         float64
	Price           float64
	AveragePrice    float64
	ActivationPrice float64
	StopPrice       float64
	ExecutionType   string
	OrderStatus     string
	OrderID         int64
	LastFilledQty   float64
	CumFilledQty    float64
	LastFilledPrice float64
	EventTime       int64
}

func (r *UserOrderUpdate) AssignFrom(buf []byte) error {
	order, found, err := jsonRawGet(buf, "o")
	if err != nil || !found {
		order = buf
	}
	wire.D.AssignInt64(buf, "E", &r.EventTime)
	wire.D.AssignString(order, "s", &r.Symbol)
	wire.D.AssignString(order, "c", &r.ClientOrderID)
	var side, typ, tif, execType, status string
	wire.D.AssignString(order, "S", &side)
	wire.D.AssignString(order, "o", &typ)
	wire.D.AssignString(order, "f", &tif)
	wire.D.AssignString(order, "x", &execType)
	wire.D.AssignString(order, "X", &status)
	r.Side, r.OrderType, r.TimeInForce = Side(side), OrderType(typ), TimeInForce(tif)
	r.ExecutionType, r.OrderStatus = execType, status
	wire.D.AssignFloat(order, "q", &r.OrigQty)
	wire.D.AssignFloat(order, "p", &r.Price)
	wire.D.AssignFloat(order, "sp", &r.StopPrice)
	wire.D.AssignInt64(order, "i", &r.OrderID)
	wire.D.AssignFloat(order, "l", &r.LastFilledQty)
	wire.D.AssignFloat(order, "z", &r.CumFilledQty)
	wire.D.AssignFloat(order, "L", &r.LastFilledPrice)

	if r.ExecutionType == "TRADE" || r.OrderStatus == "FILLED" || r.OrderStatus == "PARTIALLY_FILLED" {
		wire.D.AssignFloat(order, "ap", &r.AveragePrice)
	} else {
		wire.D.AssignFloat(order, "ap", &r.ActivationPrice)
	}
	return nil
}

// AccountUpdate is an ACCOUNT_UPDATE event's nested "a" object, carrying
// balance and position deltas. Only the fields the market-data engine's
// consumers need are surfaced; the full balance object is reachable through
// AccountBalanceList via REST when more is needed.
type AccountUpdate struct {
	EventTime int64
	Reason    string
}

func (r *AccountUpdate) AssignFrom(buf []byte) error {
	wire.D.AssignInt64(buf, "E", &r.EventTime)
	inner, found, err := jsonRawGet(buf, "a")
	if err == nil && found {
		wire.D.AssignString(inner, "m", &r.Reason)
	}
	return nil
}

// jsonRawGet is a tiny local indirection so types.go does not import
// jsonparser directly — it reaches the same raw-bytes-of-a-nested-object
// behavior through the decoder facade's exported primitives package uses
// elsewhere, keeping all parser-library calls inside internal/wire.
func jsonRawGet(buf []byte, key string) ([]byte, bool, error) {
	return wire.RawObject(buf, key)
}
