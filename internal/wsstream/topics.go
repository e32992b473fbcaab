package wsstream

import (
	"strconv"
	"strings"
)

// DepthTopic builds the diff-depth stream topic for a symbol, e.g.
// "btcusdt@depth" or, with a non-zero updateSpeedMillis, "btcusdt@depth@100ms".
func DepthTopic(symbol string, updateSpeedMillis int) string {
	topic := strings.ToLower(symbol) + "@depth"
	if updateSpeedMillis > 0 {
		topic += "@" + strconv.Itoa(updateSpeedMillis) + "ms"
	}
	return topic
}

// BookTickerTopic builds the best-bid/ask stream topic for a symbol.
func BookTickerTopic(symbol string) string {
	return strings.ToLower(symbol) + "@bookTicker"
}

// MarkPriceTopic builds the mark price stream topic for a symbol.
func MarkPriceTopic(symbol string, updateSpeed1s bool) string {
	topic := strings.ToLower(symbol) + "@markPrice"
	if updateSpeed1s {
		topic += "@1s"
	}
	return topic
}

// AggTradeTopic builds the aggregate trade stream topic for a symbol.
func AggTradeTopic(symbol string) string {
	return strings.ToLower(symbol) + "@aggTrade"
}

// ForceOrderTopic builds the liquidation order stream topic for a symbol.
func ForceOrderTopic(symbol string) string {
	return strings.ToLower(symbol) + "@forceOrder"
}

// ListenKeyPath builds the raw-stream path for a user-data-stream listen
// key, to be joined with the WS host as "/ws" + ListenKeyPath(key).
func ListenKeyPath(listenKey string) string {
	return "/" + listenKey
}

