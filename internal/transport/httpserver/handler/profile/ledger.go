package profile

import (
	"net/http"

	"happi-app-go/internal/transport/httpserver/handler/common"
	"happi-app-go/internal/transport/httpserver/middleware"
)

func (h *Handlers) Transactions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	history, err := h.Ledger.History(r.Context(), user.ID, common.PageParam(r))
	if err != nil {
		h.internal(w, "profile.transactions: history failed", err, user.ID)
		return
	}

	common.Render(w, r, "Profile/Transactions", common.Props{
		"transactions":     history.Transactions,
		"coinTransactions": history.Coins,
	})
}

// Coins shows the coin ledger with the cached counter checked against the
// sum of its entries.
func (h *Handlers) Coins(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.Unauthorized(w)
		return
	}

	entries, err := h.Ledger.CoinEntries(r.Context(), user.ID, common.PageParam(r))
	if err != nil {
		h.internal(w, "profile.coins: list entries failed", err, user.ID)
		return
	}
	balance, err := h.Ledger.Balance(r.Context(), user.ID)
	if err != nil {
		h.internal(w, "profile.coins: balance failed", err, user.ID)
		return
	}
	if !balance.InSync {
		h.log.Warn("profile.coins: counter out of sync with ledger", "user_id", user.ID, "cached", balance.Cached, "derived", balance.Derived)
	}

	common.Render(w, r, "Profile/Coins", common.Props{
		"balance":          balance,
		"coinTransactions": entries,
	})
}
