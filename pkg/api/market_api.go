package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	apiErrors "github.com/wavesplatform/gomarket/pkg/api/errors"
	"github.com/wavesplatform/gomarket/pkg/events"
	"github.com/wavesplatform/gomarket/pkg/proto"
)

const shutdownTimeout = 5 * time.Second

type MarketApi struct {
	app *App
}

func NewMarketApi(app *App) *MarketApi {
	return &MarketApi{app: app}
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apiErrors.NewInvalidJSONError(err.Error())
	}
	return nil
}

func trySendJson(w http.ResponseWriter, v interface{}) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return errors.Wrap(err, "failed to marshal response to JSON")
	}
	return nil
}

func addressParam(r *http.Request, name string) (proto.Address, error) {
	addr, err := proto.NewAddressFromString(chi.URLParam(r, name))
	if err != nil {
		return proto.Address{}, apiErrors.InvalidAddress
	}
	return addr, nil
}

func assetParam(r *http.Request) (proto.AssetKey, error) {
	collection, err := proto.NewAddressFromString(chi.URLParam(r, "collection"))
	if err != nil {
		return proto.AssetKey{}, apiErrors.InvalidAssetKey
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return proto.AssetKey{}, apiErrors.InvalidAssetKey
	}
	return proto.NewAssetKey(collection, id), nil
}

func (a *MarketApi) ListItem(w http.ResponseWriter, r *http.Request) error {
	req := &priceRequest{}
	if err := decode(r, req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	// Ledger errors are already prefixed with the operation.
	if err := a.app.ledger.ListItem(r.Context(), req.key(), req.Price, req.Caller); err != nil {
		return err
	}
	return trySendJson(w, nil)
}

func (a *MarketApi) UpdateListing(w http.ResponseWriter, r *http.Request) error {
	req := &priceRequest{}
	if err := decode(r, req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	if err := a.app.ledger.UpdateListing(r.Context(), req.key(), req.Price, req.Caller); err != nil {
		return err
	}
	return trySendJson(w, nil)
}

func (a *MarketApi) CancelListing(w http.ResponseWriter, r *http.Request) error {
	req := &assetRequest{}
	if err := decode(r, req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	if err := a.app.ledger.CancelListing(r.Context(), req.key(), req.Caller); err != nil {
		return err
	}
	return trySendJson(w, nil)
}

func (a *MarketApi) BuyItem(w http.ResponseWriter, r *http.Request) error {
	req := &buyRequest{}
	if err := decode(r, req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	if err := a.app.ledger.BuyItem(r.Context(), req.key(), req.Payment, req.Caller); err != nil {
		return err
	}
	return trySendJson(w, nil)
}

func (a *MarketApi) WithdrawProceeds(w http.ResponseWriter, r *http.Request) error {
	req := &withdrawRequest{}
	if err := decode(r, req); err != nil {
		return err
	}
	if req.Caller.IsZero() {
		return apiErrors.InvalidAddress
	}
	if err := a.app.ledger.WithdrawProceeds(r.Context(), req.Caller); err != nil {
		return err
	}
	return trySendJson(w, nil)
}

func (a *MarketApi) Proceeds(w http.ResponseWriter, r *http.Request) error {
	addr, err := addressParam(r, "address")
	if err != nil {
		return err
	}
	proceeds, err := a.app.ledger.GetAddressProceeds(r.Context(), addr)
	if err != nil {
		return errors.Wrap(err, "GetAddressProceeds")
	}
	return trySendJson(w, proceedsResponse{Address: addr, Proceeds: proceeds})
}

func (a *MarketApi) MarketItem(w http.ResponseWriter, r *http.Request) error {
	key, err := assetParam(r)
	if err != nil {
		return err
	}
	item, err := a.app.ledger.GetMarketItem(r.Context(), key)
	if err != nil {
		return errors.Wrap(err, "GetMarketItem")
	}
	return trySendJson(w, itemResponse{AssetKey: key, Listed: item.Active(), Price: item.Price, Seller: item.Seller})
}

func (a *MarketApi) MarketItems(w http.ResponseWriter, r *http.Request) error {
	var collection *proto.Address
	if s := r.URL.Query().Get("collection"); s != "" {
		addr, err := proto.NewAddressFromString(s)
		if err != nil {
			return apiErrors.InvalidAddress
		}
		collection = &addr
	}
	items, err := a.app.ledger.Listings(r.Context(), collection)
	if err != nil {
		return errors.Wrap(err, "Listings")
	}
	if items == nil {
		items = []proto.ListingEntry{}
	}
	return trySendJson(w, items)
}

func (a *MarketApi) Events(w http.ResponseWriter, r *http.Request) error {
	var (
		from  uint64
		limit = a.app.settings.EventsPageLimit
		q     = r.URL.Query()
	)
	if s := q.Get("from"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return apiErrors.NewCustomValidationError("invalid 'from' parameter")
		}
		from = v
	}
	if s := q.Get("limit"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return apiErrors.NewCustomValidationError("invalid 'limit' parameter")
		}
		l, err := safecast.ToInt(v)
		if err != nil || l > events.MaxPageSize {
			return apiErrors.NewPageTooLargeError(events.MaxPageSize)
		}
		limit = l
	}
	if a.app.journal == nil {
		return trySendJson(w, []proto.Event{})
	}
	page, err := a.app.journal.Range(from, limit)
	if err != nil {
		return errors.Wrap(err, "events range")
	}
	return trySendJson(w, page)
}

func (a *MarketApi) CreateCollection(w http.ResponseWriter, r *http.Request) error {
	req := &createCollectionRequest{}
	if err := decode(r, req); err != nil {
		return err
	}
	if req.Creator.IsZero() {
		return apiErrors.InvalidAddress
	}
	fee := a.app.settings.MintFee
	if req.MintFee != nil {
		fee = *req.MintFee
	}
	addr, err := a.app.registry.CreateCollection(r.Context(), req.Creator, req.Name, fee)
	if err != nil {
		return errors.Wrap(err, "CreateCollection")
	}
	return trySendJson(w, collectionResponse{Address: addr})
}

func (a *MarketApi) Collection(w http.ResponseWriter, r *http.Request) error {
	addr, err := addressParam(r, "collection")
	if err != nil {
		return err
	}
	info, err := a.app.registry.Collection(r.Context(), addr)
	if err != nil {
		return errors.Wrap(err, "Collection")
	}
	return trySendJson(w, info)
}

func (a *MarketApi) Mint(w http.ResponseWriter, r *http.Request) error {
	req := &mintRequest{}
	if err := decode(r, req); err != nil {
		return err
	}
	if req.Collection.IsZero() || req.To.IsZero() {
		return apiErrors.InvalidAddress
	}
	id, err := a.app.registry.Mint(r.Context(), req.Collection, req.To, req.URI, req.Payment)
	if err != nil {
		return errors.Wrap(err, "Mint")
	}
	return trySendJson(w, mintResponse{AssetKey: proto.NewAssetKey(req.Collection, id)})
}

func (a *MarketApi) Approve(w http.ResponseWriter, r *http.Request) error {
	req := &approveRequest{}
	if err := decode(r, req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	if err := a.app.registry.Approve(r.Context(), req.Caller, req.key(), req.Approved); err != nil {
		return errors.Wrap(err, "Approve")
	}
	return trySendJson(w, nil)
}

func (a *MarketApi) Token(w http.ResponseWriter, r *http.Request) error {
	key, err := assetParam(r)
	if err != nil {
		return err
	}
	info, err := a.app.registry.Token(r.Context(), key)
	if err != nil {
		return errors.Wrap(err, "Token")
	}
	return trySendJson(w, info)
}

func (a *MarketApi) Deposit(w http.ResponseWriter, r *http.Request) error {
	req := &depositRequest{}
	if err := decode(r, req); err != nil {
		return err
	}
	if req.Address.IsZero() {
		return apiErrors.InvalidAddress
	}
	balance, err := a.app.bank.Deposit(r.Context(), req.Address, req.Amount)
	if err != nil {
		return errors.Wrap(err, "Deposit")
	}
	return trySendJson(w, balanceResponse{Address: req.Address, Balance: balance})
}

func (a *MarketApi) Balance(w http.ResponseWriter, r *http.Request) error {
	addr, err := addressParam(r, "address")
	if err != nil {
		return err
	}
	balance, err := a.app.bank.Balance(r.Context(), addr)
	if err != nil {
		return errors.Wrap(err, "Balance")
	}
	return trySendJson(w, balanceResponse{Address: addr, Balance: balance})
}

func Run(ctx context.Context, address string, a *MarketApi, opts *RunOptions) error {
	if opts == nil {
		opts = DefaultRunOptions()
	}
	routes, err := a.routes(opts)
	if err != nil {
		return errors.Wrap(err, "failed to create API routes")
	}
	apiServer := &http.Server{Addr: address, Handler: routes, ReadHeaderTimeout: defaultTimeout, ReadTimeout: defaultTimeout}
	go func() {
		<-ctx.Done()
		zap.S().Info("Shutting down API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			zap.S().Errorf("Failed to shutdown API server: %v", err)
		}
	}()
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
