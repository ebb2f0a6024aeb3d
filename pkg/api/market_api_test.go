package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavesplatform/gomarket/pkg/bank"
	"github.com/wavesplatform/gomarket/pkg/events"
	"github.com/wavesplatform/gomarket/pkg/keyvalue"
	"github.com/wavesplatform/gomarket/pkg/market"
	"github.com/wavesplatform/gomarket/pkg/proto"
	"github.com/wavesplatform/gomarket/pkg/registry"
	"github.com/wavesplatform/gomarket/pkg/state"
)

const testAPIKey = "secret"

var (
	operator = proto.MustAddressFromData(proto.CustomScheme, []byte("operator"))
	creator  = proto.MustAddressFromData(proto.CustomScheme, []byte("creator"))
	seller   = proto.MustAddressFromData(proto.CustomScheme, []byte("seller"))
	buyer    = proto.MustAddressFromData(proto.CustomScheme, []byte("buyer"))
)

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newTestServer(t *testing.T, tune ...func(*RunOptions)) apiClient {
	kv, err := keyvalue.NewKeyVal(keyvalue.Options{DisableBloom: true}, slogt.New(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	s := state.NewStorage(kv, 100*time.Millisecond)
	b := bank.New(s, slogt.New(t))
	r := registry.New(s, b, proto.CustomScheme, slogt.New(t))
	journal, err := events.NewJournal(kv)
	require.NoError(t, err)
	bus := events.NewBus(journal, 16, slogt.New(t))
	l, err := market.NewLedger(s, r, b, operator, market.WithNotifier(bus), market.WithLogger(slogt.New(t)))
	require.NoError(t, err)
	app, err := NewApp(testAPIKey, l, r, b, journal, WithMintFee(10))
	require.NoError(t, err)

	opts := DefaultRunOptions()
	opts.CollectMetrics = false
	for _, f := range tune {
		f(opts)
	}
	routes, err := NewMarketApi(app).routes(opts)
	require.NoError(t, err)
	server := httptest.NewServer(routes)
	t.Cleanup(server.Close)
	return apiClient{t: t, server: server}
}

func (c apiClient) do(method, path string, body interface{}, auth bool) (int, []byte) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.server.URL+path, rd)
	require.NoError(c.t, err)
	if auth {
		req.Header.Set(apiKeyHeader, testAPIKey)
	}
	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func (c apiClient) post(path string, body interface{}) int {
	code, data := c.do(http.MethodPost, path, body, true)
	c.t.Logf("POST %s -> %d %s", path, code, data)
	return code
}

func (c apiClient) get(path string, v interface{}) int {
	code, data := c.do(http.MethodGet, path, nil, false)
	if code == http.StatusOK && v != nil {
		require.NoError(c.t, json.Unmarshal(data, v))
	}
	return code
}

func TestMarketAPIFlow(t *testing.T) {
	c := newTestServer(t)

	code, _ := c.do(http.MethodPost, "/registry/collections", map[string]interface{}{"creator": creator, "name": "Doggies"}, false)
	assert.Equal(t, http.StatusForbidden, code)

	code, data := c.do(http.MethodPost, "/registry/collections", map[string]interface{}{"creator": creator, "name": "Doggies"}, true)
	require.Equal(t, http.StatusOK, code)
	var created collectionResponse
	require.NoError(t, json.Unmarshal(data, &created))
	collection := created.Address

	assert.Equal(t, http.StatusConflict, c.post("/registry/collections", map[string]interface{}{"creator": creator, "name": "Doggies"}))

	var info registry.CollectionInfo
	require.Equal(t, http.StatusOK, c.get("/registry/collections/"+collection.String(), &info))
	assert.Equal(t, uint64(10), info.MintFee)
	assert.Equal(t, creator, info.Creator)

	assert.Equal(t, http.StatusOK, c.post("/bank/deposit", depositRequest{Address: seller, Amount: 10}))
	assert.Equal(t, http.StatusOK, c.post("/bank/deposit", depositRequest{Address: buyer, Amount: 1000}))

	assert.Equal(t, http.StatusUnprocessableEntity, c.post("/registry/mint", mintRequest{Collection: collection, To: seller, Payment: 9}))
	code, data = c.do(http.MethodPost, "/registry/mint", mintRequest{Collection: collection, To: seller, URI: "ipfs://1", Payment: 10}, true)
	require.Equal(t, http.StatusOK, code)
	var minted mintResponse
	require.NoError(t, json.Unmarshal(data, &minted))
	assert.Equal(t, uint64(1), minted.TokenID)
	asset := assetRequest{Caller: seller, Collection: collection, TokenID: minted.TokenID}
	itemPath := fmt.Sprintf("/market/items/%s/%d", collection, minted.TokenID)

	assert.Equal(t, http.StatusForbidden, c.post("/market/list", priceRequest{assetRequest: asset, Price: 100}))
	assert.Equal(t, http.StatusOK, c.post("/registry/approve", approveRequest{assetRequest: asset, Approved: operator}))
	assert.Equal(t, http.StatusBadRequest, c.post("/market/list", priceRequest{assetRequest: asset, Price: 0}))
	assert.Equal(t, http.StatusOK, c.post("/market/list", priceRequest{assetRequest: asset, Price: 100}))
	assert.Equal(t, http.StatusConflict, c.post("/market/list", priceRequest{assetRequest: asset, Price: 100}))

	var item itemResponse
	require.Equal(t, http.StatusOK, c.get(itemPath, &item))
	assert.True(t, item.Listed)
	assert.Equal(t, uint64(100), item.Price)
	assert.Equal(t, seller, item.Seller)

	var items []proto.ListingEntry
	require.Equal(t, http.StatusOK, c.get("/market/items?collection="+collection.String(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, uint64(100), items[0].Price)

	purchase := assetRequest{Caller: buyer, Collection: collection, TokenID: minted.TokenID}
	assert.Equal(t, http.StatusUnprocessableEntity, c.post("/market/buy", buyRequest{assetRequest: purchase, Payment: 50}))
	assert.Equal(t, http.StatusOK, c.post("/market/buy", buyRequest{assetRequest: purchase, Payment: 100}))
	assert.Equal(t, http.StatusNotFound, c.post("/market/buy", buyRequest{assetRequest: purchase, Payment: 100}))

	var token registry.TokenInfo
	require.Equal(t, http.StatusOK, c.get(fmt.Sprintf("/registry/%s/%d", collection, minted.TokenID), &token))
	assert.Equal(t, buyer, token.Owner)
	assert.Equal(t, "ipfs://1", token.URI)

	var proceeds proceedsResponse
	require.Equal(t, http.StatusOK, c.get("/market/proceeds/"+seller.String(), &proceeds))
	assert.Equal(t, uint64(100), proceeds.Proceeds)

	assert.Equal(t, http.StatusOK, c.post("/market/withdraw", withdrawRequest{Caller: seller}))
	assert.Equal(t, http.StatusUnprocessableEntity, c.post("/market/withdraw", withdrawRequest{Caller: seller}))

	var balance balanceResponse
	require.Equal(t, http.StatusOK, c.get("/bank/"+seller.String(), &balance))
	// The mint fee was paid to the collection creator.
	assert.Equal(t, uint64(100), balance.Balance)
	require.Equal(t, http.StatusOK, c.get("/bank/"+buyer.String(), &balance))
	assert.Equal(t, uint64(900), balance.Balance)

	var page []proto.Event
	require.Equal(t, http.StatusOK, c.get("/market/events?from=1&limit=10", &page))
	require.Len(t, page, 3)
	assert.Equal(t, proto.ItemListedEvent, page[0].Type)
	assert.Equal(t, proto.ItemBoughtEvent, page[1].Type)
	assert.Equal(t, proto.ProceedsWithdrawnEvent, page[2].Type)
	assert.Equal(t, uint64(3), page[2].Seq)

	require.Equal(t, http.StatusOK, c.get("/market/events?from=3", &page))
	assert.Len(t, page, 1)
	assert.Equal(t, http.StatusBadRequest, c.get("/market/events?limit=100000", nil))
}

func TestMarketAPIBadRequests(t *testing.T) {
	c := newTestServer(t)
	code, _ := c.do(http.MethodPost, "/market/list", nil, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, http.StatusBadRequest, c.post("/market/cancel", assetRequest{Caller: seller}))
	assert.Equal(t, http.StatusBadRequest, c.post("/market/withdraw", withdrawRequest{}))
	assert.Equal(t, http.StatusBadRequest, c.get("/market/proceeds/not-an-address", nil))
	assert.Equal(t, http.StatusBadRequest, c.get("/market/items?collection=bad", nil))
	assert.Equal(t, http.StatusNotFound, c.get("/market/items/bad/x", nil))
	assert.Equal(t, http.StatusOK, c.get("/go/node/healthz", nil))
}

func TestRateLimitedRequests(t *testing.T) {
	c := newTestServer(t, func(o *RunOptions) {
		o.RateLimiterOpts = &RateLimiterOptions{MemoryCacheSize: 16, MaxRequestsPerSecond: 1, MaxBurst: 0}
	})
	code, _ := c.do(http.MethodGet, "/bank/"+seller.String(), nil, false)
	require.Equal(t, http.StatusOK, code)

	code, data := c.do(http.MethodGet, "/bank/"+seller.String(), nil, false)
	require.Equal(t, http.StatusTooManyRequests, code)
	var apiErr struct {
		ID int `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &apiErr))
	assert.Equal(t, 4, apiErr.ID)
}

func TestLedgerErrorMessage(t *testing.T) {
	c := newTestServer(t)
	key := proto.NewAssetKey(creator, 1)
	code, data := c.do(http.MethodPost, "/market/buy", map[string]interface{}{
		"caller": buyer, "collection": key.Collection, "tokenId": key.TokenID, "payment": 100,
	}, true)
	require.Equal(t, http.StatusNotFound, code)
	var apiErr struct {
		ID      int    `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(data, &apiErr))
	assert.Equal(t, 202, apiErr.ID)
	assert.Equal(t, "buy: asset "+key.String()+" is not listed", apiErr.Message)
}
