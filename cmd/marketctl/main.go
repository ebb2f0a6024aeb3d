package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"

	"github.com/wavesplatform/gomarket/pkg/client"
	"github.com/wavesplatform/gomarket/pkg/proto"
)

var usage = `

Usage:
  marketctl command [flags] [arguments]

Available Commands:
  list       <collection/id> <price>       List an asset for sale
  update     <collection/id> <price>       Change the price of a listing
  cancel     <collection/id>               Cancel a listing
  buy        <collection/id> <payment>     Buy a listed asset
  withdraw                                 Withdraw caller's proceeds
  proceeds   [address]                     Show proceeds of an address, caller by default
  item       <collection/id>               Show a market item
  items      [collection]                  Show active listings
  events                                   Show journaled ledger events
  deposit    <amount>                      Credit caller's bank balance
  balance    [address]                     Show bank balance, caller by default
  create     <name>                        Create a collection owned by caller
  collection <collection>                  Show a collection
  mint       <collection> <uri> <payment>  Mint a token to caller
  approve    <collection/id> <approved>    Approve an address to transfer the token
  token      <collection/id>               Show a token

Amounts are decimal, e.g. "0.5" is 50000000 units.

`

type Opts struct {
	Node    string
	ApiKey  string
	Caller  string
	Timeout time.Duration
	MintFee string
	From    uint64
	Limit   int
}

type command struct {
	minArgs, maxArgs int
	caller           bool
	run              func(ctx context.Context, c *client.Client, e *env, args []string) (any, error)
}

type env struct {
	opts   Opts
	caller proto.Address
}

var commands = map[string]command{
	"list":       {minArgs: 2, maxArgs: 2, caller: true, run: listItem},
	"update":     {minArgs: 2, maxArgs: 2, caller: true, run: updateListing},
	"cancel":     {minArgs: 1, maxArgs: 1, caller: true, run: cancelListing},
	"buy":        {minArgs: 2, maxArgs: 2, caller: true, run: buyItem},
	"withdraw":   {caller: true, run: withdraw},
	"proceeds":   {maxArgs: 1, run: proceeds},
	"item":       {minArgs: 1, maxArgs: 1, run: marketItem},
	"items":      {maxArgs: 1, run: marketItems},
	"events":     {run: ledgerEvents},
	"deposit":    {minArgs: 1, maxArgs: 1, caller: true, run: deposit},
	"balance":    {maxArgs: 1, run: balance},
	"create":     {minArgs: 1, maxArgs: 1, caller: true, run: createCollection},
	"collection": {minArgs: 1, maxArgs: 1, run: collection},
	"mint":       {minArgs: 3, maxArgs: 3, caller: true, run: mint},
	"approve":    {minArgs: 2, maxArgs: 2, caller: true, run: approve},
	"token":      {minArgs: 1, maxArgs: 1, run: token},
}

func main() {
	opts := Opts{}

	flag.StringVarP(&opts.Node, "node", "n", "http://127.0.0.1:6870", "Marketplace node API URL")
	flag.StringVarP(&opts.ApiKey, "api-key", "k", os.Getenv("MARKET_API_KEY"), "API key for mutating commands")
	flag.StringVarP(&opts.Caller, "caller", "c", "", "Address the command is performed on behalf of")
	flag.DurationVarP(&opts.Timeout, "timeout", "t", 30*time.Second, "Command timeout")
	flag.StringVar(&opts.MintFee, "mint-fee", "", "Mint fee of a created collection, node default if empty")
	flag.Uint64Var(&opts.From, "from", 1, "First event sequence number")
	flag.IntVar(&opts.Limit, "limit", 100, "Maximum number of events")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := execute(ctx, opts, flag.Args(), os.Stdout); err != nil {
		fmt.Printf("Err: %s\n", describe(err))
		if errors.Is(err, errUsage) {
			showUsage()
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid command line")

func showUsage() {
	fmt.Print(usage)
	flag.PrintDefaults()
}

func execute(ctx context.Context, opts Opts, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		return errors.Wrapf(errUsage, "unknown command %q", name)
	}
	args = args[1:]
	if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
		return errors.Wrapf(errUsage, "command %q expects %d to %d arguments", name, cmd.minArgs, cmd.maxArgs)
	}
	e := &env{opts: opts}
	if cmd.caller || opts.Caller != "" {
		if opts.Caller == "" {
			return errors.Wrap(errUsage, "caller address is required")
		}
		a, err := proto.NewAddressFromString(opts.Caller)
		if err != nil {
			return errors.Wrap(err, "invalid caller")
		}
		e.caller = a
	}
	c, err := client.NewClient(client.Options{BaseUrl: opts.Node, ApiKey: opts.ApiKey})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	res, err := cmd.run(ctx, c, e, args)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// describe prefers the node's error message over the raw HTTP failure.
func describe(err error) string {
	var re *client.RequestError
	if errors.As(err, &re) {
		if ae, ok := re.APIError(); ok {
			return fmt.Sprintf("%s (%d)", ae.Message, ae.ID)
		}
	}
	return err.Error()
}

type status struct {
	Status string `json:"status"`
}

var done = status{Status: "ok"}

type amount struct {
	Address proto.Address `json:"address"`
	Units   uint64        `json:"units"`
	Amount  string        `json:"amount"`
}

func newAmount(addr proto.Address, units uint64) amount {
	return amount{Address: addr, Units: units, Amount: proto.FormatAmount(units)}
}

// addressOrCaller parses an optional address argument.
func addressOrCaller(e *env, args []string) (proto.Address, error) {
	if len(args) == 0 {
		if e.caller == (proto.Address{}) {
			return proto.Address{}, errors.Wrap(errUsage, "address or caller is required")
		}
		return e.caller, nil
	}
	return proto.NewAddressFromString(args[0])
}

func keyAndAmount(args []string) (proto.AssetKey, uint64, error) {
	key, err := proto.ParseAssetKey(args[0])
	if err != nil {
		return proto.AssetKey{}, 0, err
	}
	v, err := proto.ParseAmount(args[1])
	if err != nil {
		return proto.AssetKey{}, 0, err
	}
	return key, v, nil
}

func listItem(ctx context.Context, c *client.Client, e *env, args []string) (any, error) {
	key, price, err := keyAndAmount(args)
	if err != nil {
		return nil, err
	}
	if _, err := c.Market.List(ctx, e.caller, key, price); err != nil {
		return nil, err
	}
	return done, nil
}

func updateListing(ctx context.Context, c *client.Client, e *env, args []string) (any, error) {
	key, price, err := keyAndAmount(args)
	if err != nil {
		return nil, err
	}
	if _, err := c.Market.Update(ctx, e.caller, key, price); err != nil {
		return nil, err
	}
	return done, nil
}

func cancelListing(ctx context.Context, c *client.Client, e *env, args []string) (any, error) {
	key, err := proto.ParseAssetKey(args[0])
	if err != nil {
		return nil, err
	}
	if _, err := c.Market.Cancel(ctx, e.caller, key); err != nil {
		return nil, err
	}
	return done, nil
}

func buyItem(ctx context.Context, c *client.Client, e *env, args []string) (any, error) {
	key, payment, err := keyAndAmount(args)
	if err != nil {
		return nil, err
	}
	if _, err := c.Market.Buy(ctx, e.caller, key, payment); err != nil {
		return nil, err
	}
	return done, nil
}

func withdraw(ctx context.Context, c *client.Client, e *env, _ []string) (any, error) {
	if _, err := c.Market.Withdraw(ctx, e.caller); err != nil {
		return nil, err
	}
	return done, nil
}

func proceeds(ctx context.Context, c *client.Client, e *env, args []string) (any, error) {
	addr, err := addressOrCaller(e, args)
	if err != nil {
		return nil, err
	}
	v, _, err := c.Market.Proceeds(ctx, addr)
	if err != nil {
		return nil, err
	}
	return newAmount(addr, v), nil
}

func marketItem(ctx context.Context, c *client.Client, _ *env, args []string) (any, error) {
	key, err := proto.ParseAssetKey(args[0])
	if err != nil {
		return nil, err
	}
	item, _, err := c.Market.Item(ctx, key)
	return item, err
}

func marketItems(ctx context.Context, c *client.Client, _ *env, args []string) (any, error) {
	var filter *proto.Address
	if len(args) == 1 {
		a, err := proto.NewAddressFromString(args[0])
		if err != nil {
			return nil, err
		}
		filter = &a
	}
	items, _, err := c.Market.Items(ctx, filter)
	return items, err
}

func ledgerEvents(ctx context.Context, c *client.Client, e *env, _ []string) (any, error) {
	evs, _, err := c.Market.Events(ctx, e.opts.From, e.opts.Limit)
	return evs, err
}

func deposit(ctx context.Context, c *client.Client, e *env, args []string) (any, error) {
	v, err := proto.ParseAmount(args[0])
	if err != nil {
		return nil, err
	}
	b, _, err := c.Bank.Deposit(ctx, e.caller, v)
	if err != nil {
		return nil, err
	}
	return newAmount(e.caller, b), nil
}

func balance(ctx context.Context, c *client.Client, e *env, args []string) (any, error) {
	addr, err := addressOrCaller(e, args)
	if err != nil {
		return nil, err
	}
	b, _, err := c.Bank.Balance(ctx, addr)
	if err != nil {
		return nil, err
	}
	return newAmount(addr, b), nil
}

func createCollection(ctx context.Context, c *client.Client, e *env, args []string) (any, error) {
	var fee *uint64
	if e.opts.MintFee != "" {
		v, err := proto.ParseAmount(e.opts.MintFee)
		if err != nil {
			return nil, errors.Wrap(err, "invalid mint fee")
		}
		fee = &v
	}
	addr, _, err := c.Registry.CreateCollection(ctx, e.caller, args[0], fee)
	if err != nil {
		return nil, err
	}
	return struct {
		Collection proto.Address `json:"collection"`
	}{addr}, nil
}

func collection(ctx context.Context, c *client.Client, _ *env, args []string) (any, error) {
	addr, err := proto.NewAddressFromString(args[0])
	if err != nil {
		return nil, err
	}
	col, _, err := c.Registry.Collection(ctx, addr)
	return col, err
}

func mint(ctx context.Context, c *client.Client, e *env, args []string) (any, error) {
	addr, err := proto.NewAddressFromString(args[0])
	if err != nil {
		return nil, err
	}
	payment, err := proto.ParseAmount(args[2])
	if err != nil {
		return nil, err
	}
	key, _, err := c.Registry.Mint(ctx, addr, e.caller, args[1], payment)
	if err != nil {
		return nil, err
	}
	return struct {
		Key     proto.AssetKey `json:"key"`
		TokenID string         `json:"tokenId"`
	}{key, strconv.FormatUint(key.TokenID, 10)}, nil
}

func approve(ctx context.Context, c *client.Client, e *env, args []string) (any, error) {
	key, err := proto.ParseAssetKey(args[0])
	if err != nil {
		return nil, err
	}
	approved, err := proto.NewAddressFromString(args[1])
	if err != nil {
		return nil, err
	}
	if _, err := c.Registry.Approve(ctx, e.caller, key, approved); err != nil {
		return nil, err
	}
	return done, nil
}

func token(ctx context.Context, c *client.Client, _ *env, args []string) (any, error) {
	key, err := proto.ParseAssetKey(args[0])
	if err != nil {
		return nil, err
	}
	t, _, err := c.Registry.Token(ctx, key)
	return t, err
}
